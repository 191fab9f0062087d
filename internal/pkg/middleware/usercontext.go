package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
)

// UserContext resolves the presented API key to a user and stores identity in
// the request locals. Requests without a valid key pass through anonymously;
// the Require* guards below decide whether that is acceptable.
func UserContext(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get("X-API-Key"))
		if key != "" {
			if user, err := users.GetByAPIKeyHash(models.HashAPIKey(key)); err == nil {
				c.Locals(localUserID, user.ID)
				c.Locals(localUserRole, user.Role)
			}
		}
		return c.Next()
	}
}

// RequireAdmin rejects requests whose user is not an admin.
func RequireAdmin(c *fiber.Ctx) error {
	if role, _ := c.Locals(localUserRole).(string); role != models.RoleAdmin {
		return unauthorized(c)
	}
	return c.Next()
}

// RequireClient rejects requests whose user is not a client login.
func RequireClient(c *fiber.Ctx) error {
	if role, _ := c.Locals(localUserRole).(string); role != models.RoleClient {
		return unauthorized(c)
	}
	return c.Next()
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "UNAUTHORIZED",
		"message": "Valid API key required",
	})
}
