package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/listing"
)

var validate = validator.New()

// parseBody binds and validates a JSON request body.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.New(apperror.CodeInvalidPayload, "Malformed request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperror.New(apperror.CodeInvalidPayload, err.Error())
	}
	return nil
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and answered with a generic 500 so internals never leak.
func respondError(c *fiber.Ctx, err error) error {
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "INTERNAL",
			"message": "Something went wrong",
		})
	}

	status := fiber.StatusBadRequest
	switch ae.Code {
	case apperror.CodeNotFound:
		status = fiber.StatusNotFound
	case apperror.CodeUnauthorized:
		status = fiber.StatusUnauthorized
	case apperror.CodeEmailExists, apperror.CodeDuplicateEntry,
		apperror.CodeEditBlocked, apperror.CodeAlreadyPaid, apperror.CodeNoCredits:
		status = fiber.StatusConflict
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   ae.Code,
		"message": ae.Message,
	})
}

// parseListQuery reads pagination and filter query params.
func parseListQuery(c *fiber.Ctx) listing.Query {
	q := listing.Query{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", listing.DefaultLimit),
		Search: c.Query("search"),
	}
	if raw := c.Query("fromDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			q.FromDate = &t
		}
	}
	if raw := c.Query("toDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			q.ToDate = &t
		}
	}
	return q
}
