package database

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/env"
)

// SeedAdmin creates the initial back-office login from ADMIN_EMAIL and
// ADMIN_PASSWORD when that account does not exist yet. The password is stored
// bcrypt-hashed; the generated API key is printed once and only its hash is
// persisted.
func SeedAdmin(db *gorm.DB) error {
	email := env.GetEnv("ADMIN_EMAIL", "")
	password := env.GetEnv("ADMIN_PASSWORD", "")
	if email == "" || password == "" {
		return nil
	}

	users := repository.NewUserRepository(db)
	if _, err := users.GetByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin, err := models.CreateUser(env.GetEnv("ADMIN_FIRST_NAME", "Admin"), "", email, password, models.RoleAdmin)
	if err != nil {
		return err
	}

	key, hash, err := models.GenerateAPIKey()
	if err != nil {
		return err
	}
	admin.APIKeyHash = hash

	if err := users.Create(admin); err != nil {
		return err
	}

	log.Printf("seeded admin user %s, API key (shown once): %s", email, key)
	return nil
}
