package main

import (
	"log"

	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/database"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/env"
)

// Standalone schema runner so deployments can migrate before rolling the app.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()

	if err := database.Migrate(database.GetDB()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("schema is up to date")
}
