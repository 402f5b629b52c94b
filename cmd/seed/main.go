package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ikkim/homecart-backend/config"
	"github.com/ikkim/homecart-backend/internal/db"
)

// Runs migrations and seeds the admin account and demo catalogue without
// starting the server.
func main() {
	migrateOnly := len(os.Args) > 1 && os.Args[1] == "--migrate-only"

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(db.GetDB()); err != nil {
		log.Fatal("Failed to migrate:", err)
	}
	fmt.Println("Migrations applied")

	if migrateOnly {
		return
	}

	if err := db.Seed(db.GetDB(), cfg); err != nil {
		log.Fatal("Failed to seed:", err)
	}
	fmt.Println("Seed data loaded")
}
