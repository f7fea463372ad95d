// Command migrate applies the schema explicitly. Production deployments
// disable automigration on server start, so this is the supported way to
// update the schema there.
package main

import (
	"log"

	"atelier/internal/config"
	"atelier/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema migration completed")
}
