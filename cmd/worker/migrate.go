package main

import (
	"context"
	"log"
	"os"

	"github.com/projectkeeper/project-keeper/internal/bootstrap"
)

// RunMigrate applies the projects schema. The DSN comes from the first
// argument or DB_DSN.
func RunMigrate(args []string) {
	dsn := os.Getenv("DB_DSN")
	if len(args) > 0 {
		dsn = args[0]
	}

	if err := bootstrap.Migrate(context.Background(), dsn); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("schema applied")
}
