package main

import (
	"context"
	"log"

	"agentdesk/internal/app/bootstrap"
)

// Seed entrypoint: creates the SEED_ADMIN_* account if it does not exist.
func main() {
	if err := bootstrap.SeedAdmin(context.Background()); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}
}
