package main

import (
	"context"
	"flag"
	"log"

	"subscription-billing/internal/config"
	pg "subscription-billing/internal/infra/db/postgres"
)

// Applies the schema. Idempotent; safe to run on every deploy.
func main() {
	ctx := context.Background()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, pg.Schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")
}
