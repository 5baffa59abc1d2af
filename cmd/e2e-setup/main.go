package main

import (
	"context"
	"flag"
	"log"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/infra/db/postgres"
	"whatsapp-reseller/internal/infra/redis"
)

// This script resets the database and cache to an empty, predictable state
// for manual end-to-end testing. Run cmd/seed afterwards to load a catalog.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	// --- Connect to Postgres ---
	pool, err := postgres.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	// --- Connect to Redis ---
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	// Cached catalog entries, replay markers and job locks all live here.
	log.Println("[1/2] Wiping Redis cache...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}

	log.Println("[2/2] Wiping all existing database data...")
	_, err = pool.Exec(ctx, `
		TRUNCATE
			outbox_events, voucher_redemptions, purchase_records, payments,
			transaction_items, transactions, vouchers, addons, service_packages, customers
		CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	log.Println("--- E2E Environment Setup Complete (run cmd/seed next) ---")
}
