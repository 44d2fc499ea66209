package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"carta-do-futuro/internal/config"
	pg "carta-do-futuro/internal/infra/db/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id                    TEXT PRIMARY KEY,
    email                 TEXT NOT NULL,
    plan_type             TEXT NOT NULL DEFAULT 'none',
    access_expires_at     TIMESTAMPTZ,
    purchased_at          TIMESTAMPTZ,
    mercadopago_payer_id  TEXT,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS letters (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    title           TEXT NOT NULL DEFAULT '',
    body            TEXT NOT NULL,
    media_key       TEXT,
    scheduled_date  TIMESTAMPTZ NOT NULL,
    sent_date       TIMESTAMPTZ,
    status          TEXT NOT NULL DEFAULT 'pending',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_letters_user_id ON letters (user_id, scheduled_date);
CREATE INDEX IF NOT EXISTS idx_letters_due ON letters (status, scheduled_date);
`

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	profileRepo := pg.NewProfileRepo(pool)
	count, err := profileRepo.CountProfiles(ctx, nil)
	if err != nil {
		log.Fatalf("count profiles: %v", err)
	}
	fmt.Printf("%d profiles present.\n", count)

	fmt.Println("✅ Bootstrap complete.")
}
