package db

import (
	"context"
	"fmt"
)

// schema is the flat record store: alert subscriptions plus the simple
// users/locations CRUD tables. IDs are bigserial so insertion order is
// monotonic.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		device_token TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		aqi_limit INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		location TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		aqi_limit DOUBLE PRECISION NOT NULL,
		device_token TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_notified_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the tables when they do not exist yet. It runs once
// at startup; there is no migration machinery for this flat store.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
