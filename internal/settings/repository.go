// internal/settings/repository.go
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store persists channel flags across restarts.
type Store interface {
	Load(ctx context.Context) (map[string]bool, error)
	Save(ctx context.Context, channel string, enabled bool) error
}

// Repository is a Postgres-backed Store.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the channel_settings table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS channel_settings (
			name TEXT PRIMARY KEY,
			enabled BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create channel_settings: %w", err)
	}
	return nil
}

func (r *Repository) Load(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, enabled FROM channel_settings`)
	if err != nil {
		return nil, fmt.Errorf("query channel settings: %w", err)
	}
	defer rows.Close()

	flags := make(map[string]bool)
	for rows.Next() {
		var name string
		var enabled bool
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, fmt.Errorf("scan channel setting: %w", err)
		}
		flags[name] = enabled
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel settings: %w", err)
	}
	return flags, nil
}

func (r *Repository) Save(ctx context.Context, channel string, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channel_settings (name, enabled, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    updated_at = EXCLUDED.updated_at
	`, channel, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save channel setting %q: %w", channel, err)
	}
	return nil
}
