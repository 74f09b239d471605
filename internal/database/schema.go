package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema statements, applied in order. All are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS draws (
		draw_number        INTEGER PRIMARY KEY,
		draw_date          DATE NOT NULL,
		draw_name          TEXT NOT NULL DEFAULT '',
		crs_cutoff         INTEGER NOT NULL DEFAULT 0,
		invitations_issued INTEGER NOT NULL DEFAULT 0,
		draw_date_time     TEXT NOT NULL DEFAULT '',
		pool               JSONB NOT NULL DEFAULT '{}'::jsonb,
		run_id             UUID NOT NULL,
		inserted_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS draws_draw_date_idx ON draws (draw_date)`,
	`CREATE TABLE IF NOT EXISTS update_runs (
		run_id      UUID PRIMARY KEY,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		fetched     INTEGER NOT NULL,
		added       INTEGER NOT NULL,
		skipped     INTEGER NOT NULL,
		inserted    INTEGER NOT NULL,
		conflicts   INTEGER NOT NULL
	)`,
}

// EnsureSchema creates the mirror tables if they do not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	for i, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
