// Package writer mirrors draws into PostgreSQL.
//
// Rows are queued in pgx batches with ON CONFLICT DO NOTHING, so a draw number
// is written once and never updated. Conflicts are counted, not treated as
// errors. Each write also records its update run.
package writer
