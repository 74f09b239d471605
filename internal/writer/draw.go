package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/eedraws/internal/model"
)

// DefaultBatchSize is the number of draws queued per pgx.Batch.
const DefaultBatchSize = 500

// DB is the subset of *pgxpool.Pool used by DrawWriter.
type DB interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Run describes the update a mirror write belongs to.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Fetched   int
	Added     int
	Skipped   int
}

// WriteStats reports the outcome of a mirror write.
type WriteStats struct {
	Inserts   int64
	Conflicts int64 // Rows already present in the mirror
	Batches   int64
}

// DrawWriter mirrors the draw dataset into the draws table.
// The table is append-only: existing rows are never updated.
type DrawWriter struct {
	db        DB
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// NewDrawWriter creates a DrawWriter. batchSize <= 0 uses DefaultBatchSize.
func NewDrawWriter(db DB, batchSize int, logger *slog.Logger) *DrawWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DrawWriter{
		db:        db,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Write inserts draws in batches and records the run in update_runs.
func (w *DrawWriter) Write(ctx context.Context, run Run, draws []model.Draw) (WriteStats, error) {
	var stats WriteStats
	start := time.Now()

	for lo := 0; lo < len(draws); lo += w.batchSize {
		hi := min(lo+w.batchSize, len(draws))

		rows := make([]drawRow, 0, hi-lo)
		for _, d := range draws[lo:hi] {
			rows = append(rows, transform(d))
		}

		conflicts, err := w.batchInsert(ctx, run.ID, rows)
		if err != nil {
			return stats, fmt.Errorf("insert draws %d-%d: %w", lo, hi-1, err)
		}
		stats.Inserts += int64(len(rows) - conflicts)
		stats.Conflicts += int64(conflicts)
		stats.Batches++
	}

	if err := w.recordRun(ctx, run, stats); err != nil {
		return stats, err
	}

	w.logger.Debug("mirrored draws",
		"run_id", run.ID,
		"count", len(draws),
		"inserts", stats.Inserts,
		"conflicts", stats.Conflicts,
		"duration", time.Since(start),
	)
	return stats, nil
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *DrawWriter) batchInsert(ctx context.Context, runID uuid.UUID, rows []drawRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO draws (draw_number, draw_date, draw_name, crs_cutoff, invitations_issued, draw_date_time, pool, run_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (draw_number) DO NOTHING
		`, r.Number, r.Date, r.Name, r.CRSCutoff, r.Invitations, r.DateTime, r.Pool, runID)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

func (w *DrawWriter) recordRun(ctx context.Context, run Run, stats WriteStats) error {
	_, err := w.db.Exec(ctx, `
		INSERT INTO update_runs (run_id, started_at, finished_at, fetched, added, skipped, inserted, conflicts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING
	`, run.ID, run.StartedAt, w.now(), run.Fetched, run.Added, run.Skipped, stats.Inserts, stats.Conflicts)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// drawRow is one row of the draws table.
type drawRow struct {
	Number      int
	Date        time.Time
	Name        string
	CRSCutoff   int
	Invitations int
	DateTime    string
	Pool        []byte // JSONB: {"dd1": n, ...}
}

func transform(d model.Draw) drawRow {
	return drawRow{
		Number:      d.Number,
		Date:        d.Date,
		Name:        d.Name,
		CRSCutoff:   d.CRSCutoff,
		Invitations: d.Invitations,
		DateTime:    d.DateTime,
		Pool:        poolToJSONB(d.Pool),
	}
}

// poolToJSONB encodes the pool distribution, omitting unset buckets.
func poolToJSONB(pool map[model.PoolKey]int) []byte {
	out := make(map[model.PoolKey]int, len(pool))
	for k, v := range pool {
		if v != 0 {
			out[k] = v
		}
	}
	data, _ := json.Marshal(out)
	return data
}
