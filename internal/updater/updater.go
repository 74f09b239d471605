// Package updater runs one update: fetch the feed, reconcile it with the
// stored dataset and persist the result.
//
// The dataset is written only after a full successful merge, and only when
// the merge added draws. The raw snapshot and the optional Postgres mirror
// follow the dataset write.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/eedraws/internal/api"
	"github.com/rickgao/eedraws/internal/model"
	"github.com/rickgao/eedraws/internal/reconcile"
	"github.com/rickgao/eedraws/internal/store"
	"github.com/rickgao/eedraws/internal/writer"
)

// Fetcher retrieves the rounds feed. *api.Client implements it.
type Fetcher interface {
	FetchRounds(ctx context.Context) (*api.RoundsResult, error)
}

// Store persists the dataset. *store.CSV implements it.
type Store interface {
	Load() ([]model.Draw, error)
	Save(draws []model.Draw) error
}

// Mirror copies the dataset elsewhere. *writer.DrawWriter implements it.
type Mirror interface {
	Write(ctx context.Context, run writer.Run, draws []model.Draw) (writer.WriteStats, error)
}

// Updater wires a Fetcher to a Store.
type Updater struct {
	fetcher      Fetcher
	store        Store
	mirror       Mirror
	snapshotPath string
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures an Updater.
type Option func(*Updater)

// WithMirror mirrors the dataset after each update that adds draws.
func WithMirror(m Mirror) Option {
	return func(u *Updater) {
		u.mirror = m
	}
}

// WithSnapshot saves the raw feed body to path after each update that adds draws.
func WithSnapshot(path string) Option {
	return func(u *Updater) {
		u.snapshotPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Updater) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// WithClock sets the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) {
		u.now = now
	}
}

// New creates an Updater.
func New(fetcher Fetcher, store Store, opts ...Option) *Updater {
	u := &Updater{
		fetcher: fetcher,
		store:   store,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Status compares the stored dataset with the feed. It keeps the fetched
// draws so Apply does not fetch again.
type Status struct {
	Local  int // Draws stored locally
	Remote int // Draws in the feed, valid or not
	New    int // Valid fetched draws not stored locally

	startedAt time.Time
	existing  []model.Draw
	raw       []byte
	merge     reconcile.Result
}

// HasNew reports whether the feed holds draws the store does not.
func (s *Status) HasNew() bool {
	return s.New > 0
}

// NewDraws returns the draws an Apply would add, in dataset order.
func (s *Status) NewDraws() []model.Draw {
	return s.merge.NewDraws(s.existing)
}

// Merged returns the reconciled dataset an Apply would write.
func (s *Status) Merged() []model.Draw {
	return s.merge.Draws
}

// Outcome reports what an update did.
type Outcome struct {
	RunID   uuid.UUID
	Fetched int
	Added   int
	Skipped int
	Total   int          // Draws in the dataset after the update
	Draws   []model.Draw // The reconciled dataset, sorted

	Mirrored    bool
	MirrorStats writer.WriteStats
	MirrorErr   error // Mirror failures do not fail the update
}

// Check loads the dataset, fetches the feed and reconciles the two in memory.
// Nothing is written.
func (u *Updater) Check(ctx context.Context) (*Status, error) {
	startedAt := u.now()

	existing, err := u.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	fetched, err := u.fetcher.FetchRounds(ctx)
	if err != nil {
		return nil, err
	}

	res := reconcile.Merge(existing, fetched.Draws)

	st := &Status{
		Local:     len(existing),
		Remote:    len(fetched.Draws),
		New:       res.Added,
		startedAt: startedAt,
		existing:  existing,
		raw:       fetched.Raw,
		merge:     res,
	}
	u.logger.Debug("checked feed",
		"local", st.Local,
		"remote", st.Remote,
		"new", st.New,
	)
	return st, nil
}

// Apply persists the reconciled dataset from st. It writes nothing when there
// are no new draws.
func (u *Updater) Apply(ctx context.Context, st *Status) (*Outcome, error) {
	res := st.merge
	out := &Outcome{
		RunID:   uuid.New(),
		Fetched: st.Remote,
		Added:   res.Added,
		Skipped: len(res.Skipped),
		Total:   len(res.Draws),
		Draws:   res.Draws,
	}

	for _, skipped := range res.Skipped {
		u.logger.Warn("skipping malformed draw",
			"index", skipped.Index,
			"draw", skipped.Number,
			"field", skipped.Field,
		)
	}

	if !res.HasNew() {
		u.logger.Info("dataset is up to date",
			"draws", out.Total,
			"run_id", out.RunID,
		)
		return out, nil
	}

	if err := u.store.Save(res.Draws); err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}

	if u.snapshotPath != "" && len(st.raw) > 0 {
		if err := store.WriteFile(u.snapshotPath, st.raw); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
	}

	if u.mirror != nil {
		out.Mirrored = true
		run := writer.Run{
			ID:        out.RunID,
			StartedAt: st.startedAt,
			Fetched:   out.Fetched,
			Added:     out.Added,
			Skipped:   out.Skipped,
		}
		out.MirrorStats, out.MirrorErr = u.mirror.Write(ctx, run, res.Draws)
		if out.MirrorErr != nil {
			u.logger.Error("mirror write failed",
				"run_id", out.RunID,
				"error", out.MirrorErr,
			)
		}
	}

	u.logger.Info("dataset updated",
		"added", out.Added,
		"skipped", out.Skipped,
		"draws", out.Total,
		"run_id", out.RunID,
	)
	return out, nil
}

// Run is Check followed by Apply.
func (u *Updater) Run(ctx context.Context) (*Outcome, error) {
	st, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	return u.Apply(ctx, st)
}
