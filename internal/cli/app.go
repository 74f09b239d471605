package cli

import (
	"context"
	"log/slog"

	"github.com/rickgao/eedraws/internal/api"
	"github.com/rickgao/eedraws/internal/config"
	"github.com/rickgao/eedraws/internal/database"
	"github.com/rickgao/eedraws/internal/store"
	"github.com/rickgao/eedraws/internal/updater"
	"github.com/rickgao/eedraws/internal/writer"
)

// app is the per-command wiring built from config.
type app struct {
	cfg     *config.Config
	store   *store.CSV
	updater *updater.Updater
	logger  *slog.Logger
	closers []func()
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	o.Logger.Debug("configuration loaded",
		"config", o.ConfigPath,
		"url", cfg.API.URL,
		"dataset", cfg.Data.CSVPath(),
		"mirror", cfg.Database.Enabled,
	)
	return cfg, nil
}

// newApp loads config and wires the fetcher, store and optional mirror.
// A mirror that cannot connect is logged and left out.
func (o *RootOptions) newApp(ctx context.Context) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		store:  store.NewCSV(cfg.Data.CSVPath()),
		logger: o.Logger,
	}

	client := api.NewClient(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(o.Logger),
	)

	upOpts := []updater.Option{
		updater.WithLogger(o.Logger),
		updater.WithSnapshot(cfg.Data.SnapshotPath()),
		updater.WithClock(o.deps.Now),
	}

	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		o.Logger.Debug("connecting to database",
			"host", pg.Host,
			"port", pg.Port,
			"database", pg.Name,
		)
		pool, err := database.Open(ctx, pg)
		if err != nil {
			o.Logger.Error("database mirror unavailable", "error", err)
		} else {
			a.closers = append(a.closers, pool.Close)
			upOpts = append(upOpts, updater.WithMirror(writer.NewDrawWriter(pool, writer.DefaultBatchSize, o.Logger)))
		}
	}

	a.updater = updater.New(client, a.store, upOpts...)
	return a, nil
}

func (a *app) Close() {
	for _, fn := range a.closers {
		fn()
	}
}
