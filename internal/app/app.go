// Package app wires configuration, logging and the optional backing services
// shared by the linkrank commands.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/authority"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/postgres"
	"github.com/joho/godotenv"
)

// Setup loads the config file (empty path means defaults plus environment)
// and installs the default logger. LR_* variables may also come from a .env
// file in the working directory; real environment variables win.
func Setup(configPath string) (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 0, "loading config: %v", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// CollectionOptions maps pipeline settings onto collection options.
func CollectionOptions(cfg config.PipelineConfig) collection.Options {
	return collection.Options{
		Dir:       cfg.DataDir,
		Listing:   cfg.CollectionFile,
		DocSuffix: cfg.DocSuffix,
	}
}

// AuthorityParams parses the positional damping, threshold and iteration
// arguments. Exactly three are required.
func AuthorityParams(args []string) (authority.Params, error) {
	if len(args) != 3 {
		return authority.Params{}, apperrors.Newf(apperrors.ErrInvalidInput, 0,
			"expected 3 arguments, got %d", len(args))
	}
	d, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return authority.Params{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "damping factor %q: %v", args[0], err)
	}
	eps, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return authority.Params{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "threshold %q: %v", args[1], err)
	}
	m, err := strconv.Atoi(args[2])
	if err != nil {
		return authority.Params{}, apperrors.Newf(apperrors.ErrInvalidInput, 0, "max iterations %q: %v", args[2], err)
	}
	p := authority.Params{Damping: d, Threshold: eps, MaxIterations: m}
	return p, p.Validate()
}

// ParamsFromConfig returns the configured authority parameters.
func ParamsFromConfig(cfg config.AuthorityConfig) authority.Params {
	return authority.Params{
		Damping:       cfg.Damping,
		Threshold:     cfg.Threshold,
		MaxIterations: cfg.MaxIterations,
	}
}

// AuthorityStore connects to postgres when score persistence is enabled.
// A connection failure is logged and the run continues without a store.
func AuthorityStore(ctx context.Context, cfg *config.Config) (*authority.Store, func()) {
	if !cfg.Authority.Persist {
		return nil, func() {}
	}
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, authority runs not persisted", "error", err)
		return nil, func() {}
	}
	store := authority.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Warn("authority schema setup failed, runs not persisted", "error", err)
		db.Close()
		return nil, func() {}
	}
	return store, func() { db.Close() }
}

// Metrics starts the scrape endpoint when enabled. The returned metrics are
// nil otherwise, which every consumer accepts.
func Metrics(cfg config.MetricsConfig) (*metrics.Metrics, func()) {
	if !cfg.Enabled {
		return nil, func() {}
	}
	m := metrics.New()
	srv, err := metrics.Listen(m, fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		slog.Warn("metrics endpoint disabled", "error", err)
		return m, func() {}
	}
	return m, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// Exit prints a diagnostic for err to w and returns the process status.
func Exit(w io.Writer, name string, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(w, "%s: %v\n", name, err)
	return apperrors.ExitCode(err)
}
