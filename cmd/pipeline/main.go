// Command pipeline runs the whole batch: it loads the collection once,
// computes authority scores and the inverted index concurrently, and then
// announces the new outputs to running search services.
//
// Usage:
//
//	pipeline [-config file] [<damping_factor> <diffPR> <maxIterations>]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/app"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/authority"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/events"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/tracing"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pipeline [-config file] [<damping_factor> <diffPR> <maxIterations>]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := app.Setup(*configPath)
	if err != nil {
		return app.Exit(stderr, "pipeline", err)
	}
	params := app.ParamsFromConfig(cfg.Authority)
	if fs.NArg() > 0 {
		if params, err = app.AuthorityParams(fs.Args()); err != nil {
			fs.Usage()
			return app.Exit(stderr, "pipeline", err)
		}
	}

	m, stopMetrics := app.Metrics(cfg.Metrics)
	defer stopMetrics()
	store, closeStore := app.AuthorityStore(ctx, cfg)
	defer closeStore()
	publisher := events.NewPublisher(cfg.Kafka)
	defer publisher.Close()

	p := &pipeline{
		cfg:       cfg,
		params:    params,
		store:     store,
		metrics:   m,
		publisher: publisher,
		logger:    logger.WithComponent("pipeline"),
	}
	if err := p.run(ctx, uuid.NewString()); err != nil {
		return app.Exit(stderr, "pipeline", err)
	}
	return 0
}

type pipeline struct {
	cfg       *config.Config
	params    authority.Params
	store     *authority.Store
	metrics   *metrics.Metrics
	publisher events.Publisher
	logger    *slog.Logger
}

func (p *pipeline) run(ctx context.Context, runID string) error {
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx, p.logger)
	ctx, root := tracing.StartSpan(ctx, "pipeline", runID)
	defer func() {
		root.End()
		root.Log(log)
	}()

	loadCtx, loadSpan := tracing.StartChildSpan(ctx, "load-collection")
	c, err := collection.Load(loadCtx, app.CollectionOptions(p.cfg.Pipeline))
	loadSpan.End()
	if err != nil {
		return err
	}
	loadSpan.SetAttr("documents", c.Len())

	stage, err := authority.NewStage(p.cfg.Pipeline, p.params, p.store, p.metrics)
	if err != nil {
		return err
	}
	engine := indexer.NewEngine(p.cfg.Pipeline, p.metrics)

	// Both stages only read c.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sctx, span := tracing.StartChildSpan(gctx, "authority")
		defer span.End()
		res, err := stage.Run(sctx, runID, c)
		if err != nil {
			return fmt.Errorf("authority stage: %w", err)
		}
		span.SetAttr("iterations", res.Iterations)
		return nil
	})
	g.Go(func() error {
		sctx, span := tracing.StartChildSpan(gctx, "index")
		defer span.End()
		idx, err := engine.Run(sctx, c)
		if err != nil {
			return fmt.Errorf("index stage: %w", err)
		}
		span.SetAttr("terms", idx.Len())
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	now := time.Now().UTC()
	err = p.publisher.Publish(ctx,
		events.StageComplete{
			RunID: runID,
			Stage: events.StageAuthority,
			Path:  filepath.Join(p.cfg.Pipeline.DataDir, p.cfg.Pipeline.PagerankFile),
			At:    now,
		},
		events.StageComplete{
			RunID: runID,
			Stage: events.StageIndex,
			Path:  filepath.Join(p.cfg.Pipeline.DataDir, p.cfg.Pipeline.IndexFile),
			At:    now,
		},
	)
	if err != nil {
		// outputs are on disk; searchers can still be reloaded by hand
		log.Warn("stage notification failed", "error", err)
	}
	log.Info("pipeline complete", "documents", c.Len())
	return nil
}
