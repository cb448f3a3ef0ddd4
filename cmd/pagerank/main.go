// Command pagerank computes the link authority of every document in the
// collection and writes the ranked score list.
//
// Usage:
//
//	pagerank [-config file] <damping_factor> <diffPR> <maxIterations>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/app"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/authority"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("pagerank", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pagerank [-config file] <damping_factor> <diffPR> <maxIterations>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	params, err := app.AuthorityParams(fs.Args())
	if err != nil {
		fs.Usage()
		return app.Exit(stderr, "pagerank", err)
	}

	cfg, err := app.Setup(*configPath)
	if err != nil {
		return app.Exit(stderr, "pagerank", err)
	}
	m, stopMetrics := app.Metrics(cfg.Metrics)
	defer stopMetrics()
	store, closeStore := app.AuthorityStore(ctx, cfg)
	defer closeStore()

	c, err := collection.Load(ctx, app.CollectionOptions(cfg.Pipeline))
	if err != nil {
		return app.Exit(stderr, "pagerank", err)
	}
	stage, err := authority.NewStage(cfg.Pipeline, params, store, m)
	if err != nil {
		return app.Exit(stderr, "pagerank", err)
	}
	runID := uuid.NewString()
	res, err := stage.Run(ctx, runID, c)
	if err != nil {
		return app.Exit(stderr, "pagerank", err)
	}
	slog.Info("authority computed",
		"run_id", runID,
		"documents", len(res.Scores),
		"iterations", res.Iterations,
		"delta", res.Delta,
	)
	return 0
}
