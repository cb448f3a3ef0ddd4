// Command indexer builds the inverted index of the collection and writes it
// both as the plain-text listing and as a binary segment.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/app"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/collection"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("indexer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := app.Setup(*configPath)
	if err != nil {
		return app.Exit(stderr, "indexer", err)
	}
	m, stopMetrics := app.Metrics(cfg.Metrics)
	defer stopMetrics()

	c, err := collection.Load(ctx, app.CollectionOptions(cfg.Pipeline))
	if err != nil {
		return app.Exit(stderr, "indexer", err)
	}
	if _, err := indexer.NewEngine(cfg.Pipeline, m).Run(ctx, c); err != nil {
		return app.Exit(stderr, "indexer", err)
	}
	return 0
}
