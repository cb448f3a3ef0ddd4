// Command search prints the identifiers of the documents best matching the
// query terms, one per line, most relevant first.
//
// Usage:
//
//	search [-config file] [-n limit] [-v] <term> [<term> ...]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/app"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/report"
	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	limit := fs.Int("n", 0, "maximum results (default from config)")
	verbose := fs.Bool("v", false, "print a table with match counts and scores")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: search [-config file] [-n limit] [-v] <search term 1> <search term 2> ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return app.Exit(stderr, "search", apperrors.New(apperrors.ErrInvalidInput, 0, "no search terms"))
	}

	cfg, err := app.Setup(*configPath)
	if err != nil {
		return app.Exit(stderr, "search", err)
	}
	if *limit <= 0 {
		*limit = cfg.Search.TopK
	}
	snap, err := executor.LoadSnapshot(ctx, cfg.Pipeline, executor.LoadOptions{})
	if err != nil {
		return app.Exit(stderr, "search", err)
	}
	defer snap.Close()

	res, err := executor.New(snap).Execute(ctx, parser.Parse(fs.Args()), *limit)
	if err != nil {
		return app.Exit(stderr, "search", err)
	}
	if *verbose {
		if err := report.Table(stdout, res.Results); err != nil {
			return app.Exit(stderr, "search", err)
		}
		return 0
	}
	w := bufio.NewWriter(stdout)
	for _, m := range res.Results {
		fmt.Fprintln(w, m.DocID)
	}
	if err := w.Flush(); err != nil {
		return app.Exit(stderr, "search", err)
	}
	return 0
}
