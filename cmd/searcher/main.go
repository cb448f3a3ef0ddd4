// Command searcher serves ranked queries over HTTP from the latest pipeline
// outputs. It reloads them when the pipeline announces a finished run, on
// SIGHUP, or on POST /api/v1/reload.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/app"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/events"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/redis"
)

const reloadPath = "/api/v1/reload"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := app.Setup(*configPath)
	if err != nil {
		os.Exit(app.Exit(os.Stderr, "searcher", err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadOpts := executor.LoadOptions{PreferSegment: true, InMemory: true}
	store, closeStore := app.AuthorityStore(ctx, cfg)
	defer closeStore()
	if store != nil {
		loadOpts.Scores = store
	}
	snap, err := executor.LoadSnapshot(ctx, cfg.Pipeline, loadOpts)
	if err != nil {
		slog.Error("initial snapshot load failed", "error", err)
		os.Exit(app.Exit(os.Stderr, "searcher", err))
	}
	exec := executor.New(snap)
	reloader := executor.NewReloader(exec, cfg.Pipeline, loadOpts)

	m := metrics.New()

	var (
		queryCache  *cache.QueryCache
		redisClient *pkgredis.Client
	)
	redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
		reloader.OnReload(func(ctx context.Context) error {
			_, err := queryCache.Invalidate(ctx)
			return err
		})
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	if cfg.Kafka.Enabled {
		tracker := events.NewRunTracker(
			[]string{events.StageAuthority, events.StageIndex},
			func(ctx context.Context, runID string) error {
				slog.Info("pipeline run finished, reloading", "run_id", runID)
				return reloader.Reload(ctx)
			},
		)
		consumer := events.NewConsumer(cfg.Kafka, tracker)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				slog.Error("stage consumer stopped", "error", err)
			}
		}()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				reloader.Reload(ctx)
			}
		}
	}()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		s := exec.Snapshot()
		if s == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no snapshot"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d scored documents", s.Scores.Len()),
		}
	})
	if redisClient != nil {
		checker.Register("redis", health.Ping(redisClient.Ping, true))
	}

	h := handler.New(exec, queryCache, m, cfg.Search)
	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("POST "+reloadPath, func(w http.ResponseWriter, r *http.Request) {
		if err := reloader.Reload(r.Context()); err != nil {
			http.Error(w, `{"error":"reload failed"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"reloaded"}`)
	})
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", m.Handler())

	chain := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Metrics(m, handler.SearchPath, handler.CacheStatsPath, handler.CacheInvalidatePath, reloadPath),
		middleware.Timeout(cfg.Server.WriteTimeout),
	)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	exec.Snapshot().Close()
	slog.Info("search service stopped")
}
