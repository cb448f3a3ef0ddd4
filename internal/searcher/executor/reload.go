package executor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
)

// Reloader replaces the executor's snapshot with freshly loaded stage
// outputs. Hooks run after every successful swap.
type Reloader struct {
	exec   *Executor
	cfg    config.PipelineConfig
	opts   LoadOptions
	hooks  []func(ctx context.Context) error
	mu     sync.Mutex
	logger *slog.Logger
}

func NewReloader(exec *Executor, cfg config.PipelineConfig, opts LoadOptions) *Reloader {
	return &Reloader{
		exec:   exec,
		cfg:    cfg,
		opts:   opts,
		logger: slog.Default().With("component", "snapshot-reloader"),
	}
}

// OnReload registers fn to run after each swap.
func (r *Reloader) OnReload(fn func(ctx context.Context) error) {
	r.hooks = append(r.hooks, fn)
}

// Reload loads the outputs and swaps them in. On failure the current
// snapshot keeps serving.
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := LoadSnapshot(ctx, r.cfg, r.opts)
	if err != nil {
		r.logger.Error("reload failed, keeping current snapshot", "error", err)
		return err
	}
	if prev := r.exec.Swap(snap); prev != nil {
		if err := prev.Close(); err != nil {
			r.logger.Warn("closing previous snapshot", "error", err)
		}
	}
	for _, hook := range r.hooks {
		if err := hook(ctx); err != nil {
			r.logger.Warn("reload hook failed", "error", err)
		}
	}
	r.logger.Info("snapshot reloaded")
	return nil
}
