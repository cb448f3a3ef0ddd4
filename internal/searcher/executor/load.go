package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/authority"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/listing"
	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/linkrank/pkg/errors"
)

// LoadOptions choose where postings come from.
type LoadOptions struct {
	// PreferSegment reads the newest binary segment when one exists and
	// falls back to the text index otherwise.
	PreferSegment bool
	// InMemory copies a segment into memory and closes it, so the snapshot
	// holds no open files and can be swapped freely.
	InMemory bool
	// Scores supplies the newest persisted run when the score-list file is
	// missing. May be nil.
	Scores ScoreSource
}

// ScoreSource is satisfied by *authority.Store.
type ScoreSource interface {
	LatestScores(ctx context.Context) ([]authority.Score, error)
}

// LoadSnapshot reads the score list and the inverted index produced by the
// pipeline stages.
func LoadSnapshot(ctx context.Context, cfg config.PipelineConfig, opts LoadOptions) (*Snapshot, error) {
	logger := slog.Default().With("component", "snapshot-loader")

	scores, err := loadScores(ctx, filepath.Join(cfg.DataDir, cfg.PagerankFile), opts.Scores)
	if err != nil {
		return nil, err
	}

	indexPath := filepath.Join(cfg.DataDir, cfg.IndexFile)
	if opts.PreferSegment {
		segPath, err := segment.Latest(filepath.Join(cfg.DataDir, cfg.SegmentDir))
		if err != nil {
			return nil, err
		}
		if segPath != "" && !segmentCurrent(segPath, indexPath) {
			logger.Warn("segment older than text index, ignoring it", "segment", segPath, "index", indexPath)
			segPath = ""
		}
		if segPath != "" {
			snap, err := loadSegment(segPath, scores, opts.InMemory)
			if err == nil {
				logger.Info("snapshot loaded", "segment", segPath, "scores", scores.Len())
				return snap, nil
			}
			logger.Warn("segment unusable, falling back to text index", "segment", segPath, "error", err)
		}
	}

	idxFile, err := os.Open(indexPath)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrOutputRead, 0, "opening %s: %v", indexPath, err)
	}
	defer idxFile.Close()
	idx, err := listing.Read(idxFile)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrOutputRead, 0, "reading %s: %v", indexPath, err)
	}
	logger.Info("snapshot loaded", "index", indexPath, "terms", idx.Len(), "scores", scores.Len())
	return &Snapshot{Source: MemorySource{Index: idx}, Scores: scores}, nil
}

func loadSegment(path string, scores *authority.List, inMemory bool) (*Snapshot, error) {
	r, err := segment.OpenReader(path)
	if err != nil {
		return nil, err
	}
	if !inMemory {
		return &Snapshot{Source: r, Scores: scores, closer: r.Close}, nil
	}
	defer r.Close()
	idx, err := r.Load()
	if err != nil {
		return nil, fmt.Errorf("loading segment %s: %w", path, err)
	}
	return &Snapshot{Source: MemorySource{Index: idx}, Scores: scores}, nil
}

func loadScores(ctx context.Context, path string, fallback ScoreSource) (*authority.List, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && fallback != nil {
		stored, serr := fallback.LatestScores(ctx)
		if serr != nil {
			return nil, apperrors.Newf(apperrors.ErrOutputRead, 0, "%s missing and stored scores unavailable: %v", path, serr)
		}
		if stored == nil {
			return nil, apperrors.Newf(apperrors.ErrOutputRead, 0, "opening %s: %v (no stored run)", path, err)
		}
		slog.Warn("score list missing, using latest stored run", "path", path, "documents", len(stored))
		return authority.NewList(stored), nil
	}
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrOutputRead, 0, "opening %s: %v", path, err)
	}
	defer f.Close()
	scores, err := authority.ReadList(f)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrOutputRead, 0, "reading %s: %v", path, err)
	}
	return scores, nil
}

// segmentCurrent reports whether the segment at segPath is at least as new
// as the text index. A segment left over from an earlier run, or from a run
// whose flush failed, is older than the index written before it.
func segmentCurrent(segPath, indexPath string) bool {
	idxInfo, err := os.Stat(indexPath)
	if err != nil {
		return true
	}
	segInfo, err := os.Stat(segPath)
	if err != nil {
		return false
	}
	return !segInfo.ModTime().Before(idxInfo.ModTime())
}
