package authority

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/linkrank/pkg/resilience"
)

// Store keeps a history of authority runs in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE authority_runs (
//	    run_id         TEXT PRIMARY KEY,
//	    damping        DOUBLE PRECISION NOT NULL,
//	    threshold      DOUBLE PRECISION NOT NULL,
//	    max_iterations INTEGER NOT NULL,
//	    iterations     INTEGER NOT NULL,
//	    delta          DOUBLE PRECISION NOT NULL,
//	    computed_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE authority_scores (
//	    run_id    TEXT NOT NULL REFERENCES authority_runs(run_id),
//	    position  INTEGER NOT NULL,
//	    doc_id    TEXT NOT NULL,
//	    outdegree INTEGER NOT NULL,
//	    score     DOUBLE PRECISION NOT NULL,
//	    PRIMARY KEY (run_id, doc_id)
//	);
type Store struct {
	db     *postgres.Client
	retry  resilience.RetryConfig
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS authority_runs (
    run_id         TEXT PRIMARY KEY,
    damping        DOUBLE PRECISION NOT NULL,
    threshold      DOUBLE PRECISION NOT NULL,
    max_iterations INTEGER NOT NULL,
    iterations     INTEGER NOT NULL,
    delta          DOUBLE PRECISION NOT NULL,
    computed_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS authority_scores (
    run_id    TEXT NOT NULL REFERENCES authority_runs(run_id),
    position  INTEGER NOT NULL,
    doc_id    TEXT NOT NULL,
    outdegree INTEGER NOT NULL,
    score     DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, doc_id)
);`

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		retry:  resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond},
		logger: slog.Default().With("component", "authority-store"),
	}
}

// EnsureSchema creates the run tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating authority schema: %w", err)
	}
	return nil
}

// SaveRun writes the run and all its scores in one transaction, retrying
// transient failures.
func (s *Store) SaveRun(ctx context.Context, runID string, params Params, result *Result) error {
	err := resilience.Retry(ctx, "authority-save-run", s.retry, func() error {
		return s.db.InTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO authority_runs (run_id, damping, threshold, max_iterations, iterations, delta, computed_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				runID, params.Damping, params.Threshold, params.MaxIterations,
				result.Iterations, result.Delta, time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("inserting run: %w", err)
			}
			stmt, err := tx.PrepareContext(ctx,
				`INSERT INTO authority_scores (run_id, position, doc_id, outdegree, score) VALUES ($1, $2, $3, $4, $5)`)
			if err != nil {
				return fmt.Errorf("preparing score insert: %w", err)
			}
			defer stmt.Close()
			for pos, sc := range result.Scores {
				if _, err := stmt.ExecContext(ctx, runID, pos, sc.ID, sc.OutDegree, sc.Value); err != nil {
					return fmt.Errorf("inserting score for %s: %w", sc.ID, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("authority run saved", "run_id", runID, "documents", len(result.Scores))
	return nil
}

// LatestScores loads the scores of the most recent run in listing order.
// It returns nil, nil when no run has been stored.
func (s *Store) LatestScores(ctx context.Context) ([]Score, error) {
	var runID string
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT run_id FROM authority_runs ORDER BY computed_at DESC LIMIT 1`,
	).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}

	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT doc_id, outdegree, score FROM authority_scores WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading scores for run %s: %w", runID, err)
	}
	defer rows.Close()

	scores := make([]Score, 0)
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.ID, &sc.OutDegree, &sc.Value); err != nil {
			return nil, fmt.Errorf("scanning score row: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}
