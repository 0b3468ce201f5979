package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRun is one cached planner result.
type PlanRun struct {
	Key       string          `json:"key"`
	Command   string          `json:"command"`
	Options   json.RawMessage `json:"options"`
	Result    json.RawMessage `json:"result,omitempty"`
	PlanCount int             `json:"plan_count"`
	CreatedAt time.Time       `json:"created_at"`
}

// PlanRepository provides DB access for cached plan runs.
type PlanRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new plan run repository.
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

// Find returns the run stored under key.
// Returns nil, nil if there is none.
func (r *PlanRepository) Find(ctx context.Context, key string) (*PlanRun, error) {
	var run PlanRun
	err := r.pool.QueryRow(ctx,
		`SELECT run_key, command, options, result, plan_count, created_at
		 FROM plan_runs WHERE run_key = $1`, key,
	).Scan(&run.Key, &run.Command, &run.Options, &run.Result, &run.PlanCount, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query plan run %s: %w", key, err)
	}
	return &run, nil
}

// Save stores a run, replacing any earlier run with the same key.
func (r *PlanRepository) Save(ctx context.Context, run PlanRun) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO plan_runs (run_key, command, options, result, plan_count)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_key) DO UPDATE
		 SET options = EXCLUDED.options, result = EXCLUDED.result,
		     plan_count = EXCLUDED.plan_count, created_at = now()`,
		run.Key, run.Command, []byte(run.Options), []byte(run.Result), run.PlanCount)
	if err != nil {
		return fmt.Errorf("save plan run %s: %w", run.Key, err)
	}
	return nil
}

// Recent lists the newest runs first, without their results.
func (r *PlanRepository) Recent(ctx context.Context, limit int) ([]PlanRun, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT run_key, command, options, plan_count, created_at
		 FROM plan_runs ORDER BY created_at DESC, run_key LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent plan runs: %w", err)
	}
	defer rows.Close()

	var result []PlanRun
	for rows.Next() {
		var run PlanRun
		if err := rows.Scan(&run.Key, &run.Command, &run.Options, &run.PlanCount, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan run: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan runs: %w", err)
	}
	return result, nil
}

// DeleteAll removes every cached run.
func (r *PlanRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM plan_runs`); err != nil {
		return fmt.Errorf("delete plan runs: %w", err)
	}
	return nil
}
