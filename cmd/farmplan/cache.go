package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/udisondev/farmplan/internal/data"
	"github.com/udisondev/farmplan/internal/db"
	"github.com/udisondev/farmplan/internal/game/farming"
)

// openRepo connects to the plan run cache. Returns nil when no DSN is set.
func (a *app) openRepo(ctx context.Context) (*db.PlanRepository, func(), error) {
	dsn := a.cfg.DatabaseDSN
	if dsn == "" {
		return nil, func() {}, nil
	}
	if err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, nil, fmt.Errorf("migrating plan cache: %w", err)
	}
	d, err := db.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening plan cache: %w", err)
	}
	return db.NewPlanRepository(d.Pool()), d.Close, nil
}

// cachedRun returns the stored result of (command, defs, opts) when present,
// otherwise runs compute and stores its result.
func cachedRun[T any](ctx context.Context, a *app, command string, defs *data.FarmingDefs, opts any,
	compute func() ([]T, error)) ([]T, error) {
	if a.noCache {
		return compute()
	}
	repo, closeRepo, err := a.openRepo(ctx)
	if err != nil {
		return nil, err
	}
	defer closeRepo()
	if repo == nil {
		return compute()
	}

	key, err := runKey(command, defs, opts)
	if err != nil {
		return nil, err
	}
	if run, err := repo.Find(ctx, key); err != nil {
		return nil, err
	} else if run != nil {
		var out []T
		if err := json.Unmarshal(run.Result, &out); err != nil {
			return nil, fmt.Errorf("decoding cached run %s: %w", key, err)
		}
		slog.Debug("plan cache hit", "command", command, "key", key)
		return out, nil
	}

	out, err := compute()
	if err != nil {
		return nil, err
	}
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encoding options: %w", err)
	}
	result, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	if err := repo.Save(ctx, db.PlanRun{
		Key:       key,
		Command:   command,
		Options:   optsJSON,
		Result:    result,
		PlanCount: len(out),
	}); err != nil {
		return nil, err
	}
	slog.Debug("plan cache stored", "command", command, "key", key, "plans", len(out))
	return out, nil
}

// runKey fingerprints a run. The worker count does not change results, so it
// is left out of the key.
func runKey(command string, defs *data.FarmingDefs, opts any) (string, error) {
	switch o := opts.(type) {
	case farming.PlanOptions:
		o.Workers = 0
		opts = o
	case farming.FixedOptions:
		o.Workers = 0
		opts = o
	}
	return db.RunKey(command, defs, opts)
}
