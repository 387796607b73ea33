// Package planner ties the filter, grouping, packing, and
// materialization stages together into the single pure entry point:
// Plan(WorldView, Options) -> (Plan, audit trail).
package planner

import (
	"fmt"

	"github.com/jbodctl/jbodctl/internal/audit"
	"github.com/jbodctl/jbodctl/internal/filter"
	"github.com/jbodctl/jbodctl/internal/group"
	"github.com/jbodctl/jbodctl/internal/materialize"
	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/pack"
)

// Logger is the injected logging interface the planner core calls
// instead of touching any process-wide logging singleton. A nil Logger
// is treated as a no-op.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type nullLogger struct{}

func (nullLogger) Debugf(string, ...any) {}
func (nullLogger) Infof(string, ...any)  {}

// Options aggregates every tunable the planner's stages accept: the
// filter criteria, the folder-grouping thresholds, and the packer's
// capacity reserve / selection policy / evacuation controls.
type Options struct {
	Filter filter.Criteria
	Group  group.Options
	Pack   pack.Options
	Logger Logger
}

// DefaultOptions returns the spec's documented defaults: no filtering,
// best-fit policy, 1 GiB / 0.9 folder-grouping thresholds, k_max 4.
func DefaultOptions() Options {
	return Options{
		Group: group.Options{
			MinSplitSizeBytes: group.DefaultMinSplitSizeBytes,
			FolderThreshold:   group.DefaultFolderThreshold,
		},
		Pack: pack.Options{
			Policy: pack.BestFit,
			KMax:   4,
		},
	}
}

// Result is the planner's output: the materialized Plan and the
// ordered audit trail of WorldView snapshots.
type Result struct {
	Plan      model.Plan
	Snapshots []model.Snapshot
}

// Plan runs Filter -> Pack -> Materialize against world and returns the
// result. It is a pure function: world is never mutated, and running it
// twice with identical input yields byte-identical output (Testable
// Property 5).
func Plan(world model.WorldView, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = nullLogger{}
	}

	filtered, err := filter.Apply(world.Files, opts.Filter)
	if err != nil {
		return Result{}, err
	}
	logger.Debugf("filter: %d of %d files eligible", len(filtered), len(world.Files))

	packOpts := opts.Pack
	packOpts.Group = opts.Group

	filteredWorld := model.WorldView{Volumes: world.Volumes, Files: filtered}
	rec := audit.NewRecorder()
	moves := pack.Pack(filteredWorld, packOpts, rec)

	if err := audit.Validate(moves, rec.Snapshots()); err != nil {
		return Result{}, fmt.Errorf("packer produced an inconsistent plan: %w", err)
	}

	plan := materialize.Materialize(moves)
	logger.Infof("plan: %d pending moves, %d bytes", plan.Summary.TotalFiles, plan.Summary.TotalBytes)

	return Result{Plan: plan, Snapshots: rec.Snapshots()}, nil
}
