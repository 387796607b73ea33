package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jbodctl/jbodctl/internal/model"
)

func scenario() model.WorldView {
	return model.WorldView{
		Volumes: []model.VolumeState{
			{Path: "/A", TotalBytes: 2000, FreeBytes: 1000},
		},
		Files: []model.FileRecord{
			{AbsolutePath: "/A/anime/1", RelativePath: "anime/1", SizeBytes: 100, SourceVolume: "/A"},
			{AbsolutePath: "/A/anime/2", RelativePath: "anime/2", SizeBytes: 100, SourceVolume: "/A"},
			{AbsolutePath: "/A/anime/3", RelativePath: "anime/3", SizeBytes: 100, SourceVolume: "/A"},
			{AbsolutePath: "/A/anime/4", RelativePath: "anime/4", SizeBytes: 100, SourceVolume: "/A"},
		},
	}
}

func TestPlanSingleVolumeProducesNoPendingMoves(t *testing.T) {
	result, err := Plan(scenario(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.Summary.TotalFiles != 0 {
		t.Fatalf("single volume input should yield no pending moves, got %+v", result.Plan.Summary)
	}
}

func TestPlanPlacesAllFilesOnSecondVolume(t *testing.T) {
	world := scenario()
	world.Volumes = append(world.Volumes, model.VolumeState{Path: "/B", TotalBytes: 2000, FreeBytes: 1000})

	result, err := Plan(world, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.Summary.TotalFiles != 4 {
		t.Fatalf("expected all 4 files placed, got %d", result.Plan.Summary.TotalFiles)
	}
	for _, m := range result.Plan.Moves {
		if m.Status == model.StatusPending && m.TargetVolume != "/B" {
			t.Fatalf("expected every placement on /B, got %+v", m)
		}
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	world := scenario()
	world.Volumes = append(world.Volumes, model.VolumeState{Path: "/B", TotalBytes: 2000, FreeBytes: 1000})

	r1, err := Plan(world, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	world2 := scenario()
	world2.Volumes = append(world2.Volumes, model.VolumeState{Path: "/B", TotalBytes: 2000, FreeBytes: 1000})
	r2, err := Plan(world2, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each Plan call mints its own audit.Recorder with a fresh RunID;
	// ignore it here since this test checks the plan and snapshot
	// content, not Recorder identity.
	ignoreRunID := cmpopts.IgnoreFields(model.Snapshot{}, "RunID")
	if diff := cmp.Diff(r1, r2, ignoreRunID); diff != "" {
		t.Fatalf("planner is not deterministic for identical input (-r1 +r2):\n%s", diff)
	}
}

func TestPlanInvalidFilterSurfaced(t *testing.T) {
	opts := DefaultOptions()
	opts.Filter.MinSizeBytes = -1
	if _, err := Plan(scenario(), opts); err == nil {
		t.Fatal("expected error for negative MinSizeBytes")
	}
}
