package audit

import (
	"testing"

	"github.com/jbodctl/jbodctl/internal/model"
)

func TestRecordStepsAreContiguous(t *testing.T) {
	rec := NewRecorder()
	world := model.WorldView{Volumes: []model.VolumeState{{Path: "/A", TotalBytes: 100, FreeBytes: 50}}}

	rec.Record("folder-placed", world, nil)
	rec.Record("file-placed", world, nil)
	rec.Record("file-skipped", world, nil)

	snaps := rec.Snapshots()
	for i, s := range snaps {
		if s.Step != i+1 {
			t.Fatalf("step %d out of sequence: got %d", i, s.Step)
		}
	}
}

func TestRecordSnapshotsSurviveLaterMutation(t *testing.T) {
	rec := NewRecorder()
	world := model.WorldView{Volumes: []model.VolumeState{{Path: "/A", TotalBytes: 100, FreeBytes: 50}}}
	rec.Record("folder-placed", world, nil)

	world.Volumes[0].FreeBytes = 0 // mutate the live caller-side copy
	snap := rec.Snapshots()[0]
	if snap.World.Volumes[0].FreeBytes != 50 {
		t.Fatalf("snapshot mutated by later change to live state: %+v", snap.World.Volumes[0])
	}
}

func TestNewRecorderAssignsDistinctRunIDs(t *testing.T) {
	rec1 := NewRecorder()
	rec2 := NewRecorder()
	if rec1.RunID() == "" || rec2.RunID() == "" {
		t.Fatal("expected a non-empty run ID")
	}
	if rec1.RunID() == rec2.RunID() {
		t.Fatal("expected distinct run IDs across Recorders")
	}

	world := model.WorldView{Volumes: []model.VolumeState{{Path: "/A", TotalBytes: 100, FreeBytes: 50}}}
	rec1.Record("folder-placed", world, nil)
	if rec1.Snapshots()[0].RunID != rec1.RunID() {
		t.Fatal("expected recorded snapshot to carry the Recorder's run ID")
	}
}

func TestValidateCatchesOversubscribedVolume(t *testing.T) {
	snaps := []model.Snapshot{
		{Step: 1, Action: "file-placed", World: model.WorldView{
			Volumes: []model.VolumeState{{Path: "/A", TotalBytes: 100, FreeBytes: -10}},
		}},
	}
	if err := Validate(nil, snaps); err == nil {
		t.Fatal("expected an error for a volume with negative free bytes")
	}
}

func TestValidateCatchesDoubleMovedFile(t *testing.T) {
	moves := []model.FileMove{
		{File: model.FileRecord{AbsolutePath: "/A/x"}, TargetVolume: "/B", Status: model.StatusPending},
		{File: model.FileRecord{AbsolutePath: "/A/x"}, TargetVolume: "/C", Status: model.StatusPending},
	}
	if err := Validate(moves, nil); err == nil {
		t.Fatal("expected an error for a file placed twice")
	}
}

func TestValidatePassesForCleanPlan(t *testing.T) {
	moves := []model.FileMove{
		{File: model.FileRecord{AbsolutePath: "/A/x"}, TargetVolume: "/B", Status: model.StatusPending},
		{File: model.FileRecord{AbsolutePath: "/A/y"}, Status: model.StatusSkipped, Reason: "no fit"},
	}
	snaps := []model.Snapshot{
		{Step: 1, Action: "file-placed", World: model.WorldView{
			Volumes: []model.VolumeState{{Path: "/B", TotalBytes: 100, FreeBytes: 10}},
		}},
	}
	if err := Validate(moves, snaps); err != nil {
		t.Fatalf("expected no error for a clean plan, got %v", err)
	}
}
