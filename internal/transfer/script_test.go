package transfer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jbodctl/jbodctl/internal/materialize"
	"github.com/jbodctl/jbodctl/internal/model"
)

func samplePlan() model.Plan {
	moves := []model.FileMove{
		{
			File:         model.FileRecord{AbsolutePath: "/src1/a.bin", RelativePath: "a.bin", SizeBytes: 100, SourceVolume: "/src1"},
			TargetVolume: "/dest1",
			Status:       model.StatusPending,
		},
		{
			File:         model.FileRecord{AbsolutePath: "/src2/b.bin", RelativePath: "b.bin", SizeBytes: 200, SourceVolume: "/src2"},
			TargetVolume: "/dest1",
			Status:       model.StatusPending,
		},
		{
			File:         model.FileRecord{AbsolutePath: "/src1/c.bin", RelativePath: "c.bin", SizeBytes: 50, SourceVolume: "/src1"},
			TargetVolume: "",
			Status:       model.StatusSkipped,
			Reason:       "no destination has sufficient free space",
		},
	}
	return materialize.Materialize(moves)
}

func TestGenerateScriptIncludesHeaderAndBatches(t *testing.T) {
	plan := samplePlan()
	script := GenerateScript(plan, ScriptOptions{GeneratedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Concurrency: 4})

	if !strings.HasPrefix(script, "#!/bin/sh\n") {
		t.Error("expected shebang as first line")
	}
	if !strings.Contains(script, "set -e") {
		t.Error("expected strict-mode directive")
	}
	if !strings.Contains(script, "pending moves: 2") {
		t.Error("expected pending move count of 2 (skipped move excluded)")
	}
	if !strings.Contains(script, "batch_0()") {
		t.Error("expected a batched function for the single destination volume")
	}
	if !strings.Contains(script, "rsync -a --remove-source-files") {
		t.Error("expected a remove-source-semantics recursive copy invocation")
	}
	if !strings.Contains(script, "a.bin") || !strings.Contains(script, "b.bin") {
		t.Error("expected both pending relative paths in the inline file list")
	}
	if strings.Contains(script, "c.bin") {
		t.Error("skipped move must not appear in any batch's file list")
	}
	if !strings.Contains(script, "wait\n") {
		t.Error("expected a closing barrier")
	}
}

func TestGenerateScriptGroupsByDestinationThenSource(t *testing.T) {
	plan := samplePlan()
	script := GenerateScript(plan, ScriptOptions{GeneratedAt: time.Now(), Concurrency: 2})

	// Two distinct source volumes feed the same destination: expect two
	// rsync invocations within the one destination batch.
	count := strings.Count(script, "rsync -a")
	if count != 2 {
		t.Errorf("expected 2 rsync invocations (one per source volume), got %d", count)
	}
}

func TestGenerateScriptEmptyPlanExitsZero(t *testing.T) {
	plan := materialize.Materialize(nil)
	script := GenerateScript(plan, ScriptOptions{GeneratedAt: time.Now()})

	if !strings.Contains(script, "exit 0") {
		t.Error("expected an empty plan to render a minimal script that exits 0")
	}
	if strings.Contains(script, "rsync") {
		t.Error("expected no batches for an empty plan")
	}
}

func TestRunScriptExecutesEmptyPlanSuccessfully(t *testing.T) {
	plan := materialize.Materialize(nil)
	script := GenerateScript(plan, ScriptOptions{GeneratedAt: time.Now()})

	if err := RunScript(context.Background(), script); err != nil {
		t.Fatalf("expected empty plan script to exit 0, got: %v", err)
	}
}

func TestRunScriptPropagatesFailure(t *testing.T) {
	script := "#!/bin/sh\nexit 7\n"
	if err := RunScript(context.Background(), script); err == nil {
		t.Fatal("expected non-zero exit script to return an error")
	}
}
