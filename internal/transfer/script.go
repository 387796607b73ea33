// Package transfer generates the persisted plan script described in
// spec.md §6 and applies it against the filesystem, either by shelling
// out to the generated script via os/exec or by replaying its moves
// directly, grounded on the teacher's internal/execute/executor.go.
package transfer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/jbodctl/jbodctl/internal/materialize"
	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/size"
	"github.com/jbodctl/jbodctl/internal/util"
)

// ScriptOptions parameterizes the generated script's metadata block and
// batch execution.
type ScriptOptions struct {
	GeneratedAt time.Time
	Concurrency int
	LogPath     string // progress side-channel log the apply UI tails
}

// GenerateScript renders plan as the plain-text transfer script spec.md
// §6 describes: a shebang/strict-mode header, a metadata comment block,
// one backgrounded batch per destination volume, and a closing barrier.
// An empty plan renders a minimal script that exits 0.
func GenerateScript(plan model.Plan, opts ScriptOptions) string {
	var b strings.Builder

	b.WriteString("#!/bin/sh\n")
	b.WriteString("set -e\n\n")

	targets, batches := materialize.ByTarget(plan)

	b.WriteString("# jbodctl consolidation plan\n")
	b.WriteString(fmt.Sprintf("# generated: %s\n", opts.GeneratedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("# source volumes: %s\n", strings.Join(sourceVolumes(plan), ", ")))
	b.WriteString(fmt.Sprintf("# pending moves: %d\n", plan.Summary.TotalFiles))
	b.WriteString(fmt.Sprintf("# pending bytes: %s\n", size.FormatBytes(plan.Summary.TotalBytes)))
	b.WriteString(fmt.Sprintf("# concurrency: %d\n\n", concurrencyOrDefault(opts.Concurrency)))

	if len(targets) == 0 {
		b.WriteString("exit 0\n")
		return b.String()
	}

	logPath := opts.LogPath
	if logPath == "" {
		logPath = "./jbodctl-apply.log"
	}
	b.WriteString(fmt.Sprintf("LOG=%q\n", logPath))
	b.WriteString(": > \"$LOG\"\n\n")

	for i, target := range targets {
		b.WriteString(fmt.Sprintf("batch_%d() {\n", i))
		writeBatchBody(&b, target, batches[target])
		b.WriteString("}\n")
		b.WriteString(fmt.Sprintf("batch_%d &\n\n", i))
	}

	b.WriteString("wait\n")
	return b.String()
}

// writeBatchBody appends one destination volume's batch function body
// to b, grouping its moves by source volume since rsync's --files-from
// is rooted at a single source directory.
func writeBatchBody(b *strings.Builder, target string, moves []model.FileMove) {
	bySource := make(map[string][]model.FileMove)
	var sources []string
	for _, m := range moves {
		if _, ok := bySource[m.File.SourceVolume]; !ok {
			sources = append(sources, m.File.SourceVolume)
		}
		bySource[m.File.SourceVolume] = append(bySource[m.File.SourceVolume], m)
	}
	sort.Strings(sources)

	for _, src := range sources {
		b.WriteString(fmt.Sprintf("  rsync -a --remove-source-files --files-from=- %q/ %q/ <<'JBODCTL_FILELIST'\n", src, target))
		for _, m := range bySource[src] {
			b.WriteString(m.File.RelativePath)
			b.WriteString("\n")
		}
		b.WriteString("JBODCTL_FILELIST\n")
		b.WriteString(fmt.Sprintf("  echo \"batch %s <- %s: %d files\" >> \"$LOG\"\n", target, src, len(bySource[src])))
	}
}

func sourceVolumes(plan model.Plan) []string {
	seen := make(map[string]bool)
	var volumes []string
	for _, m := range plan.Moves {
		if m.Status != model.StatusPending {
			continue
		}
		if !seen[m.File.SourceVolume] {
			seen[m.File.SourceVolume] = true
			volumes = append(volumes, m.File.SourceVolume)
		}
	}
	sort.Strings(volumes)
	return volumes
}

func concurrencyOrDefault(c int) int {
	if c <= 0 {
		return 4
	}
	return c
}

// RunScript writes script to a temp file and executes it with /bin/sh,
// the os/exec path spec.md §6 describes as the operator-facing way to
// apply a persisted plan: reviewable, editable, and runnable without
// jbodctl itself once generated. Stdout/stderr are forwarded to the
// caller's; the batch progress lines the script writes go to its $LOG
// file, not to stdout.
func RunScript(ctx context.Context, script string) error {
	f, err := os.CreateTemp("", "jbodctl-apply-*.sh")
	if err != nil {
		return fmt.Errorf("failed to create temp script: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(script); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp script: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp script: %w", err)
	}
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("failed to make temp script executable: %w", err)
	}

	util.InfoLog("Running plan script: %s", path)
	cmd := exec.CommandContext(ctx, "/bin/sh", path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("plan script failed: %w", err)
	}
	return nil
}
