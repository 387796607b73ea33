// Package audit records the ordered trail of WorldView snapshots taken
// after every planner mutation, for post-hoc inspection by the browser
// UI and for the determinism tests in the end-to-end scenarios.
package audit

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jbodctl/jbodctl/internal/model"
)

// Recorder accumulates a monotonically increasing, contiguous sequence
// of snapshots. It is owned exclusively by one planner invocation; it
// is not safe for concurrent use.
type Recorder struct {
	runID     string
	step      int
	snapshots []model.Snapshot
}

// NewRecorder returns an empty Recorder tagged with a fresh run ID that
// every snapshot it produces carries. The ID is generated here alone; it
// is not shared with report.EventLogger's run ID.
func NewRecorder() *Recorder {
	return &Recorder{runID: uuid.New().String()}
}

// RunID returns the Recorder's run identifier.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record deep-copies world and appends a snapshot tagged action with
// the given metadata. Step numbers start at 1 and are contiguous.
func (r *Recorder) Record(action string, world model.WorldView, metadata map[string]string) {
	r.step++
	r.snapshots = append(r.snapshots, model.Snapshot{
		RunID:    r.runID,
		Step:     r.step,
		Action:   action,
		World:    world.Clone(),
		Metadata: metadata,
	})
}

// Snapshots returns the recorded sequence. The returned slice must not
// be mutated by the caller; each element's World is already an
// independent deep copy.
func (r *Recorder) Snapshots() []model.Snapshot {
	return r.snapshots
}

// Validate checks a materialized plan's moves against the Recorder's
// snapshot trail for the two invariants a packer bug would break: no
// volume's free space ever went negative, and no file was placed more
// than once. It does not re-run the packer; it only audits what
// already happened.
func Validate(moves []model.FileMove, snapshots []model.Snapshot) error {
	seen := make(map[string]bool, len(moves))
	for _, m := range moves {
		if m.Status != model.StatusPending && m.Status != model.StatusCompleted {
			continue
		}
		if seen[m.File.AbsolutePath] {
			return fmt.Errorf("file double-moved: %s", m.File.AbsolutePath)
		}
		seen[m.File.AbsolutePath] = true
	}

	for _, snap := range snapshots {
		for _, v := range snap.World.Volumes {
			if v.FreeBytes < 0 {
				return fmt.Errorf("volume %s oversubscribed at step %d (action %s): free bytes %d",
					v.Path, snap.Step, snap.Action, v.FreeBytes)
			}
		}
	}

	return nil
}
