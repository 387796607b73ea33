// Package model holds the data types shared by every stage of the
// consolidation planner: the input snapshot (WorldView), the
// intermediate structures the stages build (FolderGroup,
// ScoredCandidate), and the output (Plan, FileMove, WorldViewSnapshot).
package model

// FileRecord is a discovered file. It is immutable: the planner never
// mutates a FileRecord, only the bookkeeping that references it.
type FileRecord struct {
	AbsolutePath string // globally unique within a WorldView
	RelativePath string // path within its owning volume
	SizeBytes    int64
	SourceVolume string // VolumeState.Path of the owning volume
}

// VolumeState is one mounted storage volume.
type VolumeState struct {
	Path       string
	TotalBytes int64
	FreeBytes  int64
}

// UsedBytes returns total-free.
func (v VolumeState) UsedBytes() int64 {
	return v.TotalBytes - v.FreeBytes
}

// UsedRatio returns used/total, or 0 when total is 0.
func (v VolumeState) UsedRatio() float64 {
	if v.TotalBytes == 0 {
		return 0
	}
	return float64(v.UsedBytes()) / float64(v.TotalBytes)
}

// WorldView is the input snapshot handed to the planner: every volume
// known to the array and every file discovered across them.
type WorldView struct {
	Volumes []VolumeState
	Files   []FileRecord
}

// Clone deep-copies a WorldView so a caller can keep a snapshot that
// survives later mutation of the live capacity map.
func (w WorldView) Clone() WorldView {
	volumes := make([]VolumeState, len(w.Volumes))
	copy(volumes, w.Volumes)
	files := make([]FileRecord, len(w.Files))
	copy(files, w.Files)
	return WorldView{Volumes: volumes, Files: files}
}

// FolderGroup is the set of files sharing an immediate parent
// directory, derived during the grouping stage.
type FolderGroup struct {
	FolderPath       string // immediate parent of every member's RelativePath; "" for root files
	Files            []FileRecord
	TotalBytes       int64
	LargestFileBytes int64
	KeepTogether     bool
}

// ScoredCandidate is a tentative placement produced by the combination
// scorer: a subset of one source volume's files destined for one target.
type ScoredCandidate struct {
	Files         []FileRecord
	TotalBytes    int64
	TargetVolume  string
	WastedSpace   int64
	Score         float64 // TotalBytes / available, in (0, 1]
}

// MoveStatus is the lifecycle state of a FileMove.
type MoveStatus string

const (
	StatusPending    MoveStatus = "pending"
	StatusInProgress MoveStatus = "in_progress"
	StatusCompleted  MoveStatus = "completed"
	StatusSkipped    MoveStatus = "skipped"
	StatusFailed     MoveStatus = "failed"
)

// FileMove is a planned relocation of one file.
type FileMove struct {
	File         FileRecord
	TargetVolume string
	Status       MoveStatus
	Reason       string // set iff Status is Skipped or Failed
}

// DestinationPath joins the target volume with the file's relative path.
func (m FileMove) DestinationPath() string {
	if m.TargetVolume == "" {
		return ""
	}
	return m.TargetVolume + "/" + m.File.RelativePath
}

// Summary aggregates the pending moves of a Plan.
type Summary struct {
	TotalFiles      int
	TotalBytes      int64
	MovesByVolume   map[string]int
	BytesByVolume   map[string]int64
}

// Plan is the ordered, materialized output of the planner.
type Plan struct {
	Moves   []FileMove
	Summary Summary
}

// Snapshot pairs a step counter, an action tag, and a deep copy of the
// WorldView reflecting the state immediately after that action.
type Snapshot struct {
	RunID    string // shared by every snapshot from one Recorder
	Step     int
	Action   string
	World    WorldView
	Metadata map[string]string
}
