// Package pack implements the Hybrid Packer: the two-pass placement
// algorithm that walks volumes least-full-first, places whole folders
// where they fit, then falls back to individual files and file
// combinations for what is left over.
package pack

import (
	"sort"

	"github.com/jbodctl/jbodctl/internal/audit"
	"github.com/jbodctl/jbodctl/internal/combo"
	"github.com/jbodctl/jbodctl/internal/group"
	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/rank"
)

// Policy is the target-selection strategy, a tagged choice rather than
// a dynamically dispatched interface per the design notes.
type Policy string

const (
	BestFit  Policy = "best-fit"
	FirstFit Policy = "first-fit"
)

// Options configures one packer run.
type Options struct {
	MinFreeReserveBytes int64
	Policy              Policy
	KMax                int
	SourceVolumes       []string // explicit whitelist; empty means iterative evacuation over all
	MinSpaceBytes       int64    // evacuation stop threshold
	Group               group.Options
}

// reasonFolderNoFit and reasonFileNoFit are the two skip reasons the
// taxonomy (spec §7) names explicitly.
const (
	reasonFolderNoFit = "folder must stay together but no target has sufficient space"
	reasonFileNoFit   = "no destination has sufficient free space"
)

// state carries the packer's mutable live capacity map and the
// residual (not yet placed or skipped) file set across both passes and
// across evacuation rounds.
type state struct {
	world     model.WorldView
	opts      Options
	liveFree  map[string]int64
	remaining []model.FileRecord
	moves     []model.FileMove
	rec       *audit.Recorder
}

// Pack runs the hybrid packer to completion and returns the accumulated
// FileMove list (pending and skipped), recording one snapshot per
// mutation onto rec.
func Pack(world model.WorldView, opts Options, rec *audit.Recorder) []model.FileMove {
	s := &state{
		world:     world,
		opts:      opts,
		liveFree:  make(map[string]int64, len(world.Volumes)),
		remaining: append([]model.FileRecord(nil), world.Files...),
		rec:       rec,
	}
	for _, v := range world.Volumes {
		s.liveFree[v.Path] = v.FreeBytes
	}

	for {
		source, sourceFiles, ok := s.nextSource()
		if !ok {
			break
		}
		s.runPasses(source, sourceFiles)
	}
	return s.moves
}

// nextSource re-ranks the remaining candidate files and returns the
// next source volume to evacuate, its current files, and whether
// evacuation should continue.
func (s *state) nextSource() (model.VolumeState, []model.FileRecord, bool) {
	candidates := s.remaining
	if len(s.opts.SourceVolumes) > 0 {
		allowed := make(map[string]bool, len(s.opts.SourceVolumes))
		for _, v := range s.opts.SourceVolumes {
			allowed[v] = true
		}
		filtered := make([]model.FileRecord, 0, len(candidates))
		for _, f := range candidates {
			if allowed[f.SourceVolume] {
				filtered = append(filtered, f)
			}
		}
		candidates = filtered
	}

	ranked := rank.Rank(s.world.Volumes, candidates)
	if len(ranked) == 0 {
		return model.VolumeState{}, nil, false
	}

	source := ranked[0].Volume
	var sourceFiles []model.FileRecord
	var total int64
	for _, f := range candidates {
		if f.SourceVolume == source.Path {
			sourceFiles = append(sourceFiles, f)
			total += f.SizeBytes
		}
	}
	if total < s.opts.MinSpaceBytes {
		return model.VolumeState{}, nil, false
	}
	return source, sourceFiles, true
}

func (s *state) available(volPath string) int64 {
	a := s.liveFree[volPath] - s.opts.MinFreeReserveBytes
	if a < 0 {
		return 0
	}
	return a
}

func (s *state) snapshot() model.WorldView {
	volumes := make([]model.VolumeState, len(s.world.Volumes))
	for i, v := range s.world.Volumes {
		volumes[i] = model.VolumeState{Path: v.Path, TotalBytes: v.TotalBytes, FreeBytes: s.liveFree[v.Path]}
	}
	files := append([]model.FileRecord(nil), s.remaining...)
	return model.WorldView{Volumes: volumes, Files: files}
}

func (s *state) removeRemaining(paths map[string]bool) {
	kept := s.remaining[:0]
	for _, f := range s.remaining {
		if !paths[f.AbsolutePath] {
			kept = append(kept, f)
		}
	}
	s.remaining = kept
}

// runPasses executes Pass 1 (whole-folder placement) followed by
// Pass 2 (individual-file and combination placement) for one source.
func (s *state) runPasses(source model.VolumeState, sourceFiles []model.FileRecord) {
	groups := group.Group(sourceFiles, s.opts.Group)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalBytes > groups[j].TotalBytes
	})

	var exploded []model.FolderGroup
	for _, g := range groups {
		target, ok := s.selectTargetBySize(source.Path, g.TotalBytes)
		if ok {
			s.placeFiles(g.Files, target, "folder-placed", map[string]string{
				"source_volume": source.Path,
				"target_volume": target,
				"folder_path":   g.FolderPath,
			})
			continue
		}
		if g.KeepTogether {
			s.skipFiles(g.Files, reasonFolderNoFit, "folder-skipped", map[string]string{
				"source_volume": source.Path,
				"folder_path":   g.FolderPath,
			})
			continue
		}
		exploded = append(exploded, g)
	}

	var files []model.FileRecord
	for _, g := range exploded {
		files = append(files, g.Files...)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].SizeBytes > files[j].SizeBytes
	})

	for len(files) > 0 {
		f := files[0]
		if target, ok := s.selectTargetBySize(source.Path, f.SizeBytes); ok {
			s.placeFiles([]model.FileRecord{f}, target, "file-placed", map[string]string{
				"source_volume": source.Path,
				"target_volume": target,
				"file_path":     f.AbsolutePath,
			})
			files = files[1:]
			continue
		}

		if cand := s.selectBestCombination(files, source.Path); cand != nil {
			s.placeFiles(cand.Files, cand.TargetVolume, "file-placed", map[string]string{
				"source_volume": source.Path,
				"target_volume": cand.TargetVolume,
			})
			files = removeFiles(files, cand.Files)
			continue
		}

		s.skipFiles([]model.FileRecord{f}, reasonFileNoFit, "file-skipped", map[string]string{
			"source_volume": source.Path,
			"file_path":     f.AbsolutePath,
		})
		files = files[1:]
	}
}

// selectTargetBySize picks a target volume (not source) with available
// capacity >= size, applying the configured Policy. Targets are
// considered in the WorldView's input volume order.
func (s *state) selectTargetBySize(source string, size int64) (string, bool) {
	var best string
	var bestLeftover int64
	found := false
	for _, v := range s.world.Volumes {
		if v.Path == source {
			continue
		}
		avail := s.available(v.Path)
		if avail < size {
			continue
		}
		if s.opts.Policy == FirstFit {
			return v.Path, true
		}
		leftover := avail - size
		if !found || leftover < bestLeftover || (leftover == bestLeftover && v.Path < best) {
			best, bestLeftover, found = v.Path, leftover, true
		}
	}
	return best, found
}

// selectBestCombination evaluates the combination scorer against every
// eligible target volume and returns the overall best candidate.
func (s *state) selectBestCombination(sourceFiles []model.FileRecord, source string) *model.ScoredCandidate {
	var best *model.ScoredCandidate
	for _, v := range s.world.Volumes {
		if v.Path == source {
			continue
		}
		avail := s.available(v.Path)
		if avail <= 0 {
			continue
		}
		cand := combo.Best(sourceFiles, avail, v.Path, s.opts.KMax)
		if cand == nil {
			continue
		}
		if best == nil || comboBetter(*cand, *best) {
			best = cand
		}
	}
	return best
}

func comboBetter(a, b model.ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.Files) != len(b.Files) {
		return len(a.Files) < len(b.Files)
	}
	if a.WastedSpace != b.WastedSpace {
		return a.WastedSpace < b.WastedSpace
	}
	return a.TargetVolume < b.TargetVolume
}

func (s *state) placeFiles(files []model.FileRecord, target, action string, meta map[string]string) {
	var total int64
	paths := make(map[string]bool, len(files))
	for _, f := range files {
		s.moves = append(s.moves, model.FileMove{File: f, TargetVolume: target, Status: model.StatusPending})
		total += f.SizeBytes
		paths[f.AbsolutePath] = true
	}
	s.liveFree[target] -= total
	s.removeRemaining(paths)
	s.rec.Record(action, s.snapshot(), meta)
}

func (s *state) skipFiles(files []model.FileRecord, reason, action string, meta map[string]string) {
	paths := make(map[string]bool, len(files))
	for _, f := range files {
		s.moves = append(s.moves, model.FileMove{File: f, Status: model.StatusSkipped, Reason: reason})
		paths[f.AbsolutePath] = true
	}
	s.removeRemaining(paths)
	s.rec.Record(action, s.snapshot(), meta)
}

func removeFiles(from []model.FileRecord, remove []model.FileRecord) []model.FileRecord {
	drop := make(map[string]bool, len(remove))
	for _, f := range remove {
		drop[f.AbsolutePath] = true
	}
	out := from[:0]
	for _, f := range from {
		if !drop[f.AbsolutePath] {
			out = append(out, f)
		}
	}
	return out
}
