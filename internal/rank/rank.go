// Package rank computes per-volume utilization and orders volumes into
// the evacuation schedule the packer walks: least-full source first.
package rank

import (
	"sort"

	"github.com/jbodctl/jbodctl/internal/model"
)

// Ranked pairs a volume with the count of candidate files it hosts.
type Ranked struct {
	Volume     model.VolumeState
	FileCount  int
}

// Rank drops volumes that host zero of the given (already-filtered)
// files and sorts the remainder by UsedRatio ascending, ties broken by
// ascending path. Volumes are candidate sources only when they host at
// least one file; any volume may still be selected as a target.
func Rank(volumes []model.VolumeState, files []model.FileRecord) []Ranked {
	counts := make(map[string]int, len(volumes))
	for _, f := range files {
		counts[f.SourceVolume]++
	}

	out := make([]Ranked, 0, len(volumes))
	for _, v := range volumes {
		n := counts[v.Path]
		if n == 0 {
			continue
		}
		out = append(out, Ranked{Volume: v, FileCount: n})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Volume.UsedRatio(), out[j].Volume.UsedRatio()
		if ri != rj {
			return ri < rj
		}
		return out[i].Volume.Path < out[j].Volume.Path
	})
	return out
}
