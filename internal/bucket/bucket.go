// Package bucket bounds the combinatorial search space of the combo
// scorer by size-bucketing the file population and drawing a small
// representative sample (smallest/median/largest) from each bucket.
package bucket

import (
	"sort"

	"github.com/jbodctl/jbodctl/internal/model"
)

// boundaries holds each size-bucket's lower bound; the upper bound is
// the next boundary, or +Inf for the last.
var boundaries = []int64{0, 100 << 10, 1 << 20, 10 << 20, 100 << 20}

// indexOf returns which fixed logarithmic bucket size belongs in:
// [0,100KiB), [100KiB,1MiB), [1MiB,10MiB), [10MiB,100MiB), [100MiB,inf).
func indexOf(size int64) int {
	idx := 0
	for i, b := range boundaries {
		if size >= b {
			idx = i
		}
	}
	return idx
}

// Sample buckets files into the fixed logarithmic size ranges, drops
// empty buckets, and for each non-empty bucket draws up to three
// representatives (smallest, median, largest by ascending size).
// Results are deduplicated by AbsolutePath preserving first-seen order,
// bounding the returned set to at most 3*len(boundaries) files.
func Sample(files []model.FileRecord) []model.FileRecord {
	buckets := make([][]model.FileRecord, len(boundaries))
	for _, f := range files {
		idx := indexOf(f.SizeBytes)
		buckets[idx] = append(buckets[idx], f)
	}

	seen := make(map[string]bool)
	out := make([]model.FileRecord, 0, 3*len(boundaries))
	for _, b := range buckets {
		if len(b) == 0 {
			continue
		}
		sorted := make([]model.FileRecord, len(b))
		copy(sorted, b)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].SizeBytes < sorted[j].SizeBytes
		})

		indices := []int{0, len(sorted) / 2, len(sorted) - 1}
		for _, i := range indices {
			f := sorted[i]
			if seen[f.AbsolutePath] {
				continue
			}
			seen[f.AbsolutePath] = true
			out = append(out, f)
		}
	}
	return out
}
