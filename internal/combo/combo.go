// Package combo implements the combination scorer: given a source file
// list and a target's available capacity, it finds the best single file
// or small subset of files to place, bounding search via the
// representative sample from internal/bucket.
package combo

import (
	"sort"

	"github.com/jbodctl/jbodctl/internal/bucket"
	"github.com/jbodctl/jbodctl/internal/model"
)

// DefaultKMax is the default maximum subset size considered.
const DefaultKMax = 4

// Best returns the best-scoring placement for some subset of source
// into target with available bytes of room, or nil if nothing fits.
// It considers the best single file and every k-subset (2..kMax) of the
// bucketed representative sample, picking the highest score; ties are
// broken by fewer files, then smaller wasted space, then
// lexicographically smaller ordered AbsolutePath tuple.
func Best(source []model.FileRecord, available int64, target string, kMax int) *model.ScoredCandidate {
	if kMax <= 0 {
		kMax = DefaultKMax
	}

	fits := make([]model.FileRecord, 0, len(source))
	for _, f := range source {
		if f.SizeBytes <= available {
			fits = append(fits, f)
		}
	}
	if len(fits) == 0 {
		return nil
	}

	var best *model.ScoredCandidate
	if single := bestSingle(fits, available, target); single != nil {
		best = single
	}

	sample := bucket.Sample(fits)
	maxK := kMax
	if maxK > len(sample) {
		maxK = len(sample)
	}
	for k := 2; k <= maxK; k++ {
		forEachCombination(sample, k, func(subset []model.FileRecord) {
			cand := scoreSubset(subset, available, target)
			if cand == nil {
				return
			}
			if best == nil || better(*cand, *best) {
				best = cand
			}
		})
	}
	return best
}

// bestSingle returns the single file maximizing size/available, as a
// ScoredCandidate, or nil if fits is empty.
func bestSingle(fits []model.FileRecord, available int64, target string) *model.ScoredCandidate {
	var best *model.FileRecord
	for i := range fits {
		if best == nil || fits[i].SizeBytes > best.SizeBytes {
			best = &fits[i]
		}
	}
	if best == nil {
		return nil
	}
	return candidateFor([]model.FileRecord{*best}, available, target)
}

func scoreSubset(subset []model.FileRecord, available int64, target string) *model.ScoredCandidate {
	var total int64
	for _, f := range subset {
		total += f.SizeBytes
	}
	if total > available {
		return nil
	}
	cp := make([]model.FileRecord, len(subset))
	copy(cp, subset)
	return candidateFor(cp, available, target)
}

func candidateFor(files []model.FileRecord, available int64, target string) *model.ScoredCandidate {
	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}
	if available <= 0 {
		return nil
	}
	return &model.ScoredCandidate{
		Files:        files,
		TotalBytes:   total,
		TargetVolume: target,
		WastedSpace:  available - total,
		Score:        float64(total) / float64(available),
	}
}

// better reports whether a should replace b as the current best,
// applying the scorer's full tie-break chain.
func better(a, b model.ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.Files) != len(b.Files) {
		return len(a.Files) < len(b.Files)
	}
	if a.WastedSpace != b.WastedSpace {
		return a.WastedSpace < b.WastedSpace
	}
	return lessPathTuple(a.Files, b.Files)
}

// lessPathTuple compares two equal-length file sets by their sorted
// AbsolutePath tuples, lexicographically.
func lessPathTuple(a, b []model.FileRecord) bool {
	pa := sortedPaths(a)
	pb := sortedPaths(b)
	for i := range pa {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return false
}

func sortedPaths(files []model.FileRecord) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.AbsolutePath
	}
	sort.Strings(paths)
	return paths
}

// forEachCombination invokes fn once per k-sized subset of items, in
// lexicographic combination order over the input indices.
func forEachCombination(items []model.FileRecord, k int, fn func([]model.FileRecord)) {
	n := len(items)
	if k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		subset := make([]model.FileRecord, k)
		for i, j := range idx {
			subset[i] = items[j]
		}
		fn(subset)

		pos := k - 1
		for pos >= 0 && idx[pos] == n-k+pos {
			pos--
		}
		if pos < 0 {
			return
		}
		idx[pos]++
		for i := pos + 1; i < k; i++ {
			idx[i] = idx[i-1] + 1
		}
	}
}
