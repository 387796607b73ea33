// Package group partitions a file collection into FolderGroups by
// immediate parent directory and classifies each as atomic
// (keep_together) or splittable.
package group

import (
	"sort"
	"strings"

	"github.com/jbodctl/jbodctl/internal/model"
)

// DefaultMinSplitSizeBytes is the default min_split_size_bytes threshold
// (1 GiB) below which a folder is always kept together.
const DefaultMinSplitSizeBytes int64 = 1 << 30

// DefaultFolderThreshold is the default largest-file-to-total ratio
// (0.9) at or above which a folder is treated as de-facto single-item.
const DefaultFolderThreshold = 0.9

// Options configures the keep_together classification rule.
type Options struct {
	MinSplitSizeBytes int64
	FolderThreshold   float64
}

// ImmediateParent returns the substring of relPath before the final
// "/", or "" if there is none.
func ImmediateParent(relPath string) string {
	if idx := strings.LastIndexByte(relPath, '/'); idx >= 0 {
		return relPath[:idx]
	}
	return ""
}

// Group partitions files by ImmediateParent(file.RelativePath) and
// computes TotalBytes/LargestFileBytes/KeepTogether for each group.
// Groups are returned sorted by FolderPath ascending for determinism;
// callers that need size-descending order (pass 1) sort independently.
func Group(files []model.FileRecord, opts Options) []model.FolderGroup {
	byParent := make(map[string][]model.FileRecord)
	order := make([]string, 0)
	for _, f := range files {
		parent := ImmediateParent(f.RelativePath)
		if _, ok := byParent[parent]; !ok {
			order = append(order, parent)
		}
		byParent[parent] = append(byParent[parent], f)
	}
	sort.Strings(order)

	groups := make([]model.FolderGroup, 0, len(order))
	for _, parent := range order {
		members := byParent[parent]
		var total, largest int64
		for _, f := range members {
			total += f.SizeBytes
			if f.SizeBytes > largest {
				largest = f.SizeBytes
			}
		}
		groups = append(groups, model.FolderGroup{
			FolderPath:       parent,
			Files:            members,
			TotalBytes:       total,
			LargestFileBytes: largest,
			KeepTogether:     keepTogether(total, largest, opts),
		})
	}
	return groups
}

func keepTogether(total, largest int64, opts Options) bool {
	if total < opts.MinSplitSizeBytes {
		return true
	}
	if total == 0 || opts.FolderThreshold <= 0 {
		// FolderThreshold <= 0 is the documented boundary ("every folder is
		// splittable"): a literal ratio>=0 comparison would instead make
		// every folder atomic, so treat <= 0 as disabling the dominant-file
		// rule rather than a threshold everything clears.
		return false
	}
	return float64(largest)/float64(total) >= opts.FolderThreshold
}

// topLevel returns the first path segment of relPath, "" if relPath has
// no separator.
func topLevel(relPath string) string {
	if idx := strings.IndexByte(relPath, '/'); idx >= 0 {
		return relPath[:idx]
	}
	return ""
}

// GroupByTopLevel is the coarse diagnostic grouping mode: partitions by
// the first path segment instead of the immediate parent, and always
// sets KeepTogether true regardless of size.
func GroupByTopLevel(files []model.FileRecord) []model.FolderGroup {
	byTop := make(map[string][]model.FileRecord)
	order := make([]string, 0)
	for _, f := range files {
		top := topLevel(f.RelativePath)
		if _, ok := byTop[top]; !ok {
			order = append(order, top)
		}
		byTop[top] = append(byTop[top], f)
	}
	sort.Strings(order)

	groups := make([]model.FolderGroup, 0, len(order))
	for _, top := range order {
		members := byTop[top]
		var total, largest int64
		for _, f := range members {
			total += f.SizeBytes
			if f.SizeBytes > largest {
				largest = f.SizeBytes
			}
		}
		groups = append(groups, model.FolderGroup{
			FolderPath:       top,
			Files:            members,
			TotalBytes:       total,
			LargestFileBytes: largest,
			KeepTogether:     true,
		})
	}
	return groups
}
