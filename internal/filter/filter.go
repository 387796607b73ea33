// Package filter applies the size, path-prefix, and glob include/exclude
// criteria that narrow a raw file inventory down to the candidate set
// the rest of the planner operates on.
package filter

import (
	"path"
	"strings"

	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/util"
)

// Criteria mirrors FilterCriteria: the recognized filter options, applied
// in the fixed order size -> path prefix -> include -> exclude.
type Criteria struct {
	MinSizeBytes    int64
	PathPrefixes    []string
	IncludePatterns []string
	ExcludePatterns []string
}

// Apply returns the subset of files matching all criteria, preserving
// input order. Returns util.ErrInvalidFilter if MinSizeBytes is negative.
func Apply(files []model.FileRecord, c Criteria) ([]model.FileRecord, error) {
	if c.MinSizeBytes < 0 {
		return nil, util.ErrInvalidFilter
	}

	out := make([]model.FileRecord, 0, len(files))
	for _, f := range files {
		if f.SizeBytes < c.MinSizeBytes {
			continue
		}
		if !matchesPrefixes(f, c.PathPrefixes) {
			continue
		}
		if !matchesIncludes(f, c.IncludePatterns) {
			continue
		}
		if matchesExcludes(f, c.ExcludePatterns) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// matchesPrefixes implements the two-way prefix match: a file passes if
// any prefix matches its relative path OR its absolute path. Empty
// prefixes means accept-all.
func matchesPrefixes(f model.FileRecord, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(f.RelativePath, p) || strings.HasPrefix(f.AbsolutePath, p) {
			return true
		}
	}
	return false
}

func matchesIncludes(f model.FileRecord, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if globMatch(p, f.RelativePath) || globMatch(p, f.AbsolutePath) {
			return true
		}
	}
	return false
}

func matchesExcludes(f model.FileRecord, patterns []string) bool {
	for _, p := range patterns {
		if globMatch(p, f.RelativePath) || globMatch(p, f.AbsolutePath) {
			return true
		}
	}
	return false
}

// globMatch wraps path.Match, falling back to a basename match so a
// pattern like "*.tmp" still applies against a full path's final segment.
func globMatch(pattern, candidate string) bool {
	if ok, err := path.Match(pattern, candidate); err == nil && ok {
		return true
	}
	if ok, err := path.Match(pattern, path.Base(candidate)); err == nil && ok {
		return true
	}
	return false
}
