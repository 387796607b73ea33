// Package size parses and formats human-readable byte sizes and
// computes utilization ratios, the primitives every other planner
// stage builds on (spec §4, Size & Ratio primitives).
package size

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseBytes parses a human-readable byte size with an optional
// B/KB/MB/GB/TB suffix using base-1024 semantics, e.g. "500MB",
// "2.5 GB", "1024". A bare integer is interpreted as bytes.
func ParseBytes(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Plain integer: fast path, avoids humanize's float rounding for
	// exact byte counts.
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %s", s)
		}
		return n, nil
	}

	normalized := normalizeSuffix(trimmed)
	bytesF, err := humanize.ParseBytes(normalized)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(bytesF), nil
}

// normalizeSuffix rewrites the "KB"/"MB"/"GB"/"TB" suffixes, which
// go-humanize reads as decimal, into the base-1024 forms (KiB, MiB, GiB,
// TiB) spec.md requires. Any other suffix, including a bare "K"/"M"/
// "G"/"T", is passed through unchanged and keeps go-humanize's meaning.
func normalizeSuffix(s string) string {
	upper := strings.ToUpper(s)
	// Only rewrite the suffix, not any digits, so we operate on upper
	// then reuse the original digits by replacing case-insensitively.
	for _, pair := range [][2]string{{"KB", "KiB"}, {"MB", "MiB"}, {"GB", "GiB"}, {"TB", "TiB"}} {
		if strings.HasSuffix(upper, pair[0]) {
			return s[:len(s)-len(pair[0])] + pair[1]
		}
	}
	return s
}

// FormatBytes renders n using base-1024 units (e.g. "1.5 GiB"),
// matching the human-readable forms the plan script's metadata block
// and CLI summaries print.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// Ratio returns used/total, or 0 when total is 0. Centralizes the
// zero-total guard used by VolumeState.UsedRatio and every scoring
// computation that divides by available capacity.
func Ratio(used, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}
