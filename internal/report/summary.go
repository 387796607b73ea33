package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/size"
)

// SummaryReport represents a complete summary report for one plan or
// apply run.
type SummaryReport struct {
	GeneratedAt time.Time
	Duration    time.Duration

	// Inventory statistics
	FilesScanned    int
	FilesEligible   int
	FilesWithErrors int

	// Planning statistics
	MovesPlanned  int
	MovesSkipped  int
	BytesPlanned  int64
	MovesByVolume map[string]int
	BytesByVolume map[string]int64

	// Execution statistics
	FilesExecuted int
	FilesFailed   int
	BytesWritten  int64
	ExecutionTime time.Duration

	// Details
	TopErrors    []ErrorSummary
	Conflicts    []ConflictInfo
	SkipReasons  []SkipReasonSummary

	// Metadata
	SourceVolumes []string
	PlanFile      string
	DatabasePath  string
	EventLogPath  string
}

// ErrorSummary represents an error with its count
type ErrorSummary struct {
	Error string
	Count int
}

// ConflictInfo represents a destination-path conflict detected at
// apply time.
type ConflictInfo struct {
	SrcPath  string
	DestPath string
	Reason   string
}

// SkipReasonSummary groups skipped moves by their reason string.
type SkipReasonSummary struct {
	Reason string
	Count  int
	Bytes  int64
}

// GenerateSummaryReport builds a SummaryReport directly from a
// materialized Plan; the planner core never touches the filesystem or
// a database, so this is the cheapest way to report a run without
// forcing a persistence round-trip.
func GenerateSummaryReport(plan model.Plan, sourceVolumes []string, eventLogPath string) *SummaryReport {
	report := &SummaryReport{
		GeneratedAt:   time.Now(),
		EventLogPath:  eventLogPath,
		SourceVolumes: sourceVolumes,
		MovesByVolume: plan.Summary.MovesByVolume,
		BytesByVolume: plan.Summary.BytesByVolume,
		MovesPlanned:  plan.Summary.TotalFiles,
		BytesPlanned:  plan.Summary.TotalBytes,
	}

	reasonCounts := make(map[string]*SkipReasonSummary)
	for _, m := range plan.Moves {
		if m.Status != model.StatusSkipped {
			continue
		}
		report.MovesSkipped++
		s, ok := reasonCounts[m.Reason]
		if !ok {
			s = &SkipReasonSummary{Reason: m.Reason}
			reasonCounts[m.Reason] = s
		}
		s.Count++
		s.Bytes += m.File.SizeBytes
	}
	for _, s := range reasonCounts {
		report.SkipReasons = append(report.SkipReasons, *s)
	}
	sort.Slice(report.SkipReasons, func(i, j int) bool {
		return report.SkipReasons[i].Count > report.SkipReasons[j].Count
	})

	return report
}

// WriteMarkdownReport writes the summary report as Markdown.
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString("# jbodctl Consolidation Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.PlanFile != "" {
		md.WriteString(fmt.Sprintf("**Plan file:** `%s`\n\n", report.PlanFile))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event log:** `%s`\n\n", report.EventLogPath))
	}
	if len(report.SourceVolumes) > 0 {
		md.WriteString(fmt.Sprintf("**Source volumes:** %s\n\n", strings.Join(report.SourceVolumes, ", ")))
	}

	md.WriteString("---\n\n")

	if report.FilesScanned > 0 {
		md.WriteString("## Inventory\n\n")
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Files Scanned | %d |\n", report.FilesScanned))
		md.WriteString(fmt.Sprintf("| Files Eligible | %d |\n", report.FilesEligible))
		if report.FilesWithErrors > 0 {
			md.WriteString(fmt.Sprintf("| Files with Errors | %d |\n", report.FilesWithErrors))
		}
		md.WriteString("\n")
	}

	md.WriteString("## Planning\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Moves Planned | %d |\n", report.MovesPlanned))
	md.WriteString(fmt.Sprintf("| Bytes Planned | %s |\n", size.FormatBytes(report.BytesPlanned)))
	md.WriteString(fmt.Sprintf("| Moves Skipped | %d |\n", report.MovesSkipped))
	md.WriteString("\n")

	if len(report.MovesByVolume) > 0 {
		md.WriteString("### By target volume\n\n")
		md.WriteString("| Volume | Moves | Bytes |\n")
		md.WriteString("|--------|-------|-------|\n")
		volumes := make([]string, 0, len(report.MovesByVolume))
		for v := range report.MovesByVolume {
			volumes = append(volumes, v)
		}
		sort.Strings(volumes)
		for _, v := range volumes {
			md.WriteString(fmt.Sprintf("| `%s` | %d | %s |\n", v, report.MovesByVolume[v], size.FormatBytes(report.BytesByVolume[v])))
		}
		md.WriteString("\n")
	}

	if len(report.SkipReasons) > 0 {
		md.WriteString("### Skip reasons\n\n")
		md.WriteString("| Reason | Count | Bytes |\n")
		md.WriteString("|--------|-------|-------|\n")
		for _, s := range report.SkipReasons {
			md.WriteString(fmt.Sprintf("| %s | %d | %s |\n", s.Reason, s.Count, size.FormatBytes(s.Bytes)))
		}
		md.WriteString("\n")
	}

	if report.FilesExecuted > 0 || report.FilesFailed > 0 {
		md.WriteString("## Execution\n\n")
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Files Executed | %d |\n", report.FilesExecuted))
		if report.FilesFailed > 0 {
			md.WriteString(fmt.Sprintf("| Files Failed | %d |\n", report.FilesFailed))
		}
		md.WriteString(fmt.Sprintf("| Bytes Written | %s |\n", size.FormatBytes(report.BytesWritten)))
		if report.ExecutionTime > 0 {
			md.WriteString(fmt.Sprintf("| Execution Time | %s |\n", report.ExecutionTime.Round(time.Second)))
		}
		md.WriteString("\n")
	}

	if len(report.TopErrors) > 0 {
		md.WriteString("## Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, err := range report.TopErrors {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", err.Count, err.Error))
		}
		md.WriteString("\n")
	}

	if len(report.Conflicts) > 0 {
		md.WriteString("## Conflicts\n\n")
		md.WriteString("| Source | Destination | Reason |\n")
		md.WriteString("|--------|-------------|--------|\n")
		for _, conflict := range report.Conflicts {
			md.WriteString(fmt.Sprintf("| `%s` | `%s` | %s |\n",
				truncatePath(conflict.SrcPath, 40),
				truncatePath(conflict.DestPath, 40),
				conflict.Reason))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by jbodctl*\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// truncatePath truncates a file path to a maximum length, keeping the
// start and end and eliding the middle.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
