package main

import (
	"context"
	"fmt"

	"github.com/jbodctl/jbodctl/internal/inventory"
	"github.com/jbodctl/jbodctl/internal/probe"
	"github.com/jbodctl/jbodctl/internal/report"
	"github.com/jbodctl/jbodctl/internal/store"
	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scanCmd = &cobra.Command{
	Use:   "scan [volumes...]",
	Short: "Discover files and probe free space on each volume",
	Long: `Walk each given volume root, recording every file's path and size,
then probe each volume's total/free capacity via statfs. Results are
persisted to the state database for the plan command to read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Int("concurrency", 4, "number of concurrent scan workers per volume")
}

func runScan(cmd *cobra.Command, volumes []string) error {
	ctx := context.Background()

	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")
	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	dbPath := getConfigString("db", "jbodctl-state.db")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logLevel := report.LevelInfo
	if quiet {
		logLevel = report.LevelWarning
	} else if verbose {
		logLevel = report.LevelDebug
	}
	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	scanner := inventory.New(&inventory.Config{Store: db, Concurrency: concurrency, Logger: logger})

	util.InfoLog("=== Scanning %d volume(s) ===", len(volumes))
	results, err := scanner.ScanAll(ctx, volumes)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	var totalFiles int
	var totalBytes int64
	for _, r := range results {
		totalFiles += r.FilesFound
		totalBytes += r.BytesFound
		if len(r.Errors) > 0 {
			util.WarnLog("  %s: %d files, %d errors", r.VolumePath, r.FilesFound, len(r.Errors))
		}
	}
	util.SuccessLog("Scan complete: %d files across %d volumes", totalFiles, len(volumes))

	util.InfoLog("=== Probing free space ===")
	states, errs := probe.ProbeAll(volumes)
	for _, err := range errs {
		util.WarnLog("probe error: %v", err)
	}
	for _, v := range states {
		if err := db.UpsertVolume(v); err != nil {
			return fmt.Errorf("failed to persist volume %s: %w", v.Path, err)
		}
		if logger != nil {
			_ = logger.LogProbe(v.Path, v.TotalBytes, v.FreeBytes, nil)
		}
		util.InfoLog("  %s: %.1f%% used", v.Path, v.UsedRatio()*100)
	}

	return nil
}
