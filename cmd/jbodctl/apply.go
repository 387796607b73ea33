package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/size"
	"github.com/jbodctl/jbodctl/internal/store"
	"github.com/jbodctl/jbodctl/internal/transfer"
	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the last computed plan",
	Long: `Move every pending file according to the last plan computed by
jbodctl plan. By default the mover runs in-process; pass --script to
instead generate and execute the reviewable shell script described in
the plan-file format, via /bin/sh.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().Bool("dry-run", false, "log what would move without touching any files")
	applyCmd.Flags().String("verify", "size", "post-copy verification: none|size|hash")
	applyCmd.Flags().Int("concurrency", 4, "number of concurrent move workers")
	applyCmd.Flags().Bool("script", false, "apply via the generated shell script (os/exec) instead of in-process moves")
	applyCmd.Flags().String("nas-mode", "auto", "network-storage tuning: auto|true|false")
}

func runApply(cmd *cobra.Command, args []string) error {
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")
	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	dbPath := getConfigString("db", "jbodctl-state.db")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verifyFlag, _ := cmd.Flags().GetString("verify")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	useScript, _ := cmd.Flags().GetBool("script")
	nasModeFlag, _ := cmd.Flags().GetString("nas-mode")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pending, err := db.GetMovesByStatus(model.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to load pending moves: %w", err)
	}
	if len(pending) == 0 {
		util.InfoLog("No pending moves; run jbodctl plan first")
		return nil
	}

	plan := buildPlanFromMoves(pending)

	if useScript {
		script := transfer.GenerateScript(plan, transfer.ScriptOptions{})
		ctx := context.Background()
		if err := transfer.RunScript(ctx, script); err != nil {
			return fmt.Errorf("apply via script failed: %w", err)
		}
		for _, m := range pending {
			_ = db.UpdateMoveStatus(m.File.AbsolutePath, model.StatusCompleted, "")
		}
		util.SuccessLog("Apply via script complete: %d files", len(pending))
		return nil
	}

	verifyMode := transfer.VerifyMode(verifyFlag)
	switch verifyMode {
	case transfer.VerifyNone, transfer.VerifySize, transfer.VerifyHash:
	default:
		return fmt.Errorf("invalid --verify value %q (must be none|size|hash)", verifyFlag)
	}

	var nasMode *bool
	switch nasModeFlag {
	case "auto":
		nasMode = nil
	case "true":
		v := true
		nasMode = &v
	case "false":
		v := false
		nasMode = &v
	default:
		return fmt.Errorf("invalid --nas-mode value %q (must be auto|true|false)", nasModeFlag)
	}

	nasCfg, err := util.AutoTuneForPath(pending[0].File.AbsolutePath, pending[0].DestinationPath(), nasMode, concurrency)
	if err != nil {
		util.WarnLog("NAS auto-tuning skipped: %v", err)
		nasCfg = &util.NASConfig{Concurrency: concurrency, BufferSize: 128 * 1024, RetryAttempts: 0}
	}
	retryCfg := util.DefaultRetryConfig()
	if nasCfg.IsNASMode {
		util.InfoLog("%s", util.FormatNASSettings(nasCfg))
		retryCfg = util.NASRetryConfig()
	}
	retryCfg.MaxAttempts = nasCfg.RetryAttempts + 1

	executor := transfer.New(&transfer.Config{
		Store:       db,
		Concurrency: nasCfg.Concurrency,
		VerifyMode:  verifyMode,
		DryRun:      dryRun,
		BufferSize:  nasCfg.BufferSize,
		RetryConfig: retryCfg,
	})

	result, err := executor.Apply(context.Background(), plan)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	util.SuccessLog("Apply complete: %d processed, %d succeeded, %d failed, %s moved",
		result.Processed, result.Succeeded, result.Failed, size.FormatBytes(result.BytesWritten))
	if result.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

func buildPlanFromMoves(moves []model.FileMove) model.Plan {
	summary := model.Summary{
		MovesByVolume: make(map[string]int),
		BytesByVolume: make(map[string]int64),
	}
	for _, m := range moves {
		summary.TotalFiles++
		summary.TotalBytes += m.File.SizeBytes
		summary.MovesByVolume[m.TargetVolume]++
		summary.BytesByVolume[m.TargetVolume] += m.File.SizeBytes
	}
	return model.Plan{Moves: moves, Summary: summary}
}
