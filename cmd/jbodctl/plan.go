package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jbodctl/jbodctl/internal/config"
	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/planner"
	"github.com/jbodctl/jbodctl/internal/report"
	"github.com/jbodctl/jbodctl/internal/size"
	"github.com/jbodctl/jbodctl/internal/store"
	"github.com/jbodctl/jbodctl/internal/transfer"
	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a consolidation plan from the scanned inventory",
	Long: `Load the scanned files and probed volumes from the state database,
run the filter/group/pack pipeline, and persist the resulting plan and
its audit trail. Use --plan-file to also write the reviewable transfer
script described for the apply command.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().String("options-file", "", "path to a .hujson plan-options file")
	planCmd.Flags().String("plan-file", "", "write the persisted transfer script to this path")
}

func runPlan(cmd *cobra.Command, args []string) error {
	verbose := viper.GetBool("verbose")
	quiet := viper.GetBool("quiet")
	util.SetVerbose(verbose)
	util.SetQuiet(quiet)

	dbPath := getConfigString("db", "jbodctl-state.db")
	optionsFile, _ := cmd.Flags().GetString("options-file")
	planFile, _ := cmd.Flags().GetString("plan-file")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	opts := planner.DefaultOptions()
	if optionsFile != "" {
		fileOpts, err := config.Load(optionsFile)
		if err != nil {
			return fmt.Errorf("failed to load plan options: %w", err)
		}
		opts, err = fileOpts.ToPlannerOptions()
		if err != nil {
			return fmt.Errorf("invalid plan options: %w", err)
		}
	}

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
	opts.Logger = cliLogger{}

	util.InfoLog("Loading world view from %s", dbPath)
	world, err := db.LoadWorldView()
	if err != nil {
		return fmt.Errorf("failed to load world view: %w", err)
	}
	util.InfoLog("  %d volumes, %d files", len(world.Volumes), len(world.Files))

	start := time.Now()
	result, err := planner.Plan(world, opts)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}
	duration := time.Since(start)

	if err := db.ReplaceMoves(result.Plan.Moves); err != nil {
		return fmt.Errorf("failed to persist plan: %w", err)
	}
	if err := db.ReplaceSnapshots(result.Snapshots); err != nil {
		return fmt.Errorf("failed to persist audit trail: %w", err)
	}

	for _, m := range result.Plan.Moves {
		if m.Status != model.StatusSkipped {
			continue
		}
		if logger != nil {
			_ = logger.LogPlacement(report.EventFileSkipped, m.File.AbsolutePath, m.File.SourceVolume, "", "", m.Reason)
		}
	}

	util.SuccessLog("Plan complete in %v", duration.Round(time.Millisecond))
	util.InfoLog("  Pending moves: %d files, %s", result.Plan.Summary.TotalFiles, size.FormatBytes(result.Plan.Summary.TotalBytes))
	for vol, n := range result.Plan.Summary.MovesByVolume {
		util.InfoLog("    -> %s: %d files, %s", vol, n, size.FormatBytes(result.Plan.Summary.BytesByVolume[vol]))
	}

	if planFile != "" {
		script := transfer.GenerateScript(result.Plan, transfer.ScriptOptions{GeneratedAt: time.Now()})
		if err := os.WriteFile(planFile, []byte(script), 0755); err != nil {
			return fmt.Errorf("%w: %v", util.ErrUnwritablePlan, err)
		}
		util.InfoLog("Plan script written to %s", planFile)
	}

	util.InfoLog("")
	util.InfoLog("Next step: jbodctl apply --db %s", dbPath)
	return nil
}

// cliLogger adapts util's package-level logging functions to the
// planner.Logger interface the planner core expects injected.
type cliLogger struct{}

func (cliLogger) Debugf(format string, args ...any) { util.DebugLog(format, args...) }
func (cliLogger) Infof(format string, args ...any)  { util.InfoLog(format, args...) }
