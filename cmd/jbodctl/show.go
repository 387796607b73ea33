package main

import (
	"fmt"
	"sort"

	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/size"
	"github.com/jbodctl/jbodctl/internal/store"
	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the last computed plan",
	Long: `Display the pending, completed, skipped, and failed move counts of
the last plan computed by jbodctl plan, then list its pending and
skipped moves sorted by source path.

Use --skipped-only to review why files could not be placed, or
--volumes to show each volume's used ratio instead of individual moves.`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("skipped-only", false, "show only moves the planner could not place")
	showCmd.Flags().Bool("volumes", false, "show volume capacity instead of individual moves")
}

func runShow(cmd *cobra.Command, args []string) error {
	dbPath := getConfigString("db", "jbodctl-state.db")
	skippedOnly, _ := cmd.Flags().GetBool("skipped-only")
	showVolumes, _ := cmd.Flags().GetBool("volumes")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if showVolumes {
		return showVolumeCapacity(db)
	}

	if skippedOnly {
		return showMovesByStatus(db, model.StatusSkipped, "=== Skipped Moves ===")
	}

	pendingN, _ := db.CountMovesByStatus(model.StatusPending)
	completedN, _ := db.CountMovesByStatus(model.StatusCompleted)
	skippedN, _ := db.CountMovesByStatus(model.StatusSkipped)
	failedN, _ := db.CountMovesByStatus(model.StatusFailed)

	if pendingN+completedN+skippedN+failedN == 0 {
		util.WarnLog("No plan found. Run 'jbodctl plan' first.")
		return nil
	}

	util.InfoLog("=== Plan Summary ===")
	util.InfoLog("  Pending:   %d", pendingN)
	util.InfoLog("  Completed: %d", completedN)
	util.InfoLog("  Skipped:   %d", skippedN)
	util.InfoLog("  Failed:    %d", failedN)
	util.InfoLog("")

	if err := showMovesByStatus(db, model.StatusPending, "=== Pending Moves ==="); err != nil {
		return err
	}
	if skippedN > 0 {
		util.InfoLog("")
		if err := showMovesByStatus(db, model.StatusSkipped, "=== Skipped Moves ==="); err != nil {
			return err
		}
	}
	return nil
}

func showMovesByStatus(db *store.Store, status model.MoveStatus, heading string) error {
	moves, err := db.GetMovesByStatus(status)
	if err != nil {
		return fmt.Errorf("failed to load moves: %w", err)
	}
	if len(moves) == 0 {
		return nil
	}

	util.InfoLog(heading)
	sort.Slice(moves, func(i, j int) bool { return moves[i].File.AbsolutePath < moves[j].File.AbsolutePath })
	for _, m := range moves {
		if m.Status == model.StatusSkipped || m.Status == model.StatusFailed {
			util.SkippedLog(m.File.AbsolutePath, m.Reason)
			continue
		}
		util.MoveLog(m.File.AbsolutePath, m.DestinationPath(), size.FormatBytes(m.File.SizeBytes))
	}
	return nil
}

func showVolumeCapacity(db *store.Store) error {
	volumes, err := db.GetAllVolumes()
	if err != nil {
		return fmt.Errorf("failed to load volumes: %w", err)
	}
	if len(volumes) == 0 {
		util.WarnLog("No volumes found. Run 'jbodctl scan' first.")
		return nil
	}

	util.InfoLog("=== Volumes ===")
	for _, v := range volumes {
		util.VolumeLog(v.Path, size.FormatBytes(v.UsedBytes()), size.FormatBytes(v.TotalBytes), v.UsedRatio())
	}
	return nil
}
