package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jbodctl/jbodctl/internal/config"
	"github.com/jbodctl/jbodctl/internal/planner"
	"github.com/jbodctl/jbodctl/internal/store"
	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/jbodctl/jbodctl/internal/webui"
	"github.com/spf13/cobra"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve a browser UI that streams the plan's audit trail",
	Long: `Load the scanned inventory from the state database and serve a
websocket-driven browser UI that runs the planner and replays its audit
trail live. Prometheus gauges are scraped at /metrics alongside the
websocket push.`,
	RunE: runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().String("addr", ":8080", "address to listen on")
	webCmd.Flags().String("options-file", "", "path to a .hujson plan-options file")
	webCmd.Flags().Bool("watch", false, "re-plan on every save of --options-file")
}

func runWeb(cmd *cobra.Command, args []string) error {
	dbPath := getConfigString("db", "jbodctl-state.db")
	addr, _ := cmd.Flags().GetString("addr")
	optionsFile, _ := cmd.Flags().GetString("options-file")
	watch, _ := cmd.Flags().GetBool("watch")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	world, err := db.LoadWorldView()
	if err != nil {
		return fmt.Errorf("failed to load world view: %w", err)
	}

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := webui.New(webui.Config{World: world, Options: opts})

	if watch {
		if optionsFile == "" {
			return fmt.Errorf("--watch requires --options-file")
		}
		updates, err := config.Watch(ctx, optionsFile, 0)
		if err != nil {
			return fmt.Errorf("failed to watch options file: %w", err)
		}
		go func() {
			for newOpts := range updates {
				plannerOpts, err := newOpts.ToPlannerOptions()
				if err != nil {
					util.WarnLog("reloaded plan options invalid, keeping previous: %v", err)
					continue
				}
				util.InfoLog("reloaded plan options from %s", optionsFile)
				server.UpdateInput(world, plannerOpts)
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		util.InfoLog("shutting down web UI")
		cancel()
	}()

	util.InfoLog("Web UI ready at http://localhost%s", addr)
	if err := server.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("web UI failed: %w", err)
	}
	return nil
}
