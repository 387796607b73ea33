package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Generate man pages for jbodctl",
	Long: `Generate UNIX manual pages for jbodctl and its subcommands.
By default, outputs to ./man1. Use --output to specify another directory.`,
	RunE: runDoc,
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.Flags().StringP("output", "o", "./man1", "output directory for generated man pages")
}

func runDoc(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	header := &doc.GenManHeader{
		Title:   "JBODCTL",
		Section: "1",
		Source:  "jbodctl",
		Manual:  "jbodctl manual",
	}
	rootCmd.DisableAutoGenTag = true
	if err := doc.GenManTree(rootCmd, header, outputDir); err != nil {
		return fmt.Errorf("failed to generate man pages: %w", err)
	}

	fmt.Printf("Man pages written to %s\n", outputDir)
	return nil
}
