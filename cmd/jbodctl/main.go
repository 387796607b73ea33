// Command jbodctl scans sibling JBOD storage volumes, plans a
// consolidation of small/scattered files onto fewer volumes, and
// applies that plan under operator control.
package main

import (
	"fmt"
	"os"

	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time via -ldflags.
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "jbodctl",
		Short: "Consolidate files across sibling JBOD storage volumes",
		Long: `jbodctl scans a set of independently-mounted storage volumes,
groups files by folder, and packs them onto fewer volumes so the
emptied ones can be reclaimed. Planning is deterministic and pure;
applying a plan is a separate, explicit step.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./jbodctl.yaml, ./jbodctl.toml)")
	rootCmd.PersistentFlags().String("db", "jbodctl-state.db", "state database file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("jbodctl")
	}

	viper.SetEnvPrefix("JBODCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
