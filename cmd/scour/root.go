package scour

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/varalys/scour/internal/update"
)

var (
	flagJSON          bool
	flagText          bool
	flagThreads       int
	flagNoColor       bool
	flagNoCache       bool
	flagNoUpdateCheck bool
	flagSelfUpdate    bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the scour CLI.
var rootCmd = &cobra.Command{
	Use:           "scour",
	Short:         "Find duplicate files and reclaim disk space",
	Long:          "Scour walks your directories, groups byte-identical files by content hash, and reports where the wasted space is.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if flagSelfUpdate {
			if err := selfUpdate(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "updated")
			os.Exit(0)
		}
		if latest, newer, _ := update.Check(version, flagNoUpdateCheck); newer {
			fmt.Fprintf(os.Stderr, "a newer scour is available: v%s (run with --self-update)\n", latest)
		}
		return nil
	},
}

// Execute runs the scour CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagText, "text", false, "output in plain text columnar format")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable the persisted hash cache")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
	rootCmd.PersistentFlags().BoolVar(&flagSelfUpdate, "self-update", false, "update scour to the latest release")
}
