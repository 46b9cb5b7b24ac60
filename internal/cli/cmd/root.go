// Package cmd provides Cobra CLI commands for omnibar.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muxpanel/omnibar/internal/cli"
	"github.com/muxpanel/omnibar/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "omnibar",
		Short: "Address-bar intelligence for the muxpanel browser",
		Long: `Omnibar - the address-bar intelligence engine behind muxpanel's browser panes.

Every keystroke in the browser's address bar flows through this engine: it
records visits with frecency signals, merges history, open-surface, and
remote autocomplete candidates into a ranked list, and computes inline
ghost-text completion.

Use 'omnibar tui' for an interactive demo of the full pipeline, or
'omnibar suggest <query>' for a one-shot ranked suggestion list.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("omnibar %s (%s, %s, %s)\n",
			buildInfo.Version, buildInfo.Commit, buildInfo.BuildDate, buildInfo.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
