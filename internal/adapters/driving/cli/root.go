// Package cli wires the briefcast commands: run a batch, inspect
// sources, print the version.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefcast/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "briefcast",
	Short: "Turn your documents into a podcast",
	Long: `briefcast fetches documents from your configured sources (Gmail
attachments, calendar events, HackerNews stories), turns each one into
a multi-voice dialogue script, and synthesizes it into an audio file
with a matching transcript.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "briefcast.toml",
		"path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging")
}

// Execute runs the root command.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}
