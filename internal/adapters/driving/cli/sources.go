package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefcast/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured document sources",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rows := []struct {
		name    string
		enabled bool
		detail  string
	}{
		{"gmail", cfg.Sources.Gmail.Enabled,
			fmt.Sprintf("attachments: %v", cfg.Sources.Gmail.SupportedAttachments)},
		{"calendar", cfg.Sources.Calendar.Enabled,
			fmt.Sprintf("calendar %q, %d day(s) ahead",
				cfg.Sources.Calendar.CalendarID, cfg.Sources.Calendar.LookAheadDays)},
		{"hackernews", cfg.Sources.HackerNews.Enabled,
			fmt.Sprintf("min score %d, max %d stories",
				cfg.Sources.HackerNews.MinScore, cfg.Sources.HackerNews.MaxStories)},
	}

	for _, row := range rows {
		status := "disabled"
		if row.enabled {
			status = "enabled"
		}
		cmd.Printf("%-12s %-9s %s\n", row.name, status, row.detail)
	}

	if len(cfg.EnabledSources()) == 0 {
		cmd.Println("\nNo sources enabled. Edit the [sources] sections of your config file.")
	}
	return nil
}
