package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "ultrathink",
	Short: "Ultrathink - structured reasoning server with assumption tracking",
	Long: `Ultrathink is an MCP server for rigorous, step-by-step reasoning.

It records thoughts into sessions, supports revisions and branches, and
tracks explicit assumptions: declaring them, depending on them (including
across sessions), invalidating them, and verifying them against reality.

Besides the MCP server it provides CLI commands for inspecting sessions,
viewing metrics derived from the event log, and a live dashboard.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ultrathink %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
