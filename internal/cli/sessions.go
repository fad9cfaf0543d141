package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	sessionsListJSON bool
	sessionShowJSON  bool
	sessionShowOut   string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect thinking sessions",
	Long:  "Commands for listing and exporting the thinking sessions held by the engine.",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all thinking sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("thinking service not initialized")
		}

		summaries := Svc.ListSessions()

		if sessionsListJSON {
			data, err := json.MarshalIndent(summaries, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting sessions as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(summaries) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-38s %8s %8s %12s %6s\n", "SESSION", "THOUGHTS", "BRANCHES", "ASSUMPTIONS", "RISKY")
		for _, s := range summaries {
			fmt.Printf("%-38s %8d %8d %12d %6d\n",
				s.SessionID, s.ThoughtCount, s.BranchCount, s.AssumptionCount, s.RiskyAssumptions)
		}

		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Export the full state of one session",
	Long: `Export the full state of one session: its thoughts, branches, and
assumptions. Output is YAML by default; use --json for JSON, and
--output to write to a file instead of stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("thinking service not initialized")
		}

		snapshot, err := Svc.SessionSnapshot(args[0])
		if err != nil {
			return fmt.Errorf("loading session %s: %w", args[0], err)
		}

		var data []byte
		if sessionShowJSON {
			data, err = json.MarshalIndent(snapshot, "", "  ")
		} else {
			data, err = yaml.Marshal(snapshot)
		}
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", args[0], err)
		}

		if sessionShowOut != "" {
			if err := os.WriteFile(sessionShowOut, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", sessionShowOut, err)
			}
			fmt.Printf("Session %s exported to %s\n", args[0], sessionShowOut)
			return nil
		}

		fmt.Print(string(data))
		if sessionShowJSON {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().BoolVar(&sessionsListJSON, "json", false, "Output sessions as JSON")
	sessionsShowCmd.Flags().BoolVar(&sessionShowJSON, "json", false, "Output the session as JSON instead of YAML")
	sessionsShowCmd.Flags().StringVarP(&sessionShowOut, "output", "o", "", "Write the export to a file instead of stdout")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}
