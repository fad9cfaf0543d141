package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display reasoning metrics",
	Long: `Display aggregated metrics derived from the event log.

Metrics include thought, revision, and branch counts, per-session thought
totals, and assumption declaration, invalidation, and verification counts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (event logging may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		// Table format.
		fmt.Printf("Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Printf("  %-28s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Printf("  %-28s %d\n", "Thoughts accepted:", metrics.ThoughtsAccepted)
		fmt.Printf("  %-28s %d\n", "Revisions:", metrics.Revisions)
		fmt.Printf("  %-28s %d\n", "Branch thoughts:", metrics.BranchThoughts)
		fmt.Printf("  %-28s %d\n", "Assumptions declared:", metrics.AssumptionsDeclared)
		fmt.Printf("  %-28s %d\n", "Assumptions invalidated:", metrics.AssumptionsInvalidated)
		fmt.Printf("  %-28s %d\n", "Assumptions verified:", metrics.AssumptionsVerified)
		fmt.Printf("  %-28s %d\n", "Sessions:", metrics.SessionCount)

		if len(metrics.ThoughtsBySession) > 0 {
			fmt.Println("\n  Thoughts by session:")
			for sessionID, count := range metrics.ThoughtsBySession {
				fmt.Printf("    %-26s %d\n", sessionID+":", count)
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Printf("\n  %-28s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Printf("  %-28s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
