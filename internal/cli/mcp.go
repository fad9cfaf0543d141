package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	utmcp "github.com/ultrathink-mcp/ultrathink/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the ultrathink MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ultrathink MCP server on stdio",
	Long: `Start the ultrathink MCP server on stdio transport.

The server exposes the reasoning engine as MCP tools that AI assistants
can call: ultrathink, verify_assumption, get_session, list_sessions,
get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("thinking service not initialized")
		}

		serverName := "ultrathink"
		if AppConfig != nil {
			serverName = AppConfig.ServerName
		}
		srv := utmcp.NewServer(Svc, MetricsCalc, serverName, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
