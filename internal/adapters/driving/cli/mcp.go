package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/mcp"
	"github.com/custodia-labs/flightdeck/internal/core/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can audit the
briefing pipeline.

Tools:
  audit_snapshot  recent refresh events, counts and findings
  latest_brief    the last-known-good brief
  run_briefing    run the pipeline now (dry run unless deliver is set)

By default the server speaks JSON-RPC over stdio. Use --port to serve over
HTTP instead.

Examples:
  flightdeck mcp serve
  flightdeck mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if err := requireSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening refresh log: %w", err)
	}
	defer store.Close()

	pipeline, err := newPipeline(cmd.Context(), settings, store.RunLog(), "")
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Audit:    services.NewAuditService(store.RunLog(), settings.AuditRecentEvents),
		Briefing: pipeline,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
