// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"os/signal"
	"syscall"

	"github.com/harperreed/growth/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout; logs go to stderr. New
measurements are recorded under the configured creator (or --creator).

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "growth": {
        "command": "growth",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  evaluate_measurement  Classify height and weight without saving
  add_measurement       Record a measurement
  update_measurement    Correct age, height or weight
  delete_measurement    Delete a measurement by ID
  get_measurement       Get one measurement
  list_measurements     List measurements (category filter, paging)
  list_children         Children with latest status (name filter, paging)
  get_child             One child's status and history
  update_child          Rename a child or change its sex
  delete_child          Delete a child and its measurements

AVAILABLE RESOURCES:

  growth://children                 Every child with latest status
  growth://recent                   Last 10 measurements
  growth://reference/{indicator}    WHO thresholds (length, weight, bmi)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(app, creatorID(), logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
