// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents hold conversations with Clara over stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/clara/internal/mcp"
	"github.com/harper/clara/internal/session"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs Clara as an MCP (Model Context Protocol) server, enabling
LLM agents to open sessions and chat with Clara via stdio.

Sessions are held in memory for the life of the server.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  clara mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "clara": {
  #       "command": "clara",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcpserver.NewMCPServer("Clara Health Assistant", versionInfo.Version)
	manager := session.NewManager(a.sessionOptions())
	mcp.RegisterTools(server, manager, a.logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received", "sessions", manager.Len())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
