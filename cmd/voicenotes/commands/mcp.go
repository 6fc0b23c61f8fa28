// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents like Claude ask and smartify notes via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs voicenotes as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to ask questions of your notes, smartify them,
and keep the search index current via stdio.

Tools act as the user from --user or VOICENOTES_USER_ID.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  voicenotes mcp --user me

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "voicenotes": {
  #       "command": "voicenotes",
  #       "args": ["mcp", "--user", "me"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	userID := resolveUser(a.Config)

	server := mcpserver.NewMCPServer(
		"voicenotes",
		versionInfo.Version,
		mcpserver.WithToolCapabilities(false),
	)

	mcp.RegisterTools(server, mcp.Services{
		Ask:      a.Ask,
		Smartify: a.Smartify,
		Indexer:  a.Indexer,
		Notes:    a.Notes,
	}, userID)

	if !quiet {
		log.Printf("voicenotes MCP server starting on stdio as user %s...", userID)
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		closeApp(a)
		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		closeApp(a)
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
