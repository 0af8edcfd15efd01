// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio over the shared stores
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/keyaccounts/handlers"
)

// MCPCommand starts the MCP server on stdio.
func MCPCommand(a *App, version string) error {
	log.Info("Starting keyaccounts MCP server...")

	ctx := context.Background()
	unbind := a.SignIn(ctx)
	defer unbind()

	server := handlers.NewServer(version, a.Accounts, a.Portfolio)
	return server.Run(ctx, &mcp.StdioTransport{})
}
