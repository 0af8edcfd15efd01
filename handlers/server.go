// ABOUTME: MCP server assembly
// ABOUTME: Registers every tool against the shared stores
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/keyaccounts/state"
)

// NewServer builds an MCP server exposing the account and portfolio stores.
func NewServer(version string, accounts *state.AccountStore, portfolio *state.PortfolioStore) *mcp.Server {
	accountHandlers := NewAccountHandlers(accounts)
	portfolioHandlers := NewPortfolioHandlers(portfolio)
	vizHandlers := NewVizHandlers(accounts)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "keyaccounts",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_accounts",
		Description: "List key accounts, optionally filtered by status or priority",
	}, accountHandlers.ListAccounts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_account",
		Description: "Add a new key account",
	}, accountHandlers.AddAccount)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_account",
		Description: "Update fields of an existing account; omitted fields are left unchanged",
	}, accountHandlers.UpdateAccount)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_account",
		Description: "Delete an account",
	}, accountHandlers.DeleteAccount)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_readiness",
		Description: "Flip an account's transformation readiness flag",
	}, accountHandlers.ToggleReadiness)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_opportunities",
		Description: "List opportunities, optionally filtered by account or stage",
	}, portfolioHandlers.ListOpportunities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_opportunity_stage",
		Description: "Move an opportunity to another pipeline stage",
	}, portfolioHandlers.MoveOpportunityStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_summary",
		Description: "Summarize pipeline value and probability-weighted value by stage",
	}, portfolioHandlers.PipelineSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "link_initiative",
		Description: "Link a contact or an opportunity to an initiative",
	}, portfolioHandlers.LinkInitiative)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "unlink_initiative",
		Description: "Remove a contact or an opportunity from an initiative",
	}, portfolioHandlers.UnlinkInitiative)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_territory_map",
		Description: "Render the account territory map as GraphViz DOT",
	}, vizHandlers.RenderTerritoryMap)

	return server
}
