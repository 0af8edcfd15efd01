// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the render_territory_map tool
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/keyaccounts/graph"
	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state"
	"github.com/harperreed/keyaccounts/viz"
)

type VizHandlers struct {
	accounts *state.AccountStore
}

func NewVizHandlers(accounts *state.AccountStore) *VizHandlers {
	return &VizHandlers{accounts: accounts}
}

type RenderTerritoryMapInput struct {
	Status string `json:"status,omitempty" jsonschema:"Only include accounts with this status"`
}

type RenderTerritoryMapOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
}

func (h *VizHandlers) RenderTerritoryMap(ctx context.Context, _ *mcp.CallToolRequest, input RenderTerritoryMapInput) (*mcp.CallToolResult, RenderTerritoryMapOutput, error) {
	var status models.AccountStatus
	if input.Status != "" {
		s, err := models.ParseAccountStatus(input.Status)
		if err != nil {
			return nil, RenderTerritoryMapOutput{}, err
		}
		status = s
	}

	if err := h.accounts.Refresh(ctx); err != nil {
		return nil, RenderTerritoryMapOutput{}, fmt.Errorf("failed to load accounts: %w", err)
	}

	var accounts []models.Account
	for _, a := range h.accounts.Snapshot().Accounts {
		if status == "" || a.Status == status {
			accounts = append(accounts, a)
		}
	}

	editor, err := graph.TerritoryFromAccounts(accounts)
	if err != nil {
		return nil, RenderTerritoryMapOutput{}, fmt.Errorf("failed to build territory map: %w", err)
	}
	snap := editor.Snapshot()

	dot, err := viz.RenderMap(ctx, snap)
	if err != nil {
		return nil, RenderTerritoryMapOutput{}, fmt.Errorf("failed to render territory map: %w", err)
	}
	return nil, RenderTerritoryMapOutput{DOTSource: dot, NodeCount: len(snap.Nodes)}, nil
}
