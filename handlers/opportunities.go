// ABOUTME: Opportunity and initiative MCP tool handlers
// ABOUTME: Implements list_opportunities, move_opportunity_stage, pipeline_summary and initiative linking
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state"
)

type PortfolioHandlers struct {
	store *state.PortfolioStore
}

func NewPortfolioHandlers(store *state.PortfolioStore) *PortfolioHandlers {
	return &PortfolioHandlers{store: store}
}

type OpportunityOutput struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	AccountID         string   `json:"account_id"`
	Stage             string   `json:"stage"`
	Status            string   `json:"status"`
	Value             float64  `json:"value"`
	Probability       float64  `json:"probability"`
	WeightedValue     float64  `json:"weighted_value"`
	ExpectedCloseDate string   `json:"expected_close_date,omitempty"`
	ContactIDs        []string `json:"contact_ids,omitempty"`
	InitiativeIDs     []string `json:"initiative_ids,omitempty"`
}

func opportunityToOutput(o models.Opportunity) OpportunityOutput {
	out := OpportunityOutput{
		ID:            o.ID,
		Name:          o.Name,
		AccountID:     o.AccountID,
		Stage:         string(o.Stage),
		Status:        string(o.Status),
		Value:         o.Value,
		Probability:   o.Probability,
		WeightedValue: o.WeightedValue(),
		ContactIDs:    o.ContactIDs,
		InitiativeIDs: o.InitiativeIDs,
	}
	if !o.ExpectedCloseDate.IsZero() {
		out.ExpectedCloseDate = o.ExpectedCloseDate.Format(time.RFC3339)
	}
	return out
}

type ListOpportunitiesInput struct {
	AccountID string `json:"account_id,omitempty" jsonschema:"Only opportunities for this account"`
	Stage     string `json:"stage,omitempty" jsonschema:"Only opportunities in this stage"`
}

type ListOpportunitiesOutput struct {
	Opportunities []OpportunityOutput `json:"opportunities"`
	Count         int                 `json:"count"`
}

func (h *PortfolioHandlers) ListOpportunities(ctx context.Context, _ *mcp.CallToolRequest, input ListOpportunitiesInput) (*mcp.CallToolResult, ListOpportunitiesOutput, error) {
	var stage models.OpportunityStage
	if input.Stage != "" {
		s, err := models.ParseOpportunityStage(input.Stage)
		if err != nil {
			return nil, ListOpportunitiesOutput{}, err
		}
		stage = s
	}

	if err := h.store.Refresh(ctx); err != nil {
		return nil, ListOpportunitiesOutput{}, fmt.Errorf("failed to load opportunities: %w", err)
	}

	out := ListOpportunitiesOutput{Opportunities: []OpportunityOutput{}}
	for _, o := range h.store.Snapshot().Opportunities {
		if input.AccountID != "" && o.AccountID != input.AccountID {
			continue
		}
		if stage != "" && o.Stage != stage {
			continue
		}
		out.Opportunities = append(out.Opportunities, opportunityToOutput(o))
	}
	out.Count = len(out.Opportunities)
	return nil, out, nil
}

type MoveOpportunityStageInput struct {
	ID    string `json:"id" jsonschema:"Opportunity ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage: Qualification, Discovery, Solution Development, Proposal, Negotiation, Closed Won, Closed Lost"`
}

func (h *PortfolioHandlers) MoveOpportunityStage(ctx context.Context, _ *mcp.CallToolRequest, input MoveOpportunityStageInput) (*mcp.CallToolResult, OpportunityOutput, error) {
	if input.ID == "" {
		return nil, OpportunityOutput{}, fmt.Errorf("id is required")
	}
	stage, err := models.ParseOpportunityStage(input.Stage)
	if err != nil {
		return nil, OpportunityOutput{}, err
	}

	updated, err := h.store.UpdateOpportunity(ctx, input.ID, models.OpportunityPatch{Stage: &stage})
	if err != nil {
		return nil, OpportunityOutput{}, fmt.Errorf("failed to move opportunity: %w", err)
	}
	return nil, opportunityToOutput(updated), nil
}

type PipelineSummaryInput struct {
	AccountID string `json:"account_id,omitempty" jsonschema:"Restrict the summary to one account"`
}

type StageOutput struct {
	Stage         string  `json:"stage"`
	Count         int     `json:"count"`
	Value         float64 `json:"value"`
	WeightedValue float64 `json:"weighted_value"`
}

type PipelineSummaryOutput struct {
	Count         int           `json:"count"`
	TotalValue    float64       `json:"total_value"`
	WeightedValue float64       `json:"weighted_value"`
	ByStage       []StageOutput `json:"by_stage"`
}

func (h *PortfolioHandlers) PipelineSummary(ctx context.Context, _ *mcp.CallToolRequest, input PipelineSummaryInput) (*mcp.CallToolResult, PipelineSummaryOutput, error) {
	if err := h.store.Refresh(ctx); err != nil {
		return nil, PipelineSummaryOutput{}, fmt.Errorf("failed to load opportunities: %w", err)
	}

	snap := h.store.Snapshot()
	opps := snap.Opportunities
	if input.AccountID != "" {
		opps = snap.OpportunitiesForAccount(input.AccountID)
	}

	summary := models.SummarizePipeline(opps)
	out := PipelineSummaryOutput{
		Count:         summary.Count,
		TotalValue:    summary.TotalValue,
		WeightedValue: summary.WeightedValue,
	}
	for _, st := range summary.ByStage {
		out.ByStage = append(out.ByStage, StageOutput{
			Stage:         string(st.Stage),
			Count:         st.Count,
			Value:         st.Value,
			WeightedValue: st.WeightedValue,
		})
	}
	return nil, out, nil
}

type InitiativeLinkInput struct {
	InitiativeID  string `json:"initiative_id" jsonschema:"Initiative ID (required)"`
	ContactID     string `json:"contact_id,omitempty" jsonschema:"Contact to link (set exactly one of contact_id or opportunity_id)"`
	OpportunityID string `json:"opportunity_id,omitempty" jsonschema:"Opportunity to link (set exactly one of contact_id or opportunity_id)"`
}

type InitiativeLinkOutput struct {
	InitiativeID   string   `json:"initiative_id"`
	ContactIDs     []string `json:"contact_ids"`
	OpportunityIDs []string `json:"opportunity_ids"`
}

func (in InitiativeLinkInput) validate() error {
	if in.InitiativeID == "" {
		return fmt.Errorf("initiative_id is required")
	}
	if (in.ContactID == "") == (in.OpportunityID == "") {
		return fmt.Errorf("exactly one of contact_id or opportunity_id is required")
	}
	return nil
}

func (h *PortfolioHandlers) linkOutput(initiativeID string) InitiativeLinkOutput {
	out := InitiativeLinkOutput{InitiativeID: initiativeID, ContactIDs: []string{}, OpportunityIDs: []string{}}
	if in, ok := h.store.Snapshot().Initiative(initiativeID); ok {
		out.ContactIDs = append(out.ContactIDs, in.ContactIDs...)
		out.OpportunityIDs = append(out.OpportunityIDs, in.OpportunityIDs...)
	}
	return out
}

func (h *PortfolioHandlers) LinkInitiative(ctx context.Context, _ *mcp.CallToolRequest, input InitiativeLinkInput) (*mcp.CallToolResult, InitiativeLinkOutput, error) {
	if err := input.validate(); err != nil {
		return nil, InitiativeLinkOutput{}, err
	}

	var err error
	if input.ContactID != "" {
		err = h.store.AddContactToInitiative(ctx, input.InitiativeID, input.ContactID)
	} else {
		err = h.store.AddOpportunityToInitiative(ctx, input.InitiativeID, input.OpportunityID)
	}
	if err != nil {
		return nil, InitiativeLinkOutput{}, fmt.Errorf("failed to link initiative: %w", err)
	}
	return nil, h.linkOutput(input.InitiativeID), nil
}

func (h *PortfolioHandlers) UnlinkInitiative(ctx context.Context, _ *mcp.CallToolRequest, input InitiativeLinkInput) (*mcp.CallToolResult, InitiativeLinkOutput, error) {
	if err := input.validate(); err != nil {
		return nil, InitiativeLinkOutput{}, err
	}

	var err error
	if input.ContactID != "" {
		err = h.store.RemoveContactFromInitiative(ctx, input.InitiativeID, input.ContactID)
	} else {
		err = h.store.RemoveOpportunityFromInitiative(ctx, input.InitiativeID, input.OpportunityID)
	}
	if err != nil {
		return nil, InitiativeLinkOutput{}, fmt.Errorf("failed to unlink initiative: %w", err)
	}
	return nil, h.linkOutput(input.InitiativeID), nil
}
