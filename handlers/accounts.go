// ABOUTME: Account MCP tool handlers
// ABOUTME: Implements list_accounts, add_account, update_account, delete_account and toggle_readiness
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state"
)

type AccountHandlers struct {
	store *state.AccountStore
}

func NewAccountHandlers(store *state.AccountStore) *AccountHandlers {
	return &AccountHandlers{store: store}
}

type AccountOutput struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Ticker                  string  `json:"ticker,omitempty"`
	Industry                string  `json:"industry"`
	ARR                     float64 `json:"arr"`
	Status                  string  `json:"status"`
	Priority                string  `json:"priority"`
	TransformationReadiness bool    `json:"transformation_readiness"`
	Notes                   string  `json:"notes,omitempty"`
	UpdatedAt               string  `json:"updated_at"`
}

func accountToOutput(a models.Account) AccountOutput {
	return AccountOutput{
		ID:                      a.ID,
		Name:                    a.Name,
		Ticker:                  a.Ticker,
		Industry:                a.Industry,
		ARR:                     a.ARR,
		Status:                  string(a.Status),
		Priority:                string(a.Priority),
		TransformationReadiness: a.TransformationReadiness,
		Notes:                   a.Notes,
		UpdatedAt:               a.UpdatedAt.Format(time.RFC3339),
	}
}

type ListAccountsInput struct {
	Status   string `json:"status,omitempty" jsonschema:"Filter by status: Active, Prospect, At Risk"`
	Priority string `json:"priority,omitempty" jsonschema:"Filter by priority: High, Medium, Low"`
}

type ListAccountsOutput struct {
	Accounts []AccountOutput `json:"accounts"`
	Count    int             `json:"count"`
}

func (h *AccountHandlers) ListAccounts(ctx context.Context, _ *mcp.CallToolRequest, input ListAccountsInput) (*mcp.CallToolResult, ListAccountsOutput, error) {
	var status models.AccountStatus
	if input.Status != "" {
		s, err := models.ParseAccountStatus(input.Status)
		if err != nil {
			return nil, ListAccountsOutput{}, err
		}
		status = s
	}
	var priority models.AccountPriority
	if input.Priority != "" {
		p, err := models.ParseAccountPriority(input.Priority)
		if err != nil {
			return nil, ListAccountsOutput{}, err
		}
		priority = p
	}

	if err := h.store.Refresh(ctx); err != nil {
		return nil, ListAccountsOutput{}, fmt.Errorf("failed to load accounts: %w", err)
	}

	out := ListAccountsOutput{Accounts: []AccountOutput{}}
	for _, a := range h.store.Snapshot().Accounts {
		if status != "" && a.Status != status {
			continue
		}
		if priority != "" && a.Priority != priority {
			continue
		}
		out.Accounts = append(out.Accounts, accountToOutput(a))
	}
	out.Count = len(out.Accounts)
	return nil, out, nil
}

type AddAccountInput struct {
	Name                    string  `json:"name" jsonschema:"Account name (required)"`
	Ticker                  string  `json:"ticker,omitempty" jsonschema:"Stock ticker"`
	Industry                string  `json:"industry" jsonschema:"Industry (required)"`
	ARR                     float64 `json:"arr,omitempty" jsonschema:"Annual recurring revenue in dollars"`
	Status                  string  `json:"status,omitempty" jsonschema:"Active, Prospect or At Risk (default Prospect)"`
	Priority                string  `json:"priority,omitempty" jsonschema:"High, Medium or Low (default Medium)"`
	TransformationReadiness bool    `json:"transformation_readiness,omitempty" jsonschema:"Whether the account is ready for transformation"`
	Notes                   string  `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func (h *AccountHandlers) AddAccount(ctx context.Context, _ *mcp.CallToolRequest, input AddAccountInput) (*mcp.CallToolResult, AccountOutput, error) {
	acct := models.Account{
		Name:                    input.Name,
		Ticker:                  input.Ticker,
		Industry:                input.Industry,
		ARR:                     input.ARR,
		Status:                  models.AccountProspect,
		Priority:                models.PriorityMedium,
		TransformationReadiness: input.TransformationReadiness,
		Notes:                   input.Notes,
	}
	if input.Status != "" {
		s, err := models.ParseAccountStatus(input.Status)
		if err != nil {
			return nil, AccountOutput{}, err
		}
		acct.Status = s
	}
	if input.Priority != "" {
		p, err := models.ParseAccountPriority(input.Priority)
		if err != nil {
			return nil, AccountOutput{}, err
		}
		acct.Priority = p
	}
	if err := models.Validate(acct); err != nil {
		return nil, AccountOutput{}, err
	}

	id, err := h.store.Add(ctx, acct)
	if err != nil {
		return nil, AccountOutput{}, fmt.Errorf("failed to add account: %w", err)
	}
	if created, ok := h.store.Snapshot().Find(id); ok {
		return nil, accountToOutput(created), nil
	}
	acct.ID = id
	return nil, accountToOutput(acct), nil
}

type UpdateAccountInput struct {
	ID                      string   `json:"id" jsonschema:"Account ID (required)"`
	Name                    *string  `json:"name,omitempty" jsonschema:"New name"`
	Ticker                  *string  `json:"ticker,omitempty" jsonschema:"New ticker"`
	Industry                *string  `json:"industry,omitempty" jsonschema:"New industry"`
	ARR                     *float64 `json:"arr,omitempty" jsonschema:"New annual recurring revenue"`
	Status                  *string  `json:"status,omitempty" jsonschema:"New status"`
	Priority                *string  `json:"priority,omitempty" jsonschema:"New priority"`
	TransformationReadiness *bool    `json:"transformation_readiness,omitempty" jsonschema:"New readiness flag"`
	Notes                   *string  `json:"notes,omitempty" jsonschema:"New notes"`
}

func (h *AccountHandlers) UpdateAccount(ctx context.Context, _ *mcp.CallToolRequest, input UpdateAccountInput) (*mcp.CallToolResult, AccountOutput, error) {
	if input.ID == "" {
		return nil, AccountOutput{}, fmt.Errorf("id is required")
	}

	patch := models.AccountPatch{
		Name:                    input.Name,
		Ticker:                  input.Ticker,
		Industry:                input.Industry,
		ARR:                     input.ARR,
		TransformationReadiness: input.TransformationReadiness,
		Notes:                   input.Notes,
	}
	if input.Status != nil {
		s, err := models.ParseAccountStatus(*input.Status)
		if err != nil {
			return nil, AccountOutput{}, err
		}
		patch.Status = &s
	}
	if input.Priority != nil {
		p, err := models.ParseAccountPriority(*input.Priority)
		if err != nil {
			return nil, AccountOutput{}, err
		}
		patch.Priority = &p
	}

	updated, err := h.store.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, AccountOutput{}, fmt.Errorf("failed to update account: %w", err)
	}
	return nil, accountToOutput(updated), nil
}

type AccountIDInput struct {
	ID string `json:"id" jsonschema:"Account ID (required)"`
}

type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *AccountHandlers) DeleteAccount(ctx context.Context, _ *mcp.CallToolRequest, input AccountIDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == "" {
		return nil, DeleteOutput{}, fmt.Errorf("id is required")
	}
	if err := h.store.Remove(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete account: %w", err)
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

func (h *AccountHandlers) ToggleReadiness(ctx context.Context, _ *mcp.CallToolRequest, input AccountIDInput) (*mcp.CallToolResult, AccountOutput, error) {
	if input.ID == "" {
		return nil, AccountOutput{}, fmt.Errorf("id is required")
	}
	// Toggling reads the cached record, so load it first when it is missing.
	if _, ok := h.store.Snapshot().Find(input.ID); !ok {
		if err := h.store.Refresh(ctx); err != nil {
			return nil, AccountOutput{}, fmt.Errorf("failed to load accounts: %w", err)
		}
	}

	updated, err := h.store.ToggleReadiness(ctx, input.ID)
	if err != nil {
		return nil, AccountOutput{}, fmt.Errorf("failed to toggle readiness: %w", err)
	}
	return nil, accountToOutput(updated), nil
}
