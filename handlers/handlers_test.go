// ABOUTME: Tests for the MCP tool handlers
// ABOUTME: Drives the handlers against real stores over in-memory remotes
package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state"
	"github.com/harperreed/keyaccounts/state/statetest"
)

func setupAccounts(t *testing.T) *AccountHandlers {
	t.Helper()
	return NewAccountHandlers(state.NewAccountStore(statetest.Accounts(t)))
}

func setupPortfolio(t *testing.T) (*PortfolioHandlers, *statetest.Portfolio) {
	t.Helper()
	p := &statetest.Portfolio{
		Opportunities: []models.Opportunity{
			{ID: "o1", Name: "Platform", AccountID: "a1", Stage: models.StageDiscovery, Value: 500000, Probability: 60},
			{ID: "o2", Name: "Renewal", AccountID: "a1", Stage: models.StageProposal, Value: 250000, Probability: 75},
			{ID: "o3", Name: "Expansion", AccountID: "a2", Stage: models.StageClosedWon, Value: 750000, Probability: 90},
		},
		Contacts:    []models.ContactPerson{{ID: "c1", Name: "Ada"}},
		Initiatives: []models.Initiative{{ID: "i1", Name: "Cloud", AccountID: "a1"}},
	}
	return NewPortfolioHandlers(p.Store()), p
}

func TestAddAndListAccounts(t *testing.T) {
	h := setupAccounts(t)
	ctx := context.Background()

	_, created, err := h.AddAccount(ctx, nil, AddAccountInput{Name: "Acme", Industry: "Manufacturing", ARR: 1200000})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Prospect", created.Status)
	assert.Equal(t, "Medium", created.Priority)

	_, _, err = h.AddAccount(ctx, nil, AddAccountInput{Name: "Globex", Industry: "Energy", Status: "At Risk", Priority: "High"})
	require.NoError(t, err)

	_, all, err := h.ListAccounts(ctx, nil, ListAccountsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Count)

	_, risky, err := h.ListAccounts(ctx, nil, ListAccountsInput{Status: "At Risk"})
	require.NoError(t, err)
	require.Equal(t, 1, risky.Count)
	assert.Equal(t, "Globex", risky.Accounts[0].Name)
}

func TestAddAccountValidation(t *testing.T) {
	h := setupAccounts(t)
	ctx := context.Background()

	_, _, err := h.AddAccount(ctx, nil, AddAccountInput{Industry: "Energy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	_, _, err = h.AddAccount(ctx, nil, AddAccountInput{Name: "X", Industry: "Energy", Status: "Dormant"})
	assert.Error(t, err)

	_, _, err = h.ListAccounts(ctx, nil, ListAccountsInput{Priority: "Urgent"})
	assert.Error(t, err)
}

func TestUpdateToggleDeleteAccount(t *testing.T) {
	h := setupAccounts(t)
	ctx := context.Background()

	_, created, err := h.AddAccount(ctx, nil, AddAccountInput{Name: "Acme", Industry: "Manufacturing"})
	require.NoError(t, err)

	name := "Acme Corp"
	status := "Active"
	_, updated, err := h.UpdateAccount(ctx, nil, UpdateAccountInput{ID: created.ID, Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "Active", updated.Status)
	assert.Equal(t, "Manufacturing", updated.Industry)

	_, toggled, err := h.ToggleReadiness(ctx, nil, AccountIDInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, toggled.TransformationReadiness)

	_, deleted, err := h.DeleteAccount(ctx, nil, AccountIDInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	_, list, err := h.ListAccounts(ctx, nil, ListAccountsInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
}

func TestToggleReadinessLoadsUncachedAccount(t *testing.T) {
	api := statetest.Accounts(t)
	id, err := api.Create(context.Background(), models.Account{Name: "Acme", Industry: "Retail", Status: models.AccountActive, Priority: models.PriorityLow})
	require.NoError(t, err)

	h := NewAccountHandlers(state.NewAccountStore(api))
	_, out, err := h.ToggleReadiness(context.Background(), nil, AccountIDInput{ID: id})
	require.NoError(t, err)
	assert.True(t, out.TransformationReadiness)
}

func TestUpdateMissingAccount(t *testing.T) {
	h := setupAccounts(t)
	_, _, err := h.UpdateAccount(context.Background(), nil, UpdateAccountInput{ID: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Account not found")

	_, _, err = h.UpdateAccount(context.Background(), nil, UpdateAccountInput{})
	assert.Error(t, err)
}

func TestListOpportunities(t *testing.T) {
	h, _ := setupPortfolio(t)
	ctx := context.Background()

	_, out, err := h.ListOpportunities(ctx, nil, ListOpportunitiesInput{AccountID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.InDelta(t, 300000, out.Opportunities[0].WeightedValue, 0.001)

	_, out, err = h.ListOpportunities(ctx, nil, ListOpportunitiesInput{Stage: "Closed Won"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "o3", out.Opportunities[0].ID)

	_, _, err = h.ListOpportunities(ctx, nil, ListOpportunitiesInput{Stage: "Won"})
	assert.Error(t, err)
}

func TestMoveOpportunityStage(t *testing.T) {
	h, p := setupPortfolio(t)
	ctx := context.Background()

	_, out, err := h.MoveOpportunityStage(ctx, nil, MoveOpportunityStageInput{ID: "o1", Stage: "Negotiation"})
	require.NoError(t, err)
	assert.Equal(t, "Negotiation", out.Stage)
	assert.Equal(t, "Platform", out.Name)
	assert.Equal(t, models.StageNegotiation, p.Opportunities[0].Stage)

	_, _, err = h.MoveOpportunityStage(ctx, nil, MoveOpportunityStageInput{ID: "o1", Stage: "Done"})
	assert.Error(t, err)

	_, _, err = h.MoveOpportunityStage(ctx, nil, MoveOpportunityStageInput{ID: "missing", Stage: "Proposal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Opportunity not found")
}

func TestPipelineSummary(t *testing.T) {
	h, _ := setupPortfolio(t)

	_, out, err := h.PipelineSummary(context.Background(), nil, PipelineSummaryInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
	assert.InDelta(t, 1500000, out.TotalValue, 0.001)
	assert.InDelta(t, 1162500, out.WeightedValue, 0.001)
	require.Len(t, out.ByStage, len(models.Stages()))
	assert.Equal(t, "Qualification", out.ByStage[0].Stage)

	_, one, err := h.PipelineSummary(context.Background(), nil, PipelineSummaryInput{AccountID: "a2"})
	require.NoError(t, err)
	assert.Equal(t, 1, one.Count)
}

func TestLinkAndUnlinkInitiative(t *testing.T) {
	h, _ := setupPortfolio(t)
	ctx := context.Background()
	_, _, err := h.ListOpportunities(ctx, nil, ListOpportunitiesInput{})
	require.NoError(t, err)

	_, out, err := h.LinkInitiative(ctx, nil, InitiativeLinkInput{InitiativeID: "i1", ContactID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, out.ContactIDs)

	_, out, err = h.LinkInitiative(ctx, nil, InitiativeLinkInput{InitiativeID: "i1", OpportunityID: "o2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"o2"}, out.OpportunityIDs)

	_, out, err = h.UnlinkInitiative(ctx, nil, InitiativeLinkInput{InitiativeID: "i1", ContactID: "c1"})
	require.NoError(t, err)
	assert.Empty(t, out.ContactIDs)
	assert.Equal(t, []string{"o2"}, out.OpportunityIDs)

	_, _, err = h.LinkInitiative(ctx, nil, InitiativeLinkInput{InitiativeID: "i1", ContactID: "c1", OpportunityID: "o1"})
	assert.Error(t, err)
	_, _, err = h.LinkInitiative(ctx, nil, InitiativeLinkInput{ContactID: "c1"})
	assert.Error(t, err)
}

func TestRenderTerritoryMap(t *testing.T) {
	accounts := setupAccounts(t)
	ctx := context.Background()
	_, _, err := accounts.AddAccount(ctx, nil, AddAccountInput{Name: "Acme", Industry: "Retail", Status: "Active"})
	require.NoError(t, err)
	_, _, err = accounts.AddAccount(ctx, nil, AddAccountInput{Name: "Globex", Industry: "Energy", Status: "At Risk"})
	require.NoError(t, err)

	h := NewVizHandlers(accounts.store)
	_, out, err := h.RenderTerritoryMap(ctx, nil, RenderTerritoryMapInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.NodeCount)
	assert.True(t, strings.Contains(out.DOTSource, "Acme"))

	_, out, err = h.RenderTerritoryMap(ctx, nil, RenderTerritoryMapInput{Status: "At Risk"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.NodeCount)
	assert.NotContains(t, out.DOTSource, "Acme")
}

func TestNewServer(t *testing.T) {
	accounts := setupAccounts(t)
	portfolio, _ := setupPortfolio(t)
	assert.NotNil(t, NewServer("test", accounts.store, portfolio.store))
}
