// ABOUTME: Tests for CLI commands
// ABOUTME: Runs commands against in-memory remotes and checks their output
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/keyaccounts/config"
	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state/statetest"
)

func setupApp(t *testing.T) (*App, *bytes.Buffer, *statetest.Portfolio) {
	t.Helper()
	p := &statetest.Portfolio{
		Contacts: []models.ContactPerson{{ID: "c1", Name: "Ada", Title: "CTO", Role: models.RoleDecisionMaker}},
		Opportunities: []models.Opportunity{
			{ID: "o1", Name: "Platform", AccountID: "a1", Stage: models.StageDiscovery, Value: 500000, Probability: 60},
			{ID: "o2", Name: "Renewal", AccountID: "a2", Stage: models.StageProposal, Value: 250000, Probability: 75},
		},
		Initiatives: []models.Initiative{{ID: "i1", Name: "Cloud", AccountID: "a1", ContactIDs: []string{"c1"}}},
	}
	a := NewApp(statetest.Accounts(t), p.Store())
	out := &bytes.Buffer{}
	a.Out = out
	return a, out, p
}

func TestAccountsCommands(t *testing.T) {
	a, out, _ := setupApp(t)

	require.NoError(t, AccountsAddCommand(a, []string{"--name", "Acme", "--industry", "Retail", "--arr", "1200000", "--status", "Active"}))
	assert.Contains(t, out.String(), "✓ Account created: Acme")

	out.Reset()
	require.NoError(t, AccountsListCommand(a, []string{"--status", "Active"}))
	assert.Contains(t, out.String(), "Acme")
	assert.Contains(t, out.String(), "$1.2M")
	assert.Contains(t, out.String(), "Total: 1 accounts")

	id := a.Accounts.Snapshot().Accounts[0].ID

	out.Reset()
	require.NoError(t, AccountsToggleCommand(a, []string{id}))
	assert.Contains(t, out.String(), "is now ready")

	out.Reset()
	require.NoError(t, AccountsDeleteCommand(a, []string{id}))
	require.NoError(t, AccountsListCommand(a, nil))
	assert.Contains(t, out.String(), "No accounts found")
}

func TestAccountsAddValidation(t *testing.T) {
	a, _, _ := setupApp(t)
	err := AccountsAddCommand(a, []string{"--name", "Acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "industry is required")

	err = AccountsAddCommand(a, []string{"--name", "Acme", "--industry", "Retail", "--priority", "Urgent"})
	assert.Error(t, err)

	assert.Error(t, AccountsToggleCommand(a, nil))
	assert.Error(t, AccountsToggleCommand(a, []string{"missing"}))
}

func TestOpportunitiesCommands(t *testing.T) {
	a, out, p := setupApp(t)

	require.NoError(t, OpportunitiesListCommand(a, []string{"--account", "a1"}))
	assert.Contains(t, out.String(), "Platform")
	assert.NotContains(t, out.String(), "Renewal")

	out.Reset()
	require.NoError(t, OpportunitiesMoveCommand(a, []string{"--stage", "Negotiation", "o1"}))
	assert.Contains(t, out.String(), "Platform moved to Negotiation")
	assert.Equal(t, models.StageNegotiation, p.Opportunities[0].Stage)

	assert.Error(t, OpportunitiesMoveCommand(a, []string{"--stage", "Done", "o1"}))
	assert.Error(t, OpportunitiesMoveCommand(a, []string{"--stage", "Proposal"}))
}

func TestInitiativeLinkCommands(t *testing.T) {
	a, _, p := setupApp(t)
	require.NoError(t, a.Portfolio.Refresh(context.Background()))

	require.NoError(t, InitiativesLinkCommand(a, []string{"--opportunity", "o1", "i1"}))
	assert.Equal(t, []string{"o1"}, p.Initiatives[0].OpportunityIDs)

	require.NoError(t, InitiativesUnlinkCommand(a, []string{"--contact", "c1", "i1"}))
	assert.Empty(t, p.Initiatives[0].ContactIDs)

	in, ok := a.Portfolio.Snapshot().Initiative("i1")
	require.True(t, ok)
	assert.Equal(t, []string{"o1"}, in.OpportunityIDs)

	assert.Error(t, InitiativesLinkCommand(a, []string{"i1"}))
	assert.Error(t, InitiativesLinkCommand(a, []string{"--contact", "c1", "--opportunity", "o1", "i1"}))
}

func TestPipelineCommand(t *testing.T) {
	a, out, _ := setupApp(t)
	require.NoError(t, PipelineCommand(a, nil))
	assert.Contains(t, out.String(), "PIPELINE OVERVIEW")
	assert.Contains(t, out.String(), "Total $750K")
}

func TestVizCommands(t *testing.T) {
	a, out, _ := setupApp(t)
	require.NoError(t, AccountsAddCommand(a, []string{"--name", "Acme", "--industry", "Retail"}))

	out.Reset()
	require.NoError(t, VizTerritoryCommand(a, nil))
	assert.Contains(t, out.String(), "Acme")

	out.Reset()
	require.NoError(t, VizStakeholdersCommand(a, []string{"--initiative", "i1"}))
	assert.Contains(t, out.String(), "Ada")
	assert.Error(t, VizStakeholdersCommand(a, []string{"--initiative", "nope"}))

	path := filepath.Join(t.TempDir(), "pipeline.dot")
	require.NoError(t, VizPipelineCommand(a, []string{"--output", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Platform")
}

func TestSignupCheckCommand(t *testing.T) {
	a, out, _ := setupApp(t)

	a.In = strings.NewReader("Str0ng!pass\nStr0ng!pass\n")
	require.NoError(t, SignupCheckCommand(a, nil))
	assert.Contains(t, out.String(), "✓ Password meets requirements")

	a, _, _ = setupApp(t)
	a.In = strings.NewReader("weak\nweak\n")
	err := SignupCheckCommand(a, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")

	a, _, _ = setupApp(t)
	a.In = strings.NewReader("Str0ng!pass\nStr0ng!pasS\n")
	err = SignupCheckCommand(a, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Passwords do not match")
}

func TestSyncCommandsNeedKVStore(t *testing.T) {
	a, _, _ := setupApp(t)
	assert.Error(t, SyncStatusCommand(a, nil))
	assert.Error(t, SyncNowCommand(a, nil))
	assert.Error(t, SyncWipeCommand(a, []string{"--confirm"}))
}

func TestSignInLoadsStores(t *testing.T) {
	a, _, _ := setupApp(t)
	unbind := a.SignIn(context.Background())
	defer unbind()

	assert.False(t, a.Accounts.Snapshot().Loading)
	assert.Len(t, a.Portfolio.Snapshot().Opportunities, 2)

	a.Session.SignOut()
	assert.Empty(t, a.Portfolio.Snapshot().Opportunities)
}

func TestOpenSQLStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreSQL
	cfg.DBPath = filepath.Join(t.TempDir(), "accounts.db")

	a, err := Open(cfg)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	assert.Nil(t, a.Charm)

	out := &bytes.Buffer{}
	a.Out = out
	require.NoError(t, AccountsAddCommand(a, []string{"--name", "Acme", "--industry", "Retail"}))
	require.NoError(t, AccountsListCommand(a, nil))
	assert.Contains(t, out.String(), "Acme")
}

func TestOpenRejectsRelativeAPIURL(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreSQL
	cfg.DBPath = filepath.Join(t.TempDir(), "accounts.db")
	cfg.APIURL = "not a url"

	_, err := Open(cfg)
	assert.Error(t, err)
}

func TestAccountsListQueriesByStatusAndPriority(t *testing.T) {
	a, out, _ := setupApp(t)
	require.NotNil(t, a.queries)

	require.NoError(t, AccountsAddCommand(a, []string{"--name", "Acme", "--industry", "Retail", "--status", "At Risk", "--priority", "High"}))
	require.NoError(t, AccountsAddCommand(a, []string{"--name", "Globex", "--industry", "Energy", "--status", "At Risk", "--priority", "Low"}))
	require.NoError(t, AccountsAddCommand(a, []string{"--name", "Initech", "--industry", "Software", "--status", "Active", "--priority", "High"}))

	out.Reset()
	require.NoError(t, AccountsListCommand(a, []string{"--status", "At Risk"}))
	assert.Contains(t, out.String(), "Acme")
	assert.Contains(t, out.String(), "Globex")
	assert.NotContains(t, out.String(), "Initech")

	out.Reset()
	require.NoError(t, AccountsListCommand(a, []string{"--priority", "High"}))
	assert.Contains(t, out.String(), "Acme")
	assert.Contains(t, out.String(), "Initech")
	assert.NotContains(t, out.String(), "Globex")

	out.Reset()
	require.NoError(t, AccountsListCommand(a, []string{"--status", "At Risk", "--priority", "High"}))
	assert.Contains(t, out.String(), "Total: 1 accounts")
	assert.Contains(t, out.String(), "Acme")
}

func TestInitiativeCommands(t *testing.T) {
	a, out, p := setupApp(t)

	require.NoError(t, InitiativesAddCommand(a, []string{
		"--name", "Migration", "--account", "a1", "--status", "In Progress", "--progress", "40",
		"--start", "2026-01-01", "--end", "2026-06-30", "--budget", "50000",
	}))
	assert.Contains(t, out.String(), "✓ Initiative created: Migration")
	require.Len(t, p.Initiatives, 2)
	created := p.Initiatives[1]
	assert.NotEqual(t, "i1", created.ID)
	require.NotNil(t, created.Budget)
	assert.Equal(t, 50000.0, *created.Budget)
	assert.Equal(t, models.InitiativeInProgress, created.Status)

	assert.Error(t, InitiativesAddCommand(a, []string{"--name", "Backwards", "--account", "a1", "--start", "2026-06-01", "--end", "2026-01-01"}))
	assert.Error(t, InitiativesAddCommand(a, []string{"--name", "Bad", "--account", "a1", "--start", "June"}))
	assert.Error(t, InitiativesAddCommand(a, []string{"--account", "a1"}))

	out.Reset()
	require.NoError(t, InitiativesListCommand(a, []string{"--account", "a1"}))
	assert.Contains(t, out.String(), "Cloud")
	assert.Contains(t, out.String(), "Migration")
	assert.Contains(t, out.String(), "Total: 2 initiatives")

	out.Reset()
	require.NoError(t, InitiativesUpdateCommand(a, []string{"--progress", "80", created.ID}))
	assert.Contains(t, out.String(), "In Progress, 80%")
	assert.Equal(t, 80.0, p.Initiatives[1].Progress)
	assert.Equal(t, "Migration", p.Initiatives[1].Name)
	assert.Error(t, InitiativesUpdateCommand(a, []string{created.ID}))

	out.Reset()
	require.NoError(t, InitiativesShowCommand(a, []string{"i1"}))
	assert.Contains(t, out.String(), "Cloud (i1)")
	assert.Contains(t, out.String(), "Contacts (1)")
	assert.Contains(t, out.String(), "Ada, CTO")
	assert.Contains(t, out.String(), "Opportunities (0)")

	require.NoError(t, InitiativesDeleteCommand(a, []string{created.ID}))
	assert.Len(t, p.Initiatives, 1)
	assert.Error(t, InitiativesShowCommand(a, []string{created.ID}))
	assert.Error(t, InitiativesDeleteCommand(a, nil))
}
