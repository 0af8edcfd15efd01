// ABOUTME: Tests for the portfolio store against in-memory remotes
// ABOUTME: Covers concurrent refresh, merge by identifier and initiative link lists
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
)

type memContacts struct {
	mu    sync.Mutex
	items []models.ContactPerson
	next  int
	fail  error
}

func (m *memContacts) GetAll(context.Context) ([]models.ContactPerson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]models.ContactPerson(nil), m.items...), nil
}

func (m *memContacts) Create(_ context.Context, c models.ContactPerson) (models.ContactPerson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return models.ContactPerson{}, m.fail
	}
	m.next++
	c.ID = fmt.Sprintf("c%d", m.next)
	m.items = append(m.items, c)
	return c, nil
}

func (m *memContacts) Update(_ context.Context, id string, patch models.ContactPatch) (models.ContactPerson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.items {
		if c.ID == id {
			m.items[i] = patch.Apply(c)
			return m.items[i], nil
		}
	}
	return models.ContactPerson{}, crmerr.Server("contacts.update", 404, "Contact not found")
}

func (m *memContacts) Delete(context.Context, string) error { return m.fail }

func (m *memContacts) GetByID(_ context.Context, id string) (models.ContactPerson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			return c, nil
		}
	}
	return models.ContactPerson{}, crmerr.Server("contacts.get", 404, "Contact not found")
}

// GetByInitiative answers with every contact; the fixture has no link table.
func (m *memContacts) GetByInitiative(ctx context.Context, _ string) ([]models.ContactPerson, error) {
	return m.GetAll(ctx)
}

type memOpportunities struct {
	items []models.Opportunity
	calls []models.OpportunityPatch
}

func (m *memOpportunities) GetAll(context.Context) ([]models.Opportunity, error) {
	return append([]models.Opportunity(nil), m.items...), nil
}

func (m *memOpportunities) Create(_ context.Context, o models.Opportunity) (models.Opportunity, error) {
	o.ID = fmt.Sprintf("o%d", len(m.items)+1)
	o.Normalize()
	m.items = append(m.items, o)
	return o, nil
}

func (m *memOpportunities) Update(_ context.Context, id string, patch models.OpportunityPatch) (models.Opportunity, error) {
	m.calls = append(m.calls, patch)
	for i, o := range m.items {
		if o.ID == id {
			m.items[i] = patch.Apply(o)
			return m.items[i], nil
		}
	}
	return models.Opportunity{}, crmerr.Server("opportunities.update", 404, "")
}

func (m *memOpportunities) Delete(context.Context, string) error { return nil }

func (m *memOpportunities) GetByID(_ context.Context, id string) (models.Opportunity, error) {
	for _, o := range m.items {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Opportunity{}, crmerr.Server("opportunities.get", 404, "Opportunity not found")
}

func (m *memOpportunities) GetByInitiative(_ context.Context, initiativeID string) ([]models.Opportunity, error) {
	var out []models.Opportunity
	for _, o := range m.items {
		for _, id := range o.InitiativeIDs {
			if id == initiativeID {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

type memInitiatives struct {
	items     []models.Initiative
	byAccount map[string][]models.Initiative
	links     []string
	getAll    int
}

func (m *memInitiatives) GetAll(context.Context) ([]models.Initiative, error) {
	m.getAll++
	return append([]models.Initiative(nil), m.items...), nil
}

func (m *memInitiatives) GetByID(_ context.Context, id string) (models.Initiative, error) {
	for _, i := range m.items {
		if i.ID == id {
			return i, nil
		}
	}
	return models.Initiative{}, crmerr.Server("initiatives.get", 404, "Initiative not found")
}

func (m *memInitiatives) GetByAccount(_ context.Context, accountID string) ([]models.Initiative, error) {
	return m.byAccount[accountID], nil
}

func (m *memInitiatives) Create(_ context.Context, i models.Initiative) (models.Initiative, error) {
	i.ID = "i-new"
	return i, nil
}

func (m *memInitiatives) Update(_ context.Context, id string, patch models.InitiativePatch) (models.Initiative, error) {
	for _, i := range m.items {
		if i.ID == id {
			return patch.Apply(i), nil
		}
	}
	return models.Initiative{}, crmerr.Server("initiatives.update", 404, "")
}

func (m *memInitiatives) Delete(context.Context, string) error { return nil }

func (m *memInitiatives) AddContact(_ context.Context, iid, cid string) error {
	m.links = append(m.links, "+c:"+iid+":"+cid)
	return nil
}

func (m *memInitiatives) RemoveContact(_ context.Context, iid, cid string) error {
	m.links = append(m.links, "-c:"+iid+":"+cid)
	return nil
}

func (m *memInitiatives) AddOpportunity(_ context.Context, iid, oid string) error {
	m.links = append(m.links, "+o:"+iid+":"+oid)
	return nil
}

func (m *memInitiatives) RemoveOpportunity(_ context.Context, iid, oid string) error {
	m.links = append(m.links, "-o:"+iid+":"+oid)
	return nil
}

type portfolioFixture struct {
	contacts      *memContacts
	opportunities *memOpportunities
	initiatives   *memInitiatives
	store         *PortfolioStore
}

func newPortfolioFixture(t *testing.T) portfolioFixture {
	t.Helper()
	f := portfolioFixture{
		contacts: &memContacts{items: []models.ContactPerson{
			{ID: "c1", Name: "Ada", Title: "CTO", Role: models.RoleDecisionMaker},
		}},
		opportunities: &memOpportunities{items: []models.Opportunity{
			{ID: "o1", Name: "Renewal", Stage: models.StageDiscovery, Value: 500000, Probability: 60, AccountID: "a1"},
			{ID: "o2", Name: "Upsell", Stage: models.StageProposal, Value: 250000, Probability: 75, AccountID: "a2"},
		}},
		initiatives: &memInitiatives{
			items: []models.Initiative{
				{ID: "i1", Name: "Cloud", AccountID: "a1", ContactIDs: []string{"c0"}},
				{ID: "i2", Name: "Data", AccountID: "a2"},
			},
			byAccount: map[string][]models.Initiative{
				"a2": {{ID: "i2", Name: "Data", AccountID: "a2"}},
			},
		},
	}
	f.store = NewPortfolioStore(f.contacts, f.opportunities, f.initiatives)
	require.NoError(t, f.store.Refresh(context.Background()))
	return f
}

func TestPortfolioRefreshLoadsAllCollections(t *testing.T) {
	f := newPortfolioFixture(t)
	snap := f.store.Snapshot()

	assert.False(t, snap.Loading)
	assert.Len(t, snap.Contacts, 1)
	assert.Len(t, snap.Opportunities, 2)
	assert.Len(t, snap.Initiatives, 2)
	assert.Len(t, snap.OpportunitiesForAccount("a1"), 1)
}

func TestPortfolioRefreshFailureKeepsPreviousData(t *testing.T) {
	f := newPortfolioFixture(t)
	f.contacts.fail = errors.New("boom")

	err := f.store.Refresh(context.Background())
	require.Error(t, err)

	snap := f.store.Snapshot()
	assert.Equal(t, "boom", snap.Err)
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Opportunities, 2)
}

func TestMoveOpportunityStageOnlyPatchesStage(t *testing.T) {
	f := newPortfolioFixture(t)
	stage := models.StageNegotiation

	_, err := f.store.UpdateOpportunity(context.Background(), "o1", models.OpportunityPatch{Stage: &stage})
	require.NoError(t, err)

	require.Len(t, f.opportunities.calls, 1)
	assert.Equal(t, models.OpportunityPatch{Stage: &stage}, f.opportunities.calls[0])

	got, ok := f.store.Snapshot().Opportunity("o1")
	require.True(t, ok)
	assert.Equal(t, models.StageNegotiation, got.Stage)
	assert.Equal(t, 500000.0, got.Value)
	assert.Equal(t, 60.0, got.Probability)

	other, _ := f.store.Snapshot().Opportunity("o2")
	assert.Equal(t, models.StageProposal, other.Stage)
}

func TestContactCRUDMergesByID(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()

	created, err := f.store.AddContact(ctx, models.ContactPerson{Name: "Grace", Title: "VP", Role: models.RoleInfluencer})
	require.NoError(t, err)
	assert.Len(t, f.store.Snapshot().Contacts, 2)

	title := "SVP"
	_, err = f.store.UpdateContact(ctx, created.ID, models.ContactPatch{Title: &title})
	require.NoError(t, err)
	got, ok := f.store.Snapshot().Contact(created.ID)
	require.True(t, ok)
	assert.Equal(t, "SVP", got.Title)

	require.NoError(t, f.store.DeleteContact(ctx, created.ID))
	_, ok = f.store.Snapshot().Contact(created.ID)
	assert.False(t, ok)
}

func TestUpdateFailureSurfacesServerMessage(t *testing.T) {
	f := newPortfolioFixture(t)
	title := "x"

	_, err := f.store.UpdateContact(context.Background(), "ghost", models.ContactPatch{Title: &title})
	require.Error(t, err)
	assert.True(t, crmerr.IsNotFound(err))
	assert.Equal(t, "Contact not found", f.store.Snapshot().Err)
}

func TestInitiativeLinksUpdateOnlyThatInitiative(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()
	getAllBefore := f.initiatives.getAll

	require.NoError(t, f.store.AddContactToInitiative(ctx, "i1", "c1"))
	require.NoError(t, f.store.AddContactToInitiative(ctx, "i1", "c1"))
	require.NoError(t, f.store.AddOpportunityToInitiative(ctx, "i1", "o1"))

	i1, _ := f.store.Snapshot().Initiative("i1")
	assert.Equal(t, []string{"c0", "c1"}, i1.ContactIDs)
	assert.Equal(t, []string{"o1"}, i1.OpportunityIDs)

	i2, _ := f.store.Snapshot().Initiative("i2")
	assert.Empty(t, i2.ContactIDs)

	require.NoError(t, f.store.RemoveContactFromInitiative(ctx, "i1", "c0"))
	require.NoError(t, f.store.RemoveOpportunityFromInitiative(ctx, "i1", "o1"))

	i1, _ = f.store.Snapshot().Initiative("i1")
	assert.Equal(t, []string{"c1"}, i1.ContactIDs)
	assert.Empty(t, i1.OpportunityIDs)

	assert.Equal(t, getAllBefore, f.initiatives.getAll, "link operations never refetch")
	assert.Len(t, f.initiatives.links, 5)
}

func TestLoadInitiativesByAccountReplaces(t *testing.T) {
	f := newPortfolioFixture(t)

	require.NoError(t, f.store.LoadInitiativesByAccount(context.Background(), "a2"))

	snap := f.store.Snapshot()
	require.Len(t, snap.Initiatives, 1)
	assert.Equal(t, "i2", snap.Initiatives[0].ID)
}

func TestPortfolioSignOutClears(t *testing.T) {
	f := newPortfolioFixture(t)
	session := NewSession()
	session.SignIn(User{ID: "u1"})

	unbind := f.store.Bind(context.Background(), session)
	defer unbind()
	calls := f.initiatives.getAll

	session.SignOut()

	snap := f.store.Snapshot()
	assert.Empty(t, snap.Contacts)
	assert.Empty(t, snap.Opportunities)
	assert.Empty(t, snap.Initiatives)
	assert.False(t, snap.Loading)
	assert.Equal(t, calls, f.initiatives.getAll)
}

func TestSessionNotifiesOnlyOnTransition(t *testing.T) {
	session := NewSession()
	var seen []*User
	session.Subscribe(func(u *User) { seen = append(seen, u) })

	session.SignIn(User{ID: "u1"})
	session.SignIn(User{ID: "u1"})
	session.SignIn(User{ID: "u2"})
	session.SignOut()
	session.SignOut()

	require.Len(t, seen, 3)
	assert.Equal(t, "u1", seen[0].ID)
	assert.Equal(t, "u2", seen[1].ID)
	assert.Nil(t, seen[2])
	assert.Nil(t, session.Current())
}

func TestPortfolioSnapshotSharesNoNestedLists(t *testing.T) {
	f := newPortfolioFixture(t)
	_, err := f.store.UpdateOpportunity(context.Background(), "o1", models.OpportunityPatch{Products: []string{"Cloud"}})
	require.NoError(t, err)

	snap := f.store.Snapshot()
	snap.Initiatives[0].ContactIDs[0] = "mutated"
	snap.Opportunities[0].Products[0] = "mutated"

	fresh := f.store.Snapshot()
	assert.Equal(t, []string{"c0"}, fresh.Initiatives[0].ContactIDs)
	assert.Equal(t, []string{"Cloud"}, fresh.Opportunities[0].Products)
}

func TestSubscriberCopiesShareNoNestedLists(t *testing.T) {
	f := newPortfolioFixture(t)
	var seen PortfolioSnapshot
	unsub := f.store.Subscribe(func(s PortfolioSnapshot) { seen = s })
	defer unsub()

	require.NoError(t, f.store.AddContactToInitiative(context.Background(), "i1", "c1"))
	seen.Initiatives[0].ContactIDs[1] = "mutated"

	i1, _ := f.store.Snapshot().Initiative("i1")
	assert.Equal(t, []string{"c0", "c1"}, i1.ContactIDs)
}

func TestInitiativeCRUDMergesByID(t *testing.T) {
	f := newPortfolioFixture(t)
	ctx := context.Background()

	created, err := f.store.AddInitiative(ctx, models.Initiative{
		Name:            "Security",
		BusinessOutcome: models.OutcomeManageRisk,
		Status:          models.InitiativeNotStarted,
		AccountID:       "a1",
	})
	require.NoError(t, err)
	assert.Equal(t, "i-new", created.ID)
	assert.Len(t, f.store.Snapshot().Initiatives, 3)

	progress := 40.0
	status := models.InitiativeInProgress
	_, err = f.store.UpdateInitiative(ctx, "i2", models.InitiativePatch{Progress: &progress, Status: &status})
	require.NoError(t, err)
	i2, ok := f.store.Snapshot().Initiative("i2")
	require.True(t, ok)
	assert.Equal(t, 40.0, i2.Progress)
	assert.Equal(t, models.InitiativeInProgress, i2.Status)
	i1, _ := f.store.Snapshot().Initiative("i1")
	assert.Equal(t, "Cloud", i1.Name)

	require.NoError(t, f.store.DeleteInitiative(ctx, "i1"))
	_, ok = f.store.Snapshot().Initiative("i1")
	assert.False(t, ok)
	assert.Len(t, f.store.Snapshot().Initiatives, 2)
}

func TestUpdateMissingInitiativeKeepsCache(t *testing.T) {
	f := newPortfolioFixture(t)
	name := "x"

	_, err := f.store.UpdateInitiative(context.Background(), "ghost", models.InitiativePatch{Name: &name})
	require.Error(t, err)
	assert.NotEmpty(t, f.store.Snapshot().Err)
	assert.Len(t, f.store.Snapshot().Initiatives, 2)
}

func TestDeleteOpportunityFiltersCache(t *testing.T) {
	f := newPortfolioFixture(t)

	require.NoError(t, f.store.DeleteOpportunity(context.Background(), "o1"))

	snap := f.store.Snapshot()
	_, ok := snap.Opportunity("o1")
	assert.False(t, ok)
	assert.Len(t, snap.Opportunities, 1)

	require.NoError(t, f.store.DeleteOpportunity(context.Background(), "ghost"), "absent ids are a cache no-op")
	assert.Len(t, f.store.Snapshot().Opportunities, 1)
}

func TestFetchOpportunityMergesByID(t *testing.T) {
	f := newPortfolioFixture(t)
	f.opportunities.items[0].Value = 900000

	got, err := f.store.FetchOpportunity(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 900000.0, got.Value)

	cached, _ := f.store.Snapshot().Opportunity("o1")
	assert.Equal(t, 900000.0, cached.Value)
	assert.Len(t, f.store.Snapshot().Opportunities, 2)
}

func TestFetchContactMissingSetsError(t *testing.T) {
	f := newPortfolioFixture(t)

	_, err := f.store.FetchContact(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, "Contact not found", f.store.Snapshot().Err)
	assert.Len(t, f.store.Snapshot().Contacts, 1)
}

func TestInitiativeDetailLoadsLinkedRecords(t *testing.T) {
	f := newPortfolioFixture(t)
	f.opportunities.items[1].InitiativeIDs = []string{"i1"}

	d, err := f.store.InitiativeDetail(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, "Cloud", d.Initiative.Name)
	require.Len(t, d.Opportunities, 1)
	assert.Equal(t, "o2", d.Opportunities[0].ID)
	assert.Len(t, d.Contacts, 1)

	d.Initiative.ContactIDs[0] = "mutated"
	cached, _ := f.store.Snapshot().Initiative("i1")
	assert.Equal(t, []string{"c0"}, cached.ContactIDs)
}
