// ABOUTME: Tests for the map editors
// ABOUTME: Covers drop idempotence, edge creation, relabel isolation and change records
package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/keyaccounts/models"
)

func contact(id, name, title string) *models.ContactPerson {
	return &models.ContactPerson{ID: id, Name: name, Title: title, Role: models.RoleInfluencer}
}

func dropContact(t *testing.T, e *Editor, c *models.ContactPerson, x, y float64) bool {
	t.Helper()
	added, err := e.Drop(DropCommand{Contact: c, Pointer: Position{X: x, Y: y}, Canvas: Position{X: 10, Y: 20}})
	require.NoError(t, err)
	return added
}

func TestDropComputesCanvasRelativePosition(t *testing.T) {
	e := NewStakeholderMap()
	require.True(t, dropContact(t, e, contact("1", "Ada", "CTO"), 110, 220))

	n, ok := e.Snapshot().Node("stakeholder-1")
	require.True(t, ok)
	assert.Equal(t, Position{X: 100, Y: 200}, n.Position)
	assert.Equal(t, KindStakeholder, n.Kind)
	assert.Equal(t, "Ada", n.Label())
}

func TestStakeholderDropIsIdempotentByNameAndTitle(t *testing.T) {
	e := NewStakeholderMap()

	assert.True(t, dropContact(t, e, contact("1", "Ada", "CTO"), 0, 0))
	assert.False(t, dropContact(t, e, contact("1", "Ada", "CTO"), 50, 50))
	// a different record with the same name and title is the same stakeholder
	assert.False(t, dropContact(t, e, contact("2", "Ada", "CTO"), 50, 50))
	assert.True(t, dropContact(t, e, contact("3", "Ada", "CEO"), 50, 50))

	assert.Len(t, e.Snapshot().Nodes, 2)
}

func TestTerritoryDropIsIdempotentByID(t *testing.T) {
	e := NewTerritoryMap()
	acme := &models.Account{ID: "a1", Name: "Acme"}

	added, err := e.Drop(DropCommand{Account: acme})
	require.NoError(t, err)
	assert.True(t, added)

	renamed := &models.Account{ID: "a1", Name: "Acme Corp"}
	added, err = e.Drop(DropCommand{Account: renamed})
	require.NoError(t, err)
	assert.False(t, added)

	other := &models.Account{ID: "a2", Name: "Acme"}
	added, err = e.Drop(DropCommand{Account: other})
	require.NoError(t, err)
	assert.True(t, added)

	snap := e.Snapshot()
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, "account-a1", snap.Nodes[0].ID)
}

func TestDropRejectsWrongPayload(t *testing.T) {
	_, err := NewTerritoryMap().Drop(DropCommand{Contact: contact("1", "Ada", "CTO")})
	assert.ErrorIs(t, err, ErrWrongPayload)

	_, err = NewStakeholderMap().Drop(DropCommand{Account: &models.Account{ID: "a1"}})
	assert.ErrorIs(t, err, ErrWrongPayload)

	_, err = NewStakeholderMap().Drop(DropCommand{})
	assert.ErrorIs(t, err, ErrEmptyDrop)
}

func TestDropKeepsCopyOfRecord(t *testing.T) {
	e := NewStakeholderMap()
	c := contact("1", "Ada", "CTO")
	dropContact(t, e, c, 0, 0)

	c.Name = "Changed"
	n, _ := e.Snapshot().Node("stakeholder-1")
	assert.Equal(t, "Ada", n.Contact.Name)
}

func newConnectedMap(t *testing.T) *Editor {
	t.Helper()
	e := NewStakeholderMap()
	dropContact(t, e, contact("1", "Ada", "CTO"), 0, 0)
	dropContact(t, e, contact("2", "Grace", "VP"), 0, 0)
	dropContact(t, e, contact("3", "Linus", "Architect"), 0, 0)

	for _, c := range []Connection{
		{Source: "stakeholder-1", Target: "stakeholder-2"},
		{Source: "stakeholder-2", Target: "stakeholder-3"},
	} {
		_, added, err := e.Connect(c)
		require.NoError(t, err)
		require.True(t, added)
	}
	return e
}

func TestConnectDefaultsAndDeduplicates(t *testing.T) {
	e := newConnectedMap(t)

	edge, added, err := e.Connect(Connection{Source: "stakeholder-1", Target: "stakeholder-2"})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "edge-stakeholder-1-stakeholder-2", edge.ID)
	assert.Equal(t, WorksWith, edge.Relationship)
	assert.Len(t, e.Snapshot().Edges, 2)

	// the reverse direction is a different edge
	_, added, err = e.Connect(Connection{Source: "stakeholder-2", Target: "stakeholder-1"})
	require.NoError(t, err)
	assert.True(t, added)
}

func TestConnectValidation(t *testing.T) {
	e := newConnectedMap(t)

	_, _, err := e.Connect(Connection{Source: "stakeholder-1", Target: "stakeholder-9"})
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, _, err = e.Connect(Connection{Source: "stakeholder-1", Target: "stakeholder-1"})
	assert.ErrorIs(t, err, ErrSelfLoop)

	_, _, err = NewTerritoryMap().Connect(Connection{Source: "a", Target: "b"})
	assert.ErrorIs(t, err, ErrEdgesDisabled)
}

func TestRelabelChangesOnlyThatEdge(t *testing.T) {
	e := newConnectedMap(t)
	before := e.Snapshot()

	require.NoError(t, e.Relabel("edge-stakeholder-1-stakeholder-2", ReportsTo))

	after := e.Snapshot()
	require.Len(t, after.Edges, len(before.Edges))
	for i := range after.Edges {
		if after.Edges[i].ID == "edge-stakeholder-1-stakeholder-2" {
			assert.Equal(t, ReportsTo, after.Edges[i].Relationship)
			want := before.Edges[i]
			want.Relationship = ReportsTo
			assert.Equal(t, want, after.Edges[i])
			continue
		}
		assert.Equal(t, before.Edges[i], after.Edges[i])
	}
	assert.Equal(t, before.Nodes, after.Nodes)
}

func TestRelabelErrors(t *testing.T) {
	e := newConnectedMap(t)

	assert.ErrorIs(t, e.Relabel("edge-nope", Blocks), ErrUnknownEdge)
	assert.ErrorIs(t, e.Relabel("edge-stakeholder-1-stakeholder-2", "Loves"), ErrUnknownRelationship)
}

func TestNodeChanges(t *testing.T) {
	e := newConnectedMap(t)

	e.ApplyNodeChanges([]NodeChange{
		{Type: ChangePosition, ID: "stakeholder-1", Position: Position{X: 5, Y: 5}},
		{Type: ChangePosition, ID: "stakeholder-1", Delta: Position{X: 1, Y: -1}},
		{Type: ChangeSelect, ID: "stakeholder-3", Selected: true},
		{Type: ChangePosition, ID: "ghost", Position: Position{X: 1, Y: 1}},
	})

	snap := e.Snapshot()
	n1, _ := snap.Node("stakeholder-1")
	assert.Equal(t, Position{X: 6, Y: 4}, n1.Position)
	n3, _ := snap.Node("stakeholder-3")
	assert.True(t, n3.Selected)

	e.ApplyNodeChanges([]NodeChange{{Type: ChangeRemove, ID: "stakeholder-2"}})
	snap = e.Snapshot()
	assert.Len(t, snap.Nodes, 2)
	assert.Empty(t, snap.Edges, "removing a node drops its incident edges")
}

func TestEdgeChanges(t *testing.T) {
	e := newConnectedMap(t)

	e.ApplyEdgeChanges([]EdgeChange{
		{Type: ChangeSelect, ID: "edge-stakeholder-2-stakeholder-3", Selected: true},
		{Type: ChangeRemove, ID: "edge-stakeholder-1-stakeholder-2"},
	})

	snap := e.Snapshot()
	require.Len(t, snap.Edges, 1)
	assert.True(t, snap.Edges[0].Selected)
	assert.Len(t, snap.Nodes, 3)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	e := newConnectedMap(t)
	snap := e.Snapshot()
	snap.Edges[0].Relationship = Blocks
	snap.Nodes[0].Position = Position{X: 999}

	fresh := e.Snapshot()
	assert.Equal(t, WorksWith, fresh.Edges[0].Relationship)
	assert.NotEqual(t, 999.0, fresh.Nodes[0].Position.X)
}

func TestSnapshotRecordsAreIsolated(t *testing.T) {
	e := NewStakeholderMap()
	dropContact(t, e, contact("1", "Ada", "CTO"), 0, 0)

	snap := e.Snapshot()
	snap.Nodes[0].Contact.Name = "Mutated"

	n, _ := e.Snapshot().Node("stakeholder-1")
	assert.Equal(t, "Ada", n.Contact.Name)

	territory := NewTerritoryMap()
	acct := &models.Account{ID: "a1", Name: "Acme", Opportunities: []models.Opportunity{{ID: "o1", Products: []string{"Cloud"}}}}
	_, err := territory.Drop(DropCommand{Account: acct})
	require.NoError(t, err)
	acct.Opportunities[0].Products[0] = "Mutated"

	tsnap := territory.Snapshot()
	tsnap.Nodes[0].Account.Opportunities[0].Products = append(tsnap.Nodes[0].Account.Opportunities[0].Products, "x")
	got, _ := territory.Snapshot().Node("account-a1")
	assert.Equal(t, []string{"Cloud"}, got.Account.Opportunities[0].Products)
}

func TestSubscribersNotifiedOnChangeOnly(t *testing.T) {
	e := NewStakeholderMap()
	calls := 0
	e.Subscribe(func(Snapshot) { calls++ })

	dropContact(t, e, contact("1", "Ada", "CTO"), 0, 0)
	dropContact(t, e, contact("1", "Ada", "CTO"), 0, 0)

	assert.Equal(t, 1, calls)
}

func TestParseRelationship(t *testing.T) {
	r, err := ParseRelationship("Influences")
	require.NoError(t, err)
	assert.Equal(t, Influences, r)

	_, err = ParseRelationship("Ignores")
	assert.ErrorIs(t, err, ErrUnknownRelationship)
	assert.Len(t, Relationships(), 5)
}

func TestTerritoryFromAccounts(t *testing.T) {
	accts := []models.Account{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}, {ID: "a"}}
	e, err := TerritoryFromAccounts(accts)
	require.NoError(t, err)

	snap := e.Snapshot()
	require.Len(t, snap.Nodes, 5)
	assert.Equal(t, Position{X: 0, Y: 0}, snap.Nodes[0].Position)
	assert.Equal(t, Position{X: 660, Y: 0}, snap.Nodes[3].Position)
	assert.Equal(t, Position{X: 0, Y: 140}, snap.Nodes[4].Position)
}

func TestStakeholdersFromContacts(t *testing.T) {
	e, err := StakeholdersFromContacts([]models.ContactPerson{
		{ID: "1", Name: "Ada", Title: "CTO"},
		{ID: "2", Name: "Grace", Title: "VP"},
	})
	require.NoError(t, err)
	_, ok := e.Snapshot().Node("stakeholder-2")
	assert.True(t, ok)
}
