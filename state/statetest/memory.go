// ABOUTME: In-memory remotes and store fixtures for tests of packages built on state
// ABOUTME: Accounts run on the real account API over a badger-backed charm client
package statetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/keyaccounts/charm"
	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/docstore"
	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/remote"
	"github.com/harperreed/keyaccounts/state"
)

// Accounts returns an account API over a throwaway KV collection.
func Accounts(t testing.TB) *remote.AccountsAPI {
	client := charm.NewTestClient(t)
	return remote.NewAccountsAPI(docstore.NewKVCollection(client, remote.AccountsCollection), time.Now)
}

// Portfolio is an in-memory stand-in for the REST families.
type Portfolio struct {
	mu            sync.Mutex
	next          int
	Contacts      []models.ContactPerson
	Opportunities []models.Opportunity
	Initiatives   []models.Initiative
	// Fail, when set, is returned by every call.
	Fail error
}

// id skips identifiers already used by seeded records.
func (p *Portfolio) id(prefix string) string {
	for {
		p.next++
		id := fmt.Sprintf("%s%d", prefix, p.next)
		if index(p.Contacts, id, contactID) < 0 &&
			index(p.Opportunities, id, oppID) < 0 &&
			index(p.Initiatives, id, initID) < 0 {
			return id
		}
	}
}

func notFound(op, what string) error {
	return crmerr.Server(op, 404, what+" not found")
}

func index[T any](items []T, id string, idOf func(T) string) int {
	for i, v := range items {
		if idOf(v) == id {
			return i
		}
	}
	return -1
}

func contactID(c models.ContactPerson) string { return c.ID }
func oppID(o models.Opportunity) string       { return o.ID }
func initID(i models.Initiative) string       { return i.ID }

// ContactsAPI exposes p as a state.ContactsRemote.
func (p *Portfolio) ContactsAPI() state.ContactsRemote { return contacts{p} }

// OpportunitiesAPI exposes p as a state.OpportunitiesRemote.
func (p *Portfolio) OpportunitiesAPI() state.OpportunitiesRemote { return opportunities{p} }

// InitiativesAPI exposes p as a state.InitiativesRemote.
func (p *Portfolio) InitiativesAPI() state.InitiativesRemote { return initiatives{p} }

// Store builds a portfolio store over p.
func (p *Portfolio) Store() *state.PortfolioStore {
	return state.NewPortfolioStore(p.ContactsAPI(), p.OpportunitiesAPI(), p.InitiativesAPI())
}

type contacts struct{ p *Portfolio }

func (c contacts) GetAll(context.Context) ([]models.ContactPerson, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.Fail != nil {
		return nil, c.p.Fail
	}
	return append([]models.ContactPerson(nil), c.p.Contacts...), nil
}

func (c contacts) Create(_ context.Context, in models.ContactPerson) (models.ContactPerson, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.Fail != nil {
		return models.ContactPerson{}, c.p.Fail
	}
	in.ID = c.p.id("c")
	c.p.Contacts = append(c.p.Contacts, in)
	return in, nil
}

func (c contacts) Update(_ context.Context, id string, patch models.ContactPatch) (models.ContactPerson, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.Fail != nil {
		return models.ContactPerson{}, c.p.Fail
	}
	i := index(c.p.Contacts, id, contactID)
	if i < 0 {
		return models.ContactPerson{}, notFound("contacts.update", "Contact")
	}
	c.p.Contacts[i] = patch.Apply(c.p.Contacts[i])
	return c.p.Contacts[i], nil
}

func (c contacts) Delete(_ context.Context, id string) error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.Fail != nil {
		return c.p.Fail
	}
	if i := index(c.p.Contacts, id, contactID); i >= 0 {
		c.p.Contacts = append(c.p.Contacts[:i], c.p.Contacts[i+1:]...)
	}
	return nil
}

func (c contacts) GetByID(_ context.Context, id string) (models.ContactPerson, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.Fail != nil {
		return models.ContactPerson{}, c.p.Fail
	}
	i := index(c.p.Contacts, id, contactID)
	if i < 0 {
		return models.ContactPerson{}, notFound("contacts.get", "Contact")
	}
	return c.p.Contacts[i], nil
}

// GetByInitiative resolves the initiative's contact ids.
func (c contacts) GetByInitiative(_ context.Context, initiativeID string) ([]models.ContactPerson, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.Fail != nil {
		return nil, c.p.Fail
	}
	i := index(c.p.Initiatives, initiativeID, initID)
	if i < 0 {
		return nil, notFound("contacts.byInitiative", "Initiative")
	}
	var out []models.ContactPerson
	for _, id := range c.p.Initiatives[i].ContactIDs {
		if j := index(c.p.Contacts, id, contactID); j >= 0 {
			out = append(out, c.p.Contacts[j])
		}
	}
	return out, nil
}

type opportunities struct{ p *Portfolio }

func (o opportunities) GetByID(_ context.Context, id string) (models.Opportunity, error) {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	if o.p.Fail != nil {
		return models.Opportunity{}, o.p.Fail
	}
	i := index(o.p.Opportunities, id, oppID)
	if i < 0 {
		return models.Opportunity{}, notFound("opportunities.get", "Opportunity")
	}
	return o.p.Opportunities[i], nil
}

// GetByInitiative resolves the initiative's opportunity ids.
func (o opportunities) GetByInitiative(_ context.Context, initiativeID string) ([]models.Opportunity, error) {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	if o.p.Fail != nil {
		return nil, o.p.Fail
	}
	i := index(o.p.Initiatives, initiativeID, initID)
	if i < 0 {
		return nil, notFound("opportunities.byInitiative", "Initiative")
	}
	var out []models.Opportunity
	for _, id := range o.p.Initiatives[i].OpportunityIDs {
		if j := index(o.p.Opportunities, id, oppID); j >= 0 {
			out = append(out, o.p.Opportunities[j])
		}
	}
	return out, nil
}

func (o opportunities) GetAll(context.Context) ([]models.Opportunity, error) {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	if o.p.Fail != nil {
		return nil, o.p.Fail
	}
	return append([]models.Opportunity(nil), o.p.Opportunities...), nil
}

func (o opportunities) Create(_ context.Context, in models.Opportunity) (models.Opportunity, error) {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	if o.p.Fail != nil {
		return models.Opportunity{}, o.p.Fail
	}
	in.ID = o.p.id("o")
	in.Normalize()
	o.p.Opportunities = append(o.p.Opportunities, in)
	return in, nil
}

func (o opportunities) Update(_ context.Context, id string, patch models.OpportunityPatch) (models.Opportunity, error) {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	if o.p.Fail != nil {
		return models.Opportunity{}, o.p.Fail
	}
	i := index(o.p.Opportunities, id, oppID)
	if i < 0 {
		return models.Opportunity{}, notFound("opportunities.update", "Opportunity")
	}
	patch.Normalize()
	o.p.Opportunities[i] = patch.Apply(o.p.Opportunities[i])
	return o.p.Opportunities[i], nil
}

func (o opportunities) Delete(_ context.Context, id string) error {
	o.p.mu.Lock()
	defer o.p.mu.Unlock()
	if o.p.Fail != nil {
		return o.p.Fail
	}
	if i := index(o.p.Opportunities, id, oppID); i >= 0 {
		o.p.Opportunities = append(o.p.Opportunities[:i], o.p.Opportunities[i+1:]...)
	}
	return nil
}

type initiatives struct{ p *Portfolio }

func (n initiatives) GetAll(context.Context) ([]models.Initiative, error) {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.p.Fail != nil {
		return nil, n.p.Fail
	}
	return append([]models.Initiative(nil), n.p.Initiatives...), nil
}

func (n initiatives) GetByID(_ context.Context, id string) (models.Initiative, error) {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.p.Fail != nil {
		return models.Initiative{}, n.p.Fail
	}
	i := index(n.p.Initiatives, id, initID)
	if i < 0 {
		return models.Initiative{}, notFound("initiatives.get", "Initiative")
	}
	return n.p.Initiatives[i], nil
}

func (n initiatives) GetByAccount(_ context.Context, accountID string) ([]models.Initiative, error) {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.p.Fail != nil {
		return nil, n.p.Fail
	}
	var out []models.Initiative
	for _, in := range n.p.Initiatives {
		if in.AccountID == accountID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (n initiatives) Create(_ context.Context, in models.Initiative) (models.Initiative, error) {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.p.Fail != nil {
		return models.Initiative{}, n.p.Fail
	}
	in.ID = n.p.id("i")
	in.Progress = models.ClampPercent(in.Progress)
	n.p.Initiatives = append(n.p.Initiatives, in)
	return in, nil
}

func (n initiatives) Update(_ context.Context, id string, patch models.InitiativePatch) (models.Initiative, error) {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.p.Fail != nil {
		return models.Initiative{}, n.p.Fail
	}
	i := index(n.p.Initiatives, id, initID)
	if i < 0 {
		return models.Initiative{}, notFound("initiatives.update", "Initiative")
	}
	patch.Normalize()
	n.p.Initiatives[i] = patch.Apply(n.p.Initiatives[i])
	return n.p.Initiatives[i], nil
}

func (n initiatives) Delete(_ context.Context, id string) error {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.p.Fail != nil {
		return n.p.Fail
	}
	if i := index(n.p.Initiatives, id, initID); i >= 0 {
		n.p.Initiatives = append(n.p.Initiatives[:i], n.p.Initiatives[i+1:]...)
	}
	return nil
}

func (n initiatives) link(op, initiativeID string, fn func(*models.Initiative)) error {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.p.Fail != nil {
		return n.p.Fail
	}
	i := index(n.p.Initiatives, initiativeID, initID)
	if i < 0 {
		return notFound(op, "Initiative")
	}
	fn(&n.p.Initiatives[i])
	return nil
}

func drop(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (n initiatives) AddContact(_ context.Context, initiativeID, contactID string) error {
	return n.link("initiatives.addContact", initiativeID, func(in *models.Initiative) {
		in.ContactIDs = append(drop(in.ContactIDs, contactID), contactID)
	})
}

func (n initiatives) RemoveContact(_ context.Context, initiativeID, contactID string) error {
	return n.link("initiatives.removeContact", initiativeID, func(in *models.Initiative) {
		in.ContactIDs = drop(in.ContactIDs, contactID)
	})
}

func (n initiatives) AddOpportunity(_ context.Context, initiativeID, opportunityID string) error {
	return n.link("initiatives.addOpportunity", initiativeID, func(in *models.Initiative) {
		in.OpportunityIDs = append(drop(in.OpportunityIDs, opportunityID), opportunityID)
	})
}

func (n initiatives) RemoveOpportunity(_ context.Context, initiativeID, opportunityID string) error {
	return n.link("initiatives.removeOpportunity", initiativeID, func(in *models.Initiative) {
		in.OpportunityIDs = drop(in.OpportunityIDs, opportunityID)
	})
}
