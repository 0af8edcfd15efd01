// ABOUTME: Shared state for contacts, opportunities and initiatives
// ABOUTME: Merges returned records by identifier and keeps initiative link lists in step
package state

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
)

type ContactsRemote interface {
	GetAll(ctx context.Context) ([]models.ContactPerson, error)
	GetByID(ctx context.Context, id string) (models.ContactPerson, error)
	GetByInitiative(ctx context.Context, initiativeID string) ([]models.ContactPerson, error)
	Create(ctx context.Context, c models.ContactPerson) (models.ContactPerson, error)
	Update(ctx context.Context, id string, patch models.ContactPatch) (models.ContactPerson, error)
	Delete(ctx context.Context, id string) error
}

type OpportunitiesRemote interface {
	GetAll(ctx context.Context) ([]models.Opportunity, error)
	GetByID(ctx context.Context, id string) (models.Opportunity, error)
	GetByInitiative(ctx context.Context, initiativeID string) ([]models.Opportunity, error)
	Create(ctx context.Context, o models.Opportunity) (models.Opportunity, error)
	Update(ctx context.Context, id string, patch models.OpportunityPatch) (models.Opportunity, error)
	Delete(ctx context.Context, id string) error
}

type InitiativesRemote interface {
	GetAll(ctx context.Context) ([]models.Initiative, error)
	GetByID(ctx context.Context, id string) (models.Initiative, error)
	GetByAccount(ctx context.Context, accountID string) ([]models.Initiative, error)
	Create(ctx context.Context, i models.Initiative) (models.Initiative, error)
	Update(ctx context.Context, id string, patch models.InitiativePatch) (models.Initiative, error)
	Delete(ctx context.Context, id string) error
	AddContact(ctx context.Context, initiativeID, contactID string) error
	RemoveContact(ctx context.Context, initiativeID, contactID string) error
	AddOpportunity(ctx context.Context, initiativeID, opportunityID string) error
	RemoveOpportunity(ctx context.Context, initiativeID, opportunityID string) error
}

// PortfolioSnapshot is an immutable view of the portfolio store.
type PortfolioSnapshot struct {
	Contacts      []models.ContactPerson
	Opportunities []models.Opportunity
	Initiatives   []models.Initiative
	Loading       bool
	Err           string
}

func (s PortfolioSnapshot) Contact(id string) (models.ContactPerson, bool) {
	return findByID(s.Contacts, id, contactID)
}

func (s PortfolioSnapshot) Opportunity(id string) (models.Opportunity, bool) {
	return findByID(s.Opportunities, id, opportunityID)
}

func (s PortfolioSnapshot) Initiative(id string) (models.Initiative, bool) {
	return findByID(s.Initiatives, id, initiativeID)
}

// OpportunitiesForAccount filters the cached opportunities by account.
func (s PortfolioSnapshot) OpportunitiesForAccount(accountID string) []models.Opportunity {
	var out []models.Opportunity
	for _, o := range s.Opportunities {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	return out
}

func clonePortfolioSnapshot(s PortfolioSnapshot) PortfolioSnapshot {
	s.Contacts = cloneRecords(s.Contacts, models.ContactPerson.Clone)
	s.Opportunities = cloneRecords(s.Opportunities, models.Opportunity.Clone)
	s.Initiatives = cloneRecords(s.Initiatives, models.Initiative.Clone)
	return s
}

func contactID(c models.ContactPerson) string   { return c.ID }
func opportunityID(o models.Opportunity) string { return o.ID }
func initiativeID(i models.Initiative) string   { return i.ID }

type PortfolioStore struct {
	contacts      ContactsRemote
	opportunities OpportunitiesRemote
	initiatives   InitiativesRemote
	cell          *cell[PortfolioSnapshot]
	logger        *log.Logger
}

func NewPortfolioStore(contacts ContactsRemote, opportunities OpportunitiesRemote, initiatives InitiativesRemote) *PortfolioStore {
	return &PortfolioStore{
		contacts:      contacts,
		opportunities: opportunities,
		initiatives:   initiatives,
		cell: &cell[PortfolioSnapshot]{
			snap:  PortfolioSnapshot{Loading: true},
			clone: clonePortfolioSnapshot,
		},
		logger: log.Default().WithPrefix("portfolio"),
	}
}

func (s *PortfolioStore) Snapshot() PortfolioSnapshot {
	return s.cell.get()
}

func (s *PortfolioStore) Subscribe(fn func(PortfolioSnapshot)) func() {
	return s.cell.subscribe(fn)
}

func (s *PortfolioStore) ClearError() {
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Err = ""
		return snap
	})
}

func (s *PortfolioStore) fail(op string, err error, fallback string) error {
	msg := crmerr.Message(err, fallback)
	s.logger.Error(fallback, "op", op, "err", err)
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Err = msg
		return snap
	})
	return err
}

// Refresh fetches all three collections concurrently and replaces them
// together. Any failure leaves the previous collections in place.
func (s *PortfolioStore) Refresh(ctx context.Context) error {
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Loading = true
		snap.Err = ""
		return snap
	})

	var (
		contacts      []models.ContactPerson
		opportunities []models.Opportunity
		initiatives   []models.Initiative
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contacts, err = s.contacts.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		opportunities, err = s.opportunities.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		initiatives, err = s.initiatives.GetAll(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
			snap.Loading = false
			return snap
		})
		return s.fail("refresh", err, "An error occurred while fetching data")
	}

	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Contacts = contacts
		snap.Opportunities = opportunities
		snap.Initiatives = initiatives
		snap.Loading = false
		return snap
	})
	return nil
}

// Bind clears the portfolio on sign-out and refreshes on sign-in.
func (s *PortfolioStore) Bind(ctx context.Context, session *Session) func() {
	apply := func(u *User) {
		if u == nil {
			s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
				return PortfolioSnapshot{Err: snap.Err}
			})
			return
		}
		// Failures are already in the error slot.
		_ = s.Refresh(ctx)
	}

	unsub := session.Subscribe(apply)
	apply(session.Current())
	return unsub
}

func (s *PortfolioStore) AddContact(ctx context.Context, c models.ContactPerson) (models.ContactPerson, error) {
	s.ClearError()
	created, err := s.contacts.Create(ctx, c)
	if err != nil {
		return models.ContactPerson{}, s.fail("addContact", err, "An error occurred while adding contact")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Contacts = append(snap.Contacts, created)
		return snap
	})
	return created.Clone(), nil
}

func (s *PortfolioStore) UpdateContact(ctx context.Context, id string, patch models.ContactPatch) (models.ContactPerson, error) {
	s.ClearError()
	updated, err := s.contacts.Update(ctx, id, patch)
	if err != nil {
		return models.ContactPerson{}, s.fail("updateContact", err, "An error occurred while updating contact")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Contacts = replaceByID(snap.Contacts, id, contactID, updated)
		return snap
	})
	return updated.Clone(), nil
}

func (s *PortfolioStore) DeleteContact(ctx context.Context, id string) error {
	s.ClearError()
	if err := s.contacts.Delete(ctx, id); err != nil {
		return s.fail("deleteContact", err, "An error occurred while deleting contact")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Contacts = removeByID(snap.Contacts, id, contactID)
		return snap
	})
	return nil
}

func (s *PortfolioStore) AddOpportunity(ctx context.Context, o models.Opportunity) (models.Opportunity, error) {
	s.ClearError()
	created, err := s.opportunities.Create(ctx, o)
	if err != nil {
		return models.Opportunity{}, s.fail("addOpportunity", err, "An error occurred while adding opportunity")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Opportunities = append(snap.Opportunities, created)
		return snap
	})
	return created.Clone(), nil
}

// UpdateOpportunity patches an opportunity. The board moves cards by sending a
// patch with only Stage set.
func (s *PortfolioStore) UpdateOpportunity(ctx context.Context, id string, patch models.OpportunityPatch) (models.Opportunity, error) {
	s.ClearError()
	updated, err := s.opportunities.Update(ctx, id, patch)
	if err != nil {
		return models.Opportunity{}, s.fail("updateOpportunity", err, "An error occurred while updating opportunity")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Opportunities = replaceByID(snap.Opportunities, id, opportunityID, updated)
		return snap
	})
	return updated.Clone(), nil
}

func (s *PortfolioStore) DeleteOpportunity(ctx context.Context, id string) error {
	s.ClearError()
	if err := s.opportunities.Delete(ctx, id); err != nil {
		return s.fail("deleteOpportunity", err, "An error occurred while deleting opportunity")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Opportunities = removeByID(snap.Opportunities, id, opportunityID)
		return snap
	})
	return nil
}

func (s *PortfolioStore) AddInitiative(ctx context.Context, i models.Initiative) (models.Initiative, error) {
	s.ClearError()
	created, err := s.initiatives.Create(ctx, i)
	if err != nil {
		return models.Initiative{}, s.fail("addInitiative", err, "An error occurred while adding initiative")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Initiatives = append(snap.Initiatives, created)
		return snap
	})
	return created.Clone(), nil
}

func (s *PortfolioStore) UpdateInitiative(ctx context.Context, id string, patch models.InitiativePatch) (models.Initiative, error) {
	s.ClearError()
	updated, err := s.initiatives.Update(ctx, id, patch)
	if err != nil {
		return models.Initiative{}, s.fail("updateInitiative", err, "An error occurred while updating initiative")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Initiatives = replaceByID(snap.Initiatives, id, initiativeID, updated)
		return snap
	})
	return updated.Clone(), nil
}

func (s *PortfolioStore) DeleteInitiative(ctx context.Context, id string) error {
	s.ClearError()
	if err := s.initiatives.Delete(ctx, id); err != nil {
		return s.fail("deleteInitiative", err, "An error occurred while deleting initiative")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Initiatives = removeByID(snap.Initiatives, id, initiativeID)
		return snap
	})
	return nil
}

// editInitiative rewrites one cached initiative in place of a refetch.
func (s *PortfolioStore) editInitiative(id string, fn func(models.Initiative) models.Initiative) {
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		out := make([]models.Initiative, len(snap.Initiatives))
		for i, ini := range snap.Initiatives {
			if ini.ID == id {
				ini = fn(ini)
			}
			out[i] = ini
		}
		snap.Initiatives = out
		return snap
	})
}

func (s *PortfolioStore) AddContactToInitiative(ctx context.Context, initiativeID, contactID string) error {
	s.ClearError()
	if err := s.initiatives.AddContact(ctx, initiativeID, contactID); err != nil {
		return s.fail("addContactToInitiative", err, "An error occurred while adding contact to initiative")
	}
	s.editInitiative(initiativeID, func(i models.Initiative) models.Initiative {
		i.ContactIDs = appendUnique(i.ContactIDs, contactID)
		return i
	})
	return nil
}

func (s *PortfolioStore) RemoveContactFromInitiative(ctx context.Context, initiativeID, contactID string) error {
	s.ClearError()
	if err := s.initiatives.RemoveContact(ctx, initiativeID, contactID); err != nil {
		return s.fail("removeContactFromInitiative", err, "An error occurred while removing contact from initiative")
	}
	s.editInitiative(initiativeID, func(i models.Initiative) models.Initiative {
		i.ContactIDs = without(i.ContactIDs, contactID)
		return i
	})
	return nil
}

func (s *PortfolioStore) AddOpportunityToInitiative(ctx context.Context, initiativeID, opportunityID string) error {
	s.ClearError()
	if err := s.initiatives.AddOpportunity(ctx, initiativeID, opportunityID); err != nil {
		return s.fail("addOpportunityToInitiative", err, "An error occurred while adding opportunity to initiative")
	}
	s.editInitiative(initiativeID, func(i models.Initiative) models.Initiative {
		i.OpportunityIDs = appendUnique(i.OpportunityIDs, opportunityID)
		return i
	})
	return nil
}

func (s *PortfolioStore) RemoveOpportunityFromInitiative(ctx context.Context, initiativeID, opportunityID string) error {
	s.ClearError()
	if err := s.initiatives.RemoveOpportunity(ctx, initiativeID, opportunityID); err != nil {
		return s.fail("removeOpportunityFromInitiative", err, "An error occurred while removing opportunity from initiative")
	}
	s.editInitiative(initiativeID, func(i models.Initiative) models.Initiative {
		i.OpportunityIDs = without(i.OpportunityIDs, opportunityID)
		return i
	})
	return nil
}

// LoadInitiativesByAccount replaces the cached initiatives with those of one account.
func (s *PortfolioStore) LoadInitiativesByAccount(ctx context.Context, accountID string) error {
	s.ClearError()
	initiatives, err := s.initiatives.GetByAccount(ctx, accountID)
	if err != nil {
		return s.fail("loadInitiativesByAccount", err, "An error occurred while fetching initiatives")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Initiatives = initiatives
		return snap
	})
	return nil
}
