// ABOUTME: Single-record reads that refresh one cached entry instead of a collection
// ABOUTME: Also loads an initiative together with its linked contacts and opportunities
package state

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/keyaccounts/models"
)

// InitiativeDetail is an initiative with the records it links to, as the
// backend reports them.
type InitiativeDetail struct {
	Initiative    models.Initiative
	Contacts      []models.ContactPerson
	Opportunities []models.Opportunity
}

// FetchContact re-reads one contact and merges it into the cache by id.
func (s *PortfolioStore) FetchContact(ctx context.Context, id string) (models.ContactPerson, error) {
	s.ClearError()
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return models.ContactPerson{}, s.fail("fetchContact", err, "An error occurred while fetching contact")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Contacts = upsertByID(snap.Contacts, id, contactID, c)
		return snap
	})
	return c.Clone(), nil
}

// FetchOpportunity re-reads one opportunity and merges it into the cache by id.
func (s *PortfolioStore) FetchOpportunity(ctx context.Context, id string) (models.Opportunity, error) {
	s.ClearError()
	o, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return models.Opportunity{}, s.fail("fetchOpportunity", err, "An error occurred while fetching opportunity")
	}
	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Opportunities = upsertByID(snap.Opportunities, id, opportunityID, o)
		return snap
	})
	return o.Clone(), nil
}

// InitiativeDetail loads an initiative and its linked records concurrently.
// The initiative itself is merged into the cache; the linked lists are not.
func (s *PortfolioStore) InitiativeDetail(ctx context.Context, id string) (InitiativeDetail, error) {
	s.ClearError()

	var d InitiativeDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Initiative, err = s.initiatives.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Contacts, err = s.contacts.GetByInitiative(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Opportunities, err = s.opportunities.GetByInitiative(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return InitiativeDetail{}, s.fail("initiativeDetail", err, "An error occurred while fetching initiative")
	}

	s.cell.update(func(snap PortfolioSnapshot) PortfolioSnapshot {
		snap.Initiatives = upsertByID(snap.Initiatives, id, initiativeID, d.Initiative)
		return snap
	})
	d.Initiative = d.Initiative.Clone()
	return d, nil
}
