// ABOUTME: REST family for opportunities
// ABOUTME: Create and update always send lastUpdated set to the current time
package remote

import (
	"context"
	"net/http"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
)

type OpportunitiesAPI struct {
	c *Client
}

func (a *OpportunitiesAPI) GetAll(ctx context.Context) ([]models.Opportunity, error) {
	var out []models.Opportunity
	if err := a.c.do(ctx, "opportunities.getAll", http.MethodGet, []string{"opportunities"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *OpportunitiesAPI) GetByInitiative(ctx context.Context, initiativeID string) ([]models.Opportunity, error) {
	var out []models.Opportunity
	if err := a.c.do(ctx, "opportunities.getByInitiative", http.MethodGet, []string{"initiatives", initiativeID, "opportunities"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *OpportunitiesAPI) GetByID(ctx context.Context, id string) (models.Opportunity, error) {
	var out models.Opportunity
	err := a.c.do(ctx, "opportunities.getById", http.MethodGet, []string{"opportunities", id}, nil, &out)
	return out, err
}

func (a *OpportunitiesAPI) Create(ctx context.Context, opp models.Opportunity) (models.Opportunity, error) {
	opp.Normalize()
	body, err := a.c.withStamp(opp, true)
	if err != nil {
		return models.Opportunity{}, crmerr.Configuration("opportunities.create", err)
	}
	var out models.Opportunity
	err = a.c.do(ctx, "opportunities.create", http.MethodPost, []string{"opportunities"}, body, &out)
	out.Normalize()
	return out, err
}

func (a *OpportunitiesAPI) Update(ctx context.Context, id string, patch models.OpportunityPatch) (models.Opportunity, error) {
	patch.Normalize()
	now := a.c.now().UTC()
	patch.LastUpdated = &now

	var out models.Opportunity
	err := a.c.do(ctx, "opportunities.update", http.MethodPatch, []string{"opportunities", id}, patch, &out)
	out.Normalize()
	return out, err
}

func (a *OpportunitiesAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, "opportunities.delete", http.MethodDelete, []string{"opportunities", id}, nil, nil)
}
