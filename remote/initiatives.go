// ABOUTME: REST family for strategic initiatives and their relationship endpoints
// ABOUTME: Links contacts and opportunities to an initiative without refetching it
package remote

import (
	"context"
	"net/http"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
)

type InitiativesAPI struct {
	c *Client
}

func (a *InitiativesAPI) GetAll(ctx context.Context) ([]models.Initiative, error) {
	var out []models.Initiative
	if err := a.c.do(ctx, "initiatives.getAll", http.MethodGet, []string{"initiatives"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByAccount lists the initiatives of one account.
func (a *InitiativesAPI) GetByAccount(ctx context.Context, accountID string) ([]models.Initiative, error) {
	var out []models.Initiative
	if err := a.c.do(ctx, "initiatives.getByAccount", http.MethodGet, []string{"accounts", accountID, "initiatives"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *InitiativesAPI) GetByID(ctx context.Context, id string) (models.Initiative, error) {
	var out models.Initiative
	err := a.c.do(ctx, "initiatives.getById", http.MethodGet, []string{"initiatives", id}, nil, &out)
	return out, err
}

func (a *InitiativesAPI) Create(ctx context.Context, initiative models.Initiative) (models.Initiative, error) {
	initiative.Normalize()
	body, err := a.c.withStamp(initiative, true)
	if err != nil {
		return models.Initiative{}, crmerr.Configuration("initiatives.create", err)
	}
	var out models.Initiative
	err = a.c.do(ctx, "initiatives.create", http.MethodPost, []string{"initiatives"}, body, &out)
	out.Normalize()
	return out, err
}

func (a *InitiativesAPI) Update(ctx context.Context, id string, patch models.InitiativePatch) (models.Initiative, error) {
	patch.Normalize()
	now := a.c.now().UTC()
	patch.LastUpdated = &now

	var out models.Initiative
	err := a.c.do(ctx, "initiatives.update", http.MethodPatch, []string{"initiatives", id}, patch, &out)
	out.Normalize()
	return out, err
}

func (a *InitiativesAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, "initiatives.delete", http.MethodDelete, []string{"initiatives", id}, nil, nil)
}

func (a *InitiativesAPI) AddContact(ctx context.Context, initiativeID, contactID string) error {
	return a.c.do(ctx, "initiatives.addContact", http.MethodPost, []string{"initiatives", initiativeID, "contacts", contactID}, nil, nil)
}

func (a *InitiativesAPI) RemoveContact(ctx context.Context, initiativeID, contactID string) error {
	return a.c.do(ctx, "initiatives.removeContact", http.MethodDelete, []string{"initiatives", initiativeID, "contacts", contactID}, nil, nil)
}

func (a *InitiativesAPI) AddOpportunity(ctx context.Context, initiativeID, opportunityID string) error {
	return a.c.do(ctx, "initiatives.addOpportunity", http.MethodPost, []string{"initiatives", initiativeID, "opportunities", opportunityID}, nil, nil)
}

func (a *InitiativesAPI) RemoveOpportunity(ctx context.Context, initiativeID, opportunityID string) error {
	return a.c.do(ctx, "initiatives.removeOpportunity", http.MethodDelete, []string{"initiatives", initiativeID, "opportunities", opportunityID}, nil, nil)
}

