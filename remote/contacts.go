// ABOUTME: REST family for contact people
// ABOUTME: CRUD plus listing the contacts linked to an initiative
package remote

import (
	"context"
	"net/http"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
)

type ContactsAPI struct {
	c *Client
}

func (a *ContactsAPI) GetAll(ctx context.Context) ([]models.ContactPerson, error) {
	var out []models.ContactPerson
	if err := a.c.do(ctx, "contacts.getAll", http.MethodGet, []string{"contacts"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *ContactsAPI) GetByInitiative(ctx context.Context, initiativeID string) ([]models.ContactPerson, error) {
	var out []models.ContactPerson
	if err := a.c.do(ctx, "contacts.getByInitiative", http.MethodGet, []string{"initiatives", initiativeID, "contacts"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *ContactsAPI) GetByID(ctx context.Context, id string) (models.ContactPerson, error) {
	var out models.ContactPerson
	err := a.c.do(ctx, "contacts.getById", http.MethodGet, []string{"contacts", id}, nil, &out)
	return out, err
}

func (a *ContactsAPI) Create(ctx context.Context, contact models.ContactPerson) (models.ContactPerson, error) {
	body, err := a.c.withStamp(contact, false)
	if err != nil {
		return models.ContactPerson{}, crmerr.Configuration("contacts.create", err)
	}
	var out models.ContactPerson
	err = a.c.do(ctx, "contacts.create", http.MethodPost, []string{"contacts"}, body, &out)
	return out, err
}

func (a *ContactsAPI) Update(ctx context.Context, id string, patch models.ContactPatch) (models.ContactPerson, error) {
	var out models.ContactPerson
	err := a.c.do(ctx, "contacts.update", http.MethodPatch, []string{"contacts", id}, patch, &out)
	return out, err
}

func (a *ContactsAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, "contacts.delete", http.MethodDelete, []string{"contacts", id}, nil, nil)
}
