// ABOUTME: Account family read and written through a document-store collection
// ABOUTME: Converts store-native timestamps and fills defaults for missing fields on every read
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/docstore"
	"github.com/harperreed/keyaccounts/models"
)

// AccountsCollection is the collection name accounts are stored under.
const AccountsCollection = "accounts"

// readinessThreshold maps a legacy numeric readiness score onto the boolean flag.
const readinessThreshold = 50

type AccountsAPI struct {
	coll   docstore.Collection
	now    func() time.Time
	logger *log.Logger
}

func NewAccountsAPI(coll docstore.Collection, now func() time.Time) *AccountsAPI {
	if now == nil {
		now = time.Now
	}
	return &AccountsAPI{
		coll:   coll,
		now:    now,
		logger: log.Default().WithPrefix("accounts"),
	}
}

// storedAccount is the document shape. Every field may be missing.
type storedAccount struct {
	Name                    string                 `json:"name"`
	Ticker                  string                 `json:"ticker"`
	Industry                *string                `json:"industry"`
	ARR                     float64                `json:"arr"`
	Status                  models.AccountStatus   `json:"status"`
	Priority                models.AccountPriority `json:"priority"`
	TransformationReadiness json.RawMessage        `json:"transformationReadiness"`
	Notes                   string                 `json:"notes"`
	Contacts                []models.ContactPerson `json:"contacts"`
	Opportunities           []models.Opportunity   `json:"opportunities"`
	ExpectedCloseDate       *docstore.Timestamp    `json:"expectedCloseDate"`
	CreatedAt               *docstore.Timestamp    `json:"createdAt"`
	UpdatedAt               *docstore.Timestamp    `json:"updatedAt"`
	LastUpdated             *docstore.Timestamp    `json:"lastUpdated"`
}

func (a *AccountsAPI) translate(doc docstore.Document) (models.Account, error) {
	var s storedAccount
	if err := docstore.Decode(doc, &s); err != nil {
		var cerr *crmerr.Error
		if errors.As(err, &cerr) {
			return models.Account{}, cerr
		}
		return models.Account{}, crmerr.Wrap(crmerr.KindValidation, "accounts.translate", "Corrupt account record "+doc.ID, err)
	}

	ready, err := decodeReadiness(s.TransformationReadiness)
	if err != nil {
		return models.Account{}, crmerr.Wrap(crmerr.KindValidation, "accounts.translate", "Corrupt account record "+doc.ID, err)
	}

	now := a.now().UTC()
	acct := models.Account{
		ID:                      doc.ID,
		Name:                    s.Name,
		Ticker:                  s.Ticker,
		ARR:                     s.ARR,
		Status:                  s.Status,
		Priority:                s.Priority,
		TransformationReadiness: ready,
		Notes:                   s.Notes,
		Contacts:                s.Contacts,
		Opportunities:           s.Opportunities,
		CreatedAt:               timeOr(s.CreatedAt, now),
		UpdatedAt:               timeOr(s.UpdatedAt, now),
	}
	if s.Industry != nil {
		acct.Industry = *s.Industry
	}
	if acct.Status == "" {
		acct.Status = models.AccountProspect
	}
	if acct.Priority == "" {
		acct.Priority = models.PriorityMedium
	}
	if s.ExpectedCloseDate != nil && !s.ExpectedCloseDate.IsZero() {
		t := s.ExpectedCloseDate.Time()
		acct.ExpectedCloseDate = &t
	}
	acct.LastUpdated = timeOr(s.LastUpdated, acct.UpdatedAt)

	return acct, nil
}

func timeOr(ts *docstore.Timestamp, fallback time.Time) time.Time {
	if ts == nil || ts.IsZero() {
		return fallback
	}
	return ts.Time()
}

// decodeReadiness reads the boolean flag, migrating legacy 0-100 scores.
func decodeReadiness(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return false, err
	}
	return score >= readinessThreshold, nil
}

func (a *AccountsAPI) storeErr(op string, err error) error {
	a.logger.Error("document store error", "op", op, "err", err)
	return crmerr.Wrap(crmerr.KindServer, op, crmerr.MsgServerDefault, err)
}

func (a *AccountsAPI) translateAll(op string, docs []docstore.Document) ([]models.Account, error) {
	out := make([]models.Account, 0, len(docs))
	for _, d := range docs {
		acct, err := a.translate(d)
		if err != nil {
			a.logger.Error("corrupt account", "op", op, "id", d.ID, "err", err)
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}

func (a *AccountsAPI) GetAll(ctx context.Context) ([]models.Account, error) {
	docs, err := a.coll.List(ctx)
	if err != nil {
		return nil, a.storeErr("accounts.getAll", err)
	}
	return a.translateAll("accounts.getAll", docs)
}

func (a *AccountsAPI) Get(ctx context.Context, id string) (models.Account, error) {
	doc, err := a.coll.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Account{}, crmerr.NotFound("accounts.get", "Account not found")
	}
	if err != nil {
		return models.Account{}, a.storeErr("accounts.get", err)
	}
	return a.translate(doc)
}

// GetByStatus lists accounts with the given status.
func (a *AccountsAPI) GetByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error) {
	docs, err := docstore.Where(ctx, a.coll, "status", string(status))
	if err != nil {
		return nil, a.storeErr("accounts.getByStatus", err)
	}
	return a.translateAll("accounts.getByStatus", docs)
}

// GetByPriority lists accounts with the given priority.
func (a *AccountsAPI) GetByPriority(ctx context.Context, priority models.AccountPriority) ([]models.Account, error) {
	docs, err := docstore.Where(ctx, a.coll, "priority", string(priority))
	if err != nil {
		return nil, a.storeErr("accounts.getByPriority", err)
	}
	return a.translateAll("accounts.getByPriority", docs)
}

// Create stores a new account and returns the store-assigned identifier.
func (a *AccountsAPI) Create(ctx context.Context, acct models.Account) (string, error) {
	if acct.Status != "" && !acct.Status.Valid() {
		return "", crmerr.Validation("status", "unrecognized status %q", acct.Status)
	}
	if acct.Priority != "" && !acct.Priority.Valid() {
		return "", crmerr.Validation("priority", "unrecognized priority %q", acct.Priority)
	}

	now := a.now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	acct.LastUpdated = now

	fields, err := accountFields(acct)
	if err != nil {
		return "", crmerr.Configuration("accounts.create", err)
	}

	id, err := a.coll.Add(ctx, fields)
	if err != nil {
		return "", a.storeErr("accounts.create", err)
	}
	a.logger.Debug("created account", "id", id, "name", acct.Name)
	return id, nil
}

// Update merges patch into the stored account, re-stamps updatedAt and
// lastUpdated, and returns the re-read record.
func (a *AccountsAPI) Update(ctx context.Context, id string, patch models.AccountPatch) (models.Account, error) {
	now := a.now().UTC()
	patch.UpdatedAt = &now
	patch.LastUpdated = &now

	fields, err := patchFields(patch)
	if err != nil {
		return models.Account{}, err
	}

	err = a.coll.Update(ctx, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Account{}, crmerr.NotFound("accounts.update", "Account not found")
	}
	if err != nil {
		return models.Account{}, a.storeErr("accounts.update", err)
	}

	return a.Get(ctx, id)
}

func (a *AccountsAPI) Delete(ctx context.Context, id string) error {
	if err := a.coll.Delete(ctx, id); err != nil {
		return a.storeErr("accounts.delete", err)
	}
	return nil
}

func accountFields(acct models.Account) (docstore.Fields, error) {
	fields := docstore.Fields{
		"name":                    acct.Name,
		"ticker":                  acct.Ticker,
		"industry":                acct.Industry,
		"arr":                     acct.ARR,
		"status":                  string(acct.Status),
		"priority":                string(acct.Priority),
		"transformationReadiness": acct.TransformationReadiness,
		"notes":                   acct.Notes,
		"createdAt":               docstore.TimestampOf(acct.CreatedAt),
		"updatedAt":               docstore.TimestampOf(acct.UpdatedAt),
		"lastUpdated":             docstore.TimestampOf(acct.LastUpdated),
	}
	if acct.ExpectedCloseDate != nil {
		fields["expectedCloseDate"] = docstore.TimestampOf(*acct.ExpectedCloseDate)
	}
	if len(acct.Contacts) > 0 {
		enc, err := encodeList(acct.Contacts)
		if err != nil {
			return nil, err
		}
		fields["contacts"] = enc
	}
	if len(acct.Opportunities) > 0 {
		enc, err := encodeList(acct.Opportunities)
		if err != nil {
			return nil, err
		}
		fields["opportunities"] = enc
	}
	return fields, nil
}

func encodeList(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out []any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// patchFields converts the set fields of p. Its only failures are validation errors.
func patchFields(p models.AccountPatch) (docstore.Fields, error) {
	fields := docstore.Fields{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Ticker != nil {
		fields["ticker"] = *p.Ticker
	}
	if p.Industry != nil {
		fields["industry"] = *p.Industry
	}
	if p.ARR != nil {
		fields["arr"] = *p.ARR
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, crmerr.Validation("status", "unrecognized status %q", *p.Status)
		}
		fields["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return nil, crmerr.Validation("priority", "unrecognized priority %q", *p.Priority)
		}
		fields["priority"] = string(*p.Priority)
	}
	if p.TransformationReadiness != nil {
		fields["transformationReadiness"] = *p.TransformationReadiness
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	if p.ExpectedCloseDate != nil {
		fields["expectedCloseDate"] = docstore.TimestampOf(*p.ExpectedCloseDate)
	}
	if p.UpdatedAt != nil {
		fields["updatedAt"] = docstore.TimestampOf(*p.UpdatedAt)
	}
	if p.LastUpdated != nil {
		fields["lastUpdated"] = docstore.TimestampOf(*p.LastUpdated)
	}
	return fields, nil
}
