// ABOUTME: Partial-update shapes for each record type
// ABOUTME: Nil fields are left untouched; Apply overlays a patch onto a copy of a record
package models

import "time"

// AccountPatch carries the account fields to overwrite. UpdatedAt and LastUpdated
// may be set by callers but are always re-stamped by the remote layer.
type AccountPatch struct {
	Name                    *string          `json:"name,omitempty"`
	Ticker                  *string          `json:"ticker,omitempty"`
	Industry                *string          `json:"industry,omitempty"`
	ARR                     *float64         `json:"arr,omitempty"`
	Status                  *AccountStatus   `json:"status,omitempty"`
	Priority                *AccountPriority `json:"priority,omitempty"`
	TransformationReadiness *bool            `json:"transformationReadiness,omitempty"`
	Notes                   *string          `json:"notes,omitempty"`
	ExpectedCloseDate       *time.Time       `json:"expectedCloseDate,omitempty"`
	UpdatedAt               *time.Time       `json:"updatedAt,omitempty"`
	LastUpdated             *time.Time       `json:"lastUpdated,omitempty"`
}

func (p AccountPatch) Apply(a Account) Account {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Ticker != nil {
		a.Ticker = *p.Ticker
	}
	if p.Industry != nil {
		a.Industry = *p.Industry
	}
	if p.ARR != nil {
		a.ARR = *p.ARR
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.TransformationReadiness != nil {
		a.TransformationReadiness = *p.TransformationReadiness
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.ExpectedCloseDate != nil {
		d := *p.ExpectedCloseDate
		a.ExpectedCloseDate = &d
	}
	if p.UpdatedAt != nil {
		a.UpdatedAt = *p.UpdatedAt
	}
	if p.LastUpdated != nil {
		a.LastUpdated = *p.LastUpdated
	}
	return a
}

// Diff returns the patch that turns from into to, covering the user-editable fields.
func (a Account) Diff(to Account) AccountPatch {
	var p AccountPatch
	if a.Name != to.Name {
		p.Name = &to.Name
	}
	if a.Ticker != to.Ticker {
		p.Ticker = &to.Ticker
	}
	if a.Industry != to.Industry {
		p.Industry = &to.Industry
	}
	if a.ARR != to.ARR {
		p.ARR = &to.ARR
	}
	if a.Status != to.Status {
		p.Status = &to.Status
	}
	if a.Priority != to.Priority {
		p.Priority = &to.Priority
	}
	if a.TransformationReadiness != to.TransformationReadiness {
		p.TransformationReadiness = &to.TransformationReadiness
	}
	if a.Notes != to.Notes {
		p.Notes = &to.Notes
	}
	if to.ExpectedCloseDate != nil && (a.ExpectedCloseDate == nil || !a.ExpectedCloseDate.Equal(*to.ExpectedCloseDate)) {
		p.ExpectedCloseDate = to.ExpectedCloseDate
	}
	return p
}

type ContactPatch struct {
	Name            *string      `json:"name,omitempty"`
	Title           *string      `json:"title,omitempty"`
	Email           *string      `json:"email,omitempty"`
	Phone           *string      `json:"phone,omitempty"`
	Role            *ContactRole `json:"role,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
	LastContactDate *time.Time   `json:"lastContactDate,omitempty"`
}

func (p ContactPatch) Apply(c ContactPerson) ContactPerson {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Role != nil {
		c.Role = *p.Role
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.LastContactDate != nil {
		d := *p.LastContactDate
		c.LastContactDate = &d
	}
	return c
}

// OpportunityPatch lists are left alone when nil; an empty non-nil list clears them.
type OpportunityPatch struct {
	Name              *string            `json:"name,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Stage             *OpportunityStage  `json:"stage,omitempty"`
	Status            *OpportunityStatus `json:"status,omitempty"`
	Value             *float64           `json:"value,omitempty"`
	Probability       *float64           `json:"probability,omitempty"`
	ExpectedCloseDate *time.Time         `json:"expectedCloseDate,omitempty"`
	AccountID         *string            `json:"accountId,omitempty"`
	ContactIDs        []string           `json:"contactIds,omitzero"`
	InitiativeIDs     []string           `json:"initiativeIds,omitzero"`
	Products          []string           `json:"products,omitzero"`
	Notes             *string            `json:"notes,omitempty"`
	LastUpdated       *time.Time         `json:"lastUpdated,omitempty"`
}

// Normalize clamps a patched probability.
func (p *OpportunityPatch) Normalize() {
	if p.Probability != nil {
		v := ClampPercent(*p.Probability)
		p.Probability = &v
	}
}

func (p OpportunityPatch) Apply(o Opportunity) Opportunity {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.Stage != nil {
		o.Stage = *p.Stage
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Value != nil {
		o.Value = *p.Value
	}
	if p.Probability != nil {
		o.Probability = ClampPercent(*p.Probability)
	}
	if p.ExpectedCloseDate != nil {
		o.ExpectedCloseDate = *p.ExpectedCloseDate
	}
	if p.AccountID != nil {
		o.AccountID = *p.AccountID
	}
	if p.ContactIDs != nil {
		o.ContactIDs = append([]string(nil), p.ContactIDs...)
	}
	if p.InitiativeIDs != nil {
		o.InitiativeIDs = append([]string(nil), p.InitiativeIDs...)
	}
	if p.Products != nil {
		o.Products = append([]string(nil), p.Products...)
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	if p.LastUpdated != nil {
		t := *p.LastUpdated
		o.LastUpdated = &t
	}
	return o
}

type InitiativePatch struct {
	Name            *string           `json:"name,omitempty"`
	Description     *string           `json:"description,omitempty"`
	BusinessOutcome *BusinessOutcome  `json:"businessOutcome,omitempty"`
	Status          *InitiativeStatus `json:"status,omitempty"`
	Progress        *float64          `json:"progress,omitempty"`
	StartDate       *time.Time        `json:"startDate,omitempty"`
	EndDate         *time.Time        `json:"endDate,omitempty"`
	Budget          *float64          `json:"budget,omitempty"`
	AccountID       *string           `json:"accountId,omitempty"`
	LastUpdated     *time.Time        `json:"lastUpdated,omitempty"`
}

// Normalize clamps a patched progress.
func (p *InitiativePatch) Normalize() {
	if p.Progress != nil {
		v := ClampPercent(*p.Progress)
		p.Progress = &v
	}
}

func (p InitiativePatch) Apply(i Initiative) Initiative {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.BusinessOutcome != nil {
		i.BusinessOutcome = *p.BusinessOutcome
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
	if p.Progress != nil {
		i.Progress = ClampPercent(*p.Progress)
	}
	if p.StartDate != nil {
		i.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		i.EndDate = *p.EndDate
	}
	if p.Budget != nil {
		b := *p.Budget
		i.Budget = &b
	}
	if p.AccountID != nil {
		i.AccountID = *p.AccountID
	}
	if p.LastUpdated != nil {
		t := *p.LastUpdated
		i.LastUpdated = &t
	}
	return i
}
