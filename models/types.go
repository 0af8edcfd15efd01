// ABOUTME: Data models for account-management entities
// ABOUTME: Defines Account, ContactPerson, Opportunity and Initiative records
package models

import (
	"time"
)

type Account struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name" validate:"required"`
	Ticker                  string          `json:"ticker,omitempty"`
	Industry                string          `json:"industry" validate:"required"`
	ARR                     float64         `json:"arr" validate:"gte=0"`
	Status                  AccountStatus   `json:"status" validate:"required,enum"`
	Priority                AccountPriority `json:"priority" validate:"required,enum"`
	TransformationReadiness bool            `json:"transformationReadiness"`
	Notes                   string          `json:"notes,omitempty"`
	Contacts                []ContactPerson `json:"contacts,omitempty" validate:"-"`
	Opportunities           []Opportunity   `json:"opportunities,omitempty" validate:"-"`
	ExpectedCloseDate       *time.Time      `json:"expectedCloseDate,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
	LastUpdated             time.Time       `json:"lastUpdated"`
}

// ContactPerson is the single canonical contact shape used by every view.
type ContactPerson struct {
	ID              string      `json:"id"`
	Name            string      `json:"name" validate:"required"`
	Title           string      `json:"title" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Phone           string      `json:"phone,omitempty"`
	Role            ContactRole `json:"role" validate:"required,enum"`
	Notes           string      `json:"notes,omitempty"`
	LastContactDate *time.Time  `json:"lastContactDate,omitempty"`
}

type Opportunity struct {
	ID                string            `json:"id"`
	Name              string            `json:"name" validate:"required"`
	Description       string            `json:"description"`
	Stage             OpportunityStage  `json:"stage" validate:"required,enum"`
	Status            OpportunityStatus `json:"status" validate:"required,enum"`
	Value             float64           `json:"value" validate:"gte=0"`
	Probability       float64           `json:"probability" validate:"gte=0,lte=100"`
	ExpectedCloseDate time.Time         `json:"expectedCloseDate"`
	AccountID         string            `json:"accountId" validate:"required"`
	ContactIDs        []string          `json:"contactIds"`
	InitiativeIDs     []string          `json:"initiativeIds"`
	Products          []string          `json:"products"`
	Notes             string            `json:"notes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	LastUpdated       *time.Time        `json:"lastUpdated,omitempty"`
}

type Initiative struct {
	ID              string           `json:"id"`
	Name            string           `json:"name" validate:"required"`
	Description     string           `json:"description"`
	BusinessOutcome BusinessOutcome  `json:"businessOutcome" validate:"required,enum"`
	Status          InitiativeStatus `json:"status" validate:"required,enum"`
	Progress        float64          `json:"progress" validate:"gte=0,lte=100"`
	StartDate       time.Time        `json:"startDate"`
	EndDate         time.Time        `json:"endDate" validate:"omitempty,gtefield=StartDate"`
	Budget          *float64         `json:"budget,omitempty"`
	ContactIDs      []string         `json:"contactIds"`
	OpportunityIDs  []string         `json:"opportunityIds"`
	AccountID       string           `json:"accountId" validate:"required"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	LastUpdated     *time.Time       `json:"lastUpdated,omitempty"`
}

// ClampPercent bounds a probability or progress value to [0,100].
func ClampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Normalize clamps the probability of an opportunity in place.
func (o *Opportunity) Normalize() {
	o.Probability = ClampPercent(o.Probability)
}

// Normalize clamps the progress of an initiative in place.
func (i *Initiative) Normalize() {
	i.Progress = ClampPercent(i.Progress)
}

// HasContact reports whether the initiative references contactID.
func (i Initiative) HasContact(contactID string) bool {
	for _, id := range i.ContactIDs {
		if id == contactID {
			return true
		}
	}
	return false
}

// HasOpportunity reports whether the initiative references opportunityID.
func (i Initiative) HasOpportunity(opportunityID string) bool {
	for _, id := range i.OpportunityIDs {
		if id == opportunityID {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Clone returns a copy that shares no pointers or backing arrays with c.
func (c ContactPerson) Clone() ContactPerson {
	c.LastContactDate = cloneTime(c.LastContactDate)
	return c
}

// Clone returns a copy that shares no pointers or backing arrays with o.
func (o Opportunity) Clone() Opportunity {
	o.ContactIDs = cloneStrings(o.ContactIDs)
	o.InitiativeIDs = cloneStrings(o.InitiativeIDs)
	o.Products = cloneStrings(o.Products)
	o.LastUpdated = cloneTime(o.LastUpdated)
	return o
}

// Clone returns a copy that shares no pointers or backing arrays with i.
func (i Initiative) Clone() Initiative {
	i.ContactIDs = cloneStrings(i.ContactIDs)
	i.OpportunityIDs = cloneStrings(i.OpportunityIDs)
	if i.Budget != nil {
		b := *i.Budget
		i.Budget = &b
	}
	i.LastUpdated = cloneTime(i.LastUpdated)
	return i
}

// Clone returns a copy that shares no pointers or backing arrays with a,
// including its denormalized contacts and opportunities.
func (a Account) Clone() Account {
	if a.Contacts != nil {
		contacts := make([]ContactPerson, len(a.Contacts))
		for i, c := range a.Contacts {
			contacts[i] = c.Clone()
		}
		a.Contacts = contacts
	}
	if a.Opportunities != nil {
		opps := make([]Opportunity, len(a.Opportunities))
		for i, o := range a.Opportunities {
			opps[i] = o.Clone()
		}
		a.Opportunities = opps
	}
	a.ExpectedCloseDate = cloneTime(a.ExpectedCloseDate)
	return a
}
