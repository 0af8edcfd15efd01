// ABOUTME: Form dialogs for accounts, contacts, opportunities and initiatives
// ABOUTME: Edits a local draft and only touches the stores on submit
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state"
)

const dateLayout = "2006-01-02"

type FormKind int

const (
	AccountForm FormKind = iota
	ContactForm
	OpportunityForm
	InitiativeForm
)

type formField struct {
	label string
	input textinput.Model
}

// Form is a modal dialog over one record. Editing changes only the draft
// held in its inputs.
type Form struct {
	kind   FormKind
	fields []formField
	focus  int

	account     *models.Account
	contact     *models.ContactPerson
	opportunity *models.Opportunity
	initiative  *models.Initiative
	accountID   string

	err string
}

func newForm(kind FormKind, pairs ...string) *Form {
	f := &Form{kind: kind}
	for i := 0; i+1 < len(pairs); i += 2 {
		in := textinput.New()
		in.Placeholder = pairs[i]
		in.CharLimit = 200
		in.SetValue(pairs[i+1])
		f.fields = append(f.fields, formField{label: pairs[i], input: in})
	}
	f.updateFocus()
	return f
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewAccountForm seeds a draft from acct, or from defaults when acct is nil.
func NewAccountForm(acct *models.Account) *Form {
	seed := models.Account{Status: models.AccountProspect, Priority: models.PriorityMedium}
	if acct != nil {
		seed = acct.Clone()
	}
	f := newForm(AccountForm,
		"Name", seed.Name,
		"Ticker", seed.Ticker,
		"Industry", seed.Industry,
		"ARR", formatAmount(seed.ARR),
		"Status", string(seed.Status),
		"Priority", string(seed.Priority),
		"Notes", seed.Notes,
	)
	if acct != nil {
		orig := acct.Clone()
		f.account = &orig
	}
	return f
}

// NewContactForm seeds a draft from c, or from defaults when c is nil.
func NewContactForm(c *models.ContactPerson) *Form {
	seed := models.ContactPerson{Role: models.RoleUser}
	if c != nil {
		seed = c.Clone()
	}
	f := newForm(ContactForm,
		"Name", seed.Name,
		"Title", seed.Title,
		"Email", seed.Email,
		"Phone", seed.Phone,
		"Role", string(seed.Role),
		"Notes", seed.Notes,
	)
	if c != nil {
		orig := c.Clone()
		f.contact = &orig
	}
	return f
}

// NewOpportunityForm seeds a draft from o, or from defaults for a new
// opportunity on accountID when o is nil.
func NewOpportunityForm(o *models.Opportunity, accountID string) *Form {
	seed := models.Opportunity{Stage: models.StageQualification, Status: models.OpportunityActive, AccountID: accountID}
	if o != nil {
		seed = o.Clone()
	}
	closeDate := ""
	if !seed.ExpectedCloseDate.IsZero() {
		closeDate = seed.ExpectedCloseDate.Format(dateLayout)
	}
	f := newForm(OpportunityForm,
		"Name", seed.Name,
		"Description", seed.Description,
		"Value", formatAmount(seed.Value),
		"Probability", formatAmount(seed.Probability),
		"Stage", string(seed.Stage),
		"Close date", closeDate,
		"Account ID", seed.AccountID,
	)
	if o != nil {
		orig := o.Clone()
		f.opportunity = &orig
	}
	f.accountID = seed.AccountID
	return f
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// NewInitiativeForm seeds a draft from i, or from defaults for a new
// initiative on accountID when i is nil.
func NewInitiativeForm(i *models.Initiative, accountID string) *Form {
	seed := models.Initiative{BusinessOutcome: models.OutcomeIncreaseRevenue, Status: models.InitiativeNotStarted, AccountID: accountID}
	if i != nil {
		seed = i.Clone()
	}
	budget := ""
	if seed.Budget != nil {
		budget = formatAmount(*seed.Budget)
	}
	f := newForm(InitiativeForm,
		"Name", seed.Name,
		"Description", seed.Description,
		"Outcome", string(seed.BusinessOutcome),
		"Status", string(seed.Status),
		"Progress", formatAmount(seed.Progress),
		"Start date", formatDate(seed.StartDate),
		"End date", formatDate(seed.EndDate),
		"Budget", budget,
		"Account ID", seed.AccountID,
	)
	if i != nil {
		orig := i.Clone()
		f.initiative = &orig
	}
	f.accountID = seed.AccountID
	return f
}

func (f *Form) Kind() FormKind { return f.kind }

// Err is the form-local error from the last failed submit.
func (f *Form) Err() string { return f.err }

// Editing reports whether the form edits an existing record.
func (f *Form) Editing() bool {
	return f.account != nil || f.contact != nil || f.opportunity != nil || f.initiative != nil
}

func (f *Form) value(label string) string {
	for _, fld := range f.fields {
		if fld.label == label {
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

func (f *Form) set(label, v string) {
	for i := range f.fields {
		if f.fields[i].label == label {
			f.fields[i].input.SetValue(v)
		}
	}
}

func (f *Form) updateFocus() {
	for i := range f.fields {
		if i == f.focus {
			f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
}

// Update moves focus or forwards the key to the focused input.
func (f *Form) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
		f.updateFocus()
		return nil
	case "shift+tab", "up":
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
		f.updateFocus()
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *Form) View() string {
	var s strings.Builder

	verb := "NEW "
	if f.Editing() {
		verb = "EDIT "
	}
	s.WriteString(titleStyle.Render(verb + f.kindName()))
	s.WriteString("\n")

	for i, fld := range f.fields {
		cursor := "  "
		if i == f.focus {
			cursor = "> "
		}
		s.WriteString(fmt.Sprintf("%s%-12s %s\n", cursor, fld.label, fld.input.View()))
	}

	if f.err != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(f.err))
		s.WriteString("\n")
	}

	s.WriteString(renderHelp("Tab: Next field", "Enter: Save", "Esc: Cancel"))
	return s.String()
}

func (f *Form) kindName() string {
	switch f.kind {
	case ContactForm:
		return "CONTACT"
	case OpportunityForm:
		return "OPPORTUNITY"
	case InitiativeForm:
		return "INITIATIVE"
	}
	return "ACCOUNT"
}

func parseAmount(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
	if err != nil {
		return 0, crmerr.Validation(field, "%s must be a number", field)
	}
	return v, nil
}

// AccountDraft builds the account the inputs currently describe.
func (f *Form) AccountDraft() (models.Account, error) {
	var draft models.Account
	if f.account != nil {
		draft = f.account.Clone()
	}
	arr, err := parseAmount("arr", f.value("ARR"))
	if err != nil {
		return draft, err
	}
	status, err := models.ParseAccountStatus(f.value("Status"))
	if err != nil {
		return draft, err
	}
	priority, err := models.ParseAccountPriority(f.value("Priority"))
	if err != nil {
		return draft, err
	}
	draft.Name = f.value("Name")
	draft.Ticker = f.value("Ticker")
	draft.Industry = f.value("Industry")
	draft.ARR = arr
	draft.Status = status
	draft.Priority = priority
	draft.Notes = f.value("Notes")
	return draft, models.Validate(draft)
}

// ContactDraft builds the contact the inputs currently describe.
func (f *Form) ContactDraft() (models.ContactPerson, error) {
	var draft models.ContactPerson
	if f.contact != nil {
		draft = f.contact.Clone()
	}
	role, err := models.ParseContactRole(f.value("Role"))
	if err != nil {
		return draft, err
	}
	draft.Name = f.value("Name")
	draft.Title = f.value("Title")
	draft.Email = f.value("Email")
	draft.Phone = f.value("Phone")
	draft.Role = role
	draft.Notes = f.value("Notes")
	return draft, models.Validate(draft)
}

// OpportunityDraft builds the opportunity the inputs currently describe.
func (f *Form) OpportunityDraft() (models.Opportunity, error) {
	var draft models.Opportunity
	if f.opportunity != nil {
		draft = f.opportunity.Clone()
	} else {
		draft.Status = models.OpportunityActive
	}
	value, err := parseAmount("value", f.value("Value"))
	if err != nil {
		return draft, err
	}
	prob, err := parseAmount("probability", f.value("Probability"))
	if err != nil {
		return draft, err
	}
	stage, err := models.ParseOpportunityStage(f.value("Stage"))
	if err != nil {
		return draft, err
	}
	if raw := f.value("Close date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return draft, crmerr.Validation("expectedCloseDate", "close date must look like %s", dateLayout)
		}
		draft.ExpectedCloseDate = d
	}
	draft.Name = f.value("Name")
	draft.Description = f.value("Description")
	draft.Value = value
	draft.Probability = models.ClampPercent(prob)
	draft.Stage = stage
	draft.AccountID = f.value("Account ID")
	return draft, models.Validate(draft)
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, crmerr.Validation(field, "%s must look like %s", field, dateLayout)
	}
	return d, nil
}

// InitiativeDraft builds the initiative the inputs currently describe.
func (f *Form) InitiativeDraft() (models.Initiative, error) {
	var draft models.Initiative
	if f.initiative != nil {
		draft = f.initiative.Clone()
	}
	outcome, err := models.ParseBusinessOutcome(f.value("Outcome"))
	if err != nil {
		return draft, err
	}
	status, err := models.ParseInitiativeStatus(f.value("Status"))
	if err != nil {
		return draft, err
	}
	progress, err := parseAmount("progress", f.value("Progress"))
	if err != nil {
		return draft, err
	}
	start, err := parseDate("startDate", f.value("Start date"))
	if err != nil {
		return draft, err
	}
	end, err := parseDate("endDate", f.value("End date"))
	if err != nil {
		return draft, err
	}
	draft.Budget = nil
	if raw := f.value("Budget"); raw != "" {
		b, err := parseAmount("budget", raw)
		if err != nil {
			return draft, err
		}
		draft.Budget = &b
	}
	draft.Name = f.value("Name")
	draft.Description = f.value("Description")
	draft.BusinessOutcome = outcome
	draft.Status = status
	draft.Progress = models.ClampPercent(progress)
	draft.StartDate = start
	draft.EndDate = end
	draft.AccountID = f.value("Account ID")
	return draft, models.Validate(draft)
}

// Submit sends the draft to the matching store. On failure the form keeps
// its draft and records the message in Err.
func (f *Form) Submit(ctx context.Context, accounts *state.AccountStore, portfolio *state.PortfolioStore) error {
	err := f.submit(ctx, accounts, portfolio)
	if err != nil {
		f.err = crmerr.Message(err, "Failed to save")
		return err
	}
	f.err = ""
	return nil
}

func (f *Form) submit(ctx context.Context, accounts *state.AccountStore, portfolio *state.PortfolioStore) error {
	switch f.kind {
	case AccountForm:
		draft, err := f.AccountDraft()
		if err != nil {
			return err
		}
		if f.account != nil {
			_, err = accounts.Update(ctx, f.account.ID, f.account.Diff(draft))
			return err
		}
		_, err = accounts.Add(ctx, draft)
		return err

	case ContactForm:
		draft, err := f.ContactDraft()
		if err != nil {
			return err
		}
		if f.contact != nil {
			_, err = portfolio.UpdateContact(ctx, f.contact.ID, models.ContactPatch{
				Name:  &draft.Name,
				Title: &draft.Title,
				Email: &draft.Email,
				Phone: &draft.Phone,
				Role:  &draft.Role,
				Notes: &draft.Notes,
			})
			return err
		}
		_, err = portfolio.AddContact(ctx, draft)
		return err

	case OpportunityForm:
		draft, err := f.OpportunityDraft()
		if err != nil {
			return err
		}
		if f.opportunity != nil {
			patch := models.OpportunityPatch{
				Name:        &draft.Name,
				Description: &draft.Description,
				Value:       &draft.Value,
				Probability: &draft.Probability,
				Stage:       &draft.Stage,
				AccountID:   &draft.AccountID,
			}
			if !draft.ExpectedCloseDate.IsZero() {
				patch.ExpectedCloseDate = &draft.ExpectedCloseDate
			}
			_, err = portfolio.UpdateOpportunity(ctx, f.opportunity.ID, patch)
			return err
		}
		_, err = portfolio.AddOpportunity(ctx, draft)
		return err

	case InitiativeForm:
		draft, err := f.InitiativeDraft()
		if err != nil {
			return err
		}
		if f.initiative != nil {
			patch := models.InitiativePatch{
				Name:            &draft.Name,
				Description:     &draft.Description,
				BusinessOutcome: &draft.BusinessOutcome,
				Status:          &draft.Status,
				Progress:        &draft.Progress,
				Budget:          draft.Budget,
				AccountID:       &draft.AccountID,
			}
			if !draft.StartDate.IsZero() {
				patch.StartDate = &draft.StartDate
			}
			if !draft.EndDate.IsZero() {
				patch.EndDate = &draft.EndDate
			}
			_, err = portfolio.UpdateInitiative(ctx, f.initiative.ID, patch)
			return err
		}
		_, err = portfolio.AddInitiative(ctx, draft)
		return err
	}
	return fmt.Errorf("unknown form kind %d", f.kind)
}
