package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/state"
)

// linkCandidate is one contact or opportunity that can be linked to the
// selected initiative.
type linkCandidate struct {
	id          string
	label       string
	opportunity bool
	linked      bool
}

func (m Model) selectedInitiative() (models.Initiative, bool) {
	items := m.portfolio.Snapshot().Initiatives
	if m.initiativeRow < 0 || m.initiativeRow >= len(items) {
		return models.Initiative{}, false
	}
	return items[m.initiativeRow], true
}

// linkCandidates lists every contact, then the opportunities of the
// initiative's account.
func linkCandidates(snap state.PortfolioSnapshot, ini models.Initiative) []linkCandidate {
	var out []linkCandidate
	for _, c := range snap.Contacts {
		out = append(out, linkCandidate{
			id:     c.ID,
			label:  fmt.Sprintf("Contact: %s (%s)", c.Name, c.Title),
			linked: ini.HasContact(c.ID),
		})
	}
	for _, o := range snap.OpportunitiesForAccount(ini.AccountID) {
		out = append(out, linkCandidate{
			id:          o.ID,
			label:       fmt.Sprintf("Opportunity: %s", o.Name),
			opportunity: true,
			linked:      ini.HasOpportunity(o.ID),
		})
	}
	return out
}

func (m Model) renderInitiativesView() string {
	snap := m.portfolio.Snapshot()
	if snap.Loading {
		return "Loading initiatives...\n"
	}

	var left strings.Builder
	left.WriteString(lipgloss.NewStyle().Bold(true).Render("Initiatives"))
	left.WriteString("\n")
	if len(snap.Initiatives) == 0 {
		left.WriteString("(none, n to add)\n")
	}
	for i, ini := range snap.Initiatives {
		line := fmt.Sprintf("%s · %s · %s · %.0f%%", ini.Name, ini.BusinessOutcome, ini.Status, ini.Progress)
		if i == m.initiativeRow {
			line = selectedStyle.Render("▸ " + line)
		}
		left.WriteString(line)
		left.WriteString("\n")
	}
	left.WriteString(fmt.Sprintf("\nAverage progress %.0f%%\n", models.AverageProgress(snap.Initiatives)))

	var right strings.Builder
	right.WriteString(lipgloss.NewStyle().Bold(true).Render("Links"))
	right.WriteString("\n")
	if ini, ok := m.selectedInitiative(); ok {
		if ini.Description != "" {
			right.WriteString(ini.Description)
			right.WriteString("\n\n")
		}
		for i, c := range linkCandidates(snap, ini) {
			box := "[ ]"
			if c.linked {
				box = "[x]"
			}
			line := box + " " + c.label
			if i == m.linkRow {
				line = selectedStyle.Render(line)
			}
			right.WriteString(line)
			right.WriteString("\n")
		}
	}

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		columnStyle.Width(46).Render(left.String()),
		activeColumnStyle.Width(46).Render(right.String()),
	))
	s.WriteString("\n")
	s.WriteString(renderHelp("j/k: Initiative", "J/K: Link", "Space: Link/unlink", "f: Selected account only", "n: New", "e: Edit", "d: Delete"))
	return s.String()
}

// toggleLink links or unlinks the candidate under the cursor.
func (m Model) toggleLink() {
	ini, ok := m.selectedInitiative()
	if !ok {
		return
	}
	candidates := linkCandidates(m.portfolio.Snapshot(), ini)
	if m.linkRow < 0 || m.linkRow >= len(candidates) {
		return
	}
	c := candidates[m.linkRow]
	ctx := context.Background()
	switch {
	case c.opportunity && c.linked:
		_ = m.portfolio.RemoveOpportunityFromInitiative(ctx, ini.ID, c.id)
	case c.opportunity:
		_ = m.portfolio.AddOpportunityToInitiative(ctx, ini.ID, c.id)
	case c.linked:
		_ = m.portfolio.RemoveContactFromInitiative(ctx, ini.ID, c.id)
	default:
		_ = m.portfolio.AddContactToInitiative(ctx, ini.ID, c.id)
	}
}

func (m Model) handleInitiativeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.portfolio.Snapshot()

	switch msg.String() {
	case "up", "k":
		if m.initiativeRow > 0 {
			m.initiativeRow--
			m.linkRow = 0
		}
	case "down", "j":
		if m.initiativeRow < len(snap.Initiatives)-1 {
			m.initiativeRow++
			m.linkRow = 0
		}
	case "K":
		if m.linkRow > 0 {
			m.linkRow--
		}
	case "J":
		if ini, ok := m.selectedInitiative(); ok && m.linkRow < len(linkCandidates(snap, ini))-1 {
			m.linkRow++
		}
	case " ":
		m.toggleLink()
	case "f":
		if a, ok := m.selectedAccount(); ok {
			_ = m.portfolio.LoadInitiativesByAccount(context.Background(), a.ID)
			m.initiativeRow, m.linkRow = 0, 0
		}
	case "n":
		accountID := ""
		if a, ok := m.selectedAccount(); ok {
			accountID = a.ID
		}
		m.form = NewInitiativeForm(nil, accountID)
		m.viewMode = ViewForm
	case "e":
		if ini, ok := m.selectedInitiative(); ok {
			m.form = NewInitiativeForm(&ini, ini.AccountID)
			m.viewMode = ViewForm
		}
	case "d":
		if ini, ok := m.selectedInitiative(); ok {
			m.deleteKind = deleteInitiative
			m.deleteID = ini.ID
			m.deleteName = ini.Name
			m.viewMode = ViewConfirmDelete
		}
	}
	return m, nil
}
