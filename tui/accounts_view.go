package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/viz"
)

func (m Model) renderAccountsView() string {
	var s strings.Builder

	snap := m.accounts.Snapshot()
	if snap.Loading {
		s.WriteString("Loading accounts...\n")
		return s.String()
	}

	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Industry", Width: 16},
		{Title: "ARR", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Priority", Width: 8},
		{Title: "Ready", Width: 5},
	}

	var rows []table.Row
	for _, a := range snap.Accounts {
		ready := "·"
		if a.TransformationReadiness {
			ready = "✓"
		}
		rows = append(rows, table.Row{
			a.Name,
			a.Industry,
			viz.FormatMoney(a.ARR),
			string(a.Status),
			string(a.Priority),
			ready,
		})
	}

	height := m.height - 12
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	s.WriteString(t.View())
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%d accounts", len(rows)))
	s.WriteString("\n")
	s.WriteString(renderHelp("↑/↓: Navigate", "r: Toggle readiness", "n: New", "e: Edit", "d: Delete", "Tab: Switch", "q: Quit"))
	return s.String()
}

func (m Model) selectedAccount() (models.Account, bool) {
	accts := m.accounts.Snapshot().Accounts
	if m.selectedRow < 0 || m.selectedRow >= len(accts) {
		return models.Account{}, false
	}
	return accts[m.selectedRow], true
}

func (m Model) handleAccountKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.accounts.Snapshot().Accounts)

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case "r":
		if a, ok := m.selectedAccount(); ok {
			// Failures land in the store's error slot and show as the banner.
			_, _ = m.accounts.ToggleReadiness(context.Background(), a.ID)
		}
	case "n":
		m.form = NewAccountForm(nil)
		m.viewMode = ViewForm
	case "e":
		if a, ok := m.selectedAccount(); ok {
			m.form = NewAccountForm(&a)
			m.viewMode = ViewForm
		}
	case "d":
		if a, ok := m.selectedAccount(); ok {
			m.deleteKind = deleteAccount
			m.deleteID = a.ID
			m.deleteName = a.Name
			m.viewMode = ViewConfirmDelete
		}
	}
	return m, nil
}

func (m Model) renderConfirmDeleteView() string {
	title := "DELETE ACCOUNT"
	switch m.deleteKind {
	case deleteOpportunity:
		title = "DELETE OPPORTUNITY"
	case deleteInitiative:
		title = "DELETE INITIATIVE"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Delete %q? This cannot be undone.\n", m.deleteName))
	s.WriteString(renderHelp("y: Confirm", "n/Esc: Cancel"))
	return s.String()
}

// confirmDelete removes the pending record. Failures show as the banner.
func (m Model) confirmDelete() Model {
	ctx := context.Background()
	switch m.deleteKind {
	case deleteOpportunity:
		_ = m.portfolio.DeleteOpportunity(ctx, m.deleteID)
		m.boardRow = 0
	case deleteInitiative:
		_ = m.portfolio.DeleteInitiative(ctx, m.deleteID)
		if n := len(m.portfolio.Snapshot().Initiatives); m.initiativeRow >= n && n > 0 {
			m.initiativeRow = n - 1
		}
		m.linkRow = 0
	default:
		_ = m.accounts.Remove(ctx, m.deleteID)
		if n := len(m.accounts.Snapshot().Accounts); m.selectedRow >= n && n > 0 {
			m.selectedRow = n - 1
		}
	}
	return m
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m = m.confirmDelete()
		m.deleteID, m.deleteName = "", ""
		m.viewMode = ViewList
	case "n", "N", "esc":
		m.deleteID, m.deleteName = "", ""
		m.viewMode = ViewList
	}
	return m, nil
}
