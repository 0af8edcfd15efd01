package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/viz"
)

func (m Model) boardColumns() ([]models.OpportunityStage, map[models.OpportunityStage][]models.Opportunity) {
	return models.Stages(), models.ByStage(m.portfolio.Snapshot().Opportunities)
}

func (m Model) renderBoardView() string {
	snap := m.portfolio.Snapshot()
	if snap.Loading {
		return "Loading pipeline...\n"
	}

	stages, columns := m.boardColumns()
	width := m.width/len(stages) - 4
	if width < 14 {
		width = 14
	}

	var rendered []string
	for ci, stage := range stages {
		var col strings.Builder
		cards := columns[stage]
		var total float64
		for _, o := range cards {
			total += o.Value
		}
		col.WriteString(lipgloss.NewStyle().Bold(true).Render(string(stage)))
		col.WriteString(fmt.Sprintf("\n%d · %s\n", len(cards), viz.FormatMoney(total)))
		for ri, o := range cards {
			line := fmt.Sprintf("%s\n  %s %.0f%%", o.Name, viz.FormatMoney(o.Value), o.Probability)
			if ci == m.boardColumn && ri == m.boardRow {
				line = selectedStyle.Render("▸ " + line)
			}
			col.WriteString(line)
			col.WriteString("\n")
		}

		style := columnStyle
		if ci == m.boardColumn {
			style = activeColumnStyle
		}
		rendered = append(rendered, style.Width(width).Render(col.String()))
	}

	summary := models.SummarizePipeline(snap.Opportunities)

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Pipeline %s · weighted %s", viz.FormatMoney(summary.TotalValue), viz.FormatMoney(summary.WeightedValue)))
	s.WriteString("\n")
	s.WriteString(renderHelp("←/→: Column", "↑/↓: Card", "H/L: Move card", "n: New", "e: Edit", "d: Delete", "Tab: Switch", "q: Quit"))
	return s.String()
}

func (m Model) selectedOpportunity() (models.Opportunity, bool) {
	stages, columns := m.boardColumns()
	if m.boardColumn < 0 || m.boardColumn >= len(stages) {
		return models.Opportunity{}, false
	}
	cards := columns[stages[m.boardColumn]]
	if m.boardRow < 0 || m.boardRow >= len(cards) {
		return models.Opportunity{}, false
	}
	return cards[m.boardRow], true
}

// moveCard sends only the new stage; the card follows once the store merges
// the returned record.
func (m Model) moveCard(delta int) Model {
	o, ok := m.selectedOpportunity()
	if !ok {
		return m
	}
	stages := models.Stages()
	target := m.boardColumn + delta
	if target < 0 || target >= len(stages) {
		return m
	}

	stage := stages[target]
	if _, err := m.portfolio.UpdateOpportunity(context.Background(), o.ID, models.OpportunityPatch{Stage: &stage}); err != nil {
		return m
	}

	m.boardColumn = target
	_, columns := m.boardColumns()
	m.boardRow = 0
	for i, c := range columns[stage] {
		if c.ID == o.ID {
			m.boardRow = i
		}
	}
	return m
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	stages, columns := m.boardColumns()

	switch msg.String() {
	case "left", "h":
		if m.boardColumn > 0 {
			m.boardColumn--
			m.boardRow = 0
		}
	case "right", "l":
		if m.boardColumn < len(stages)-1 {
			m.boardColumn++
			m.boardRow = 0
		}
	case "up", "k":
		if m.boardRow > 0 {
			m.boardRow--
		}
	case "down", "j":
		if m.boardRow < len(columns[stages[m.boardColumn]])-1 {
			m.boardRow++
		}
	case "H":
		m = m.moveCard(-1)
	case "L":
		m = m.moveCard(1)
	case "n":
		accountID := ""
		if a, ok := m.selectedAccount(); ok {
			accountID = a.ID
		}
		m.form = NewOpportunityForm(nil, accountID)
		m.viewMode = ViewForm
	case "e":
		if o, ok := m.selectedOpportunity(); ok {
			// Seed the draft from the latest server copy when it can be read.
			if fresh, err := m.portfolio.FetchOpportunity(context.Background(), o.ID); err == nil {
				o = fresh
			}
			m.form = NewOpportunityForm(&o, o.AccountID)
			m.viewMode = ViewForm
		}
	case "d":
		if o, ok := m.selectedOpportunity(); ok {
			m.deleteKind = deleteOpportunity
			m.deleteID = o.ID
			m.deleteName = o.Name
			m.viewMode = ViewConfirmDelete
		}
	}
	return m, nil
}
