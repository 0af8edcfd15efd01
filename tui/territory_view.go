package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/keyaccounts/graph"
	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/viz"
)

func (m Model) renderTerritoryView() string {
	accounts := m.accounts.Snapshot().Accounts

	var left strings.Builder
	left.WriteString(lipgloss.NewStyle().Bold(true).Render("Accounts"))
	left.WriteString("\n")
	if len(accounts) == 0 {
		left.WriteString("(none)\n")
	}
	for i, a := range accounts {
		line := fmt.Sprintf("%s · %s", a.Name, a.Status)
		if i == m.territoryRow {
			line = selectedStyle.Render("▸ " + line)
		}
		left.WriteString(line)
		left.WriteString("\n")
	}

	snap := m.territory.Snapshot()
	var right strings.Builder
	right.WriteString(lipgloss.NewStyle().Bold(true).Render("Territory map"))
	right.WriteString("\n")
	if len(snap.Nodes) == 0 {
		right.WriteString("Press Enter to drop the selected account onto the map\n")
	}
	for i, n := range snap.Nodes {
		line := fmt.Sprintf("%s (%s) @ %.0f,%.0f", n.Label(), n.Subtitle(), n.Position.X, n.Position.Y)
		if i == m.territoryNode {
			line = selectedStyle.Render(line)
		}
		right.WriteString(line)
		right.WriteString("\n")
	}

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		columnStyle.Width(32).Render(left.String()),
		activeColumnStyle.Width(60).Render(right.String()),
	))
	s.WriteString("\n")
	s.WriteString(renderHelp("j/k: Account", "Enter: Drop", "[/]: Node", "HJKL: Nudge", "Del: Remove", "p: Preview"))
	return s.String()
}

func (m Model) selectedTerritoryAccount() (models.Account, bool) {
	accounts := m.accounts.Snapshot().Accounts
	if m.territoryRow < 0 || m.territoryRow >= len(accounts) {
		return models.Account{}, false
	}
	return accounts[m.territoryRow], true
}

func (m Model) selectedTerritoryNode() (graph.Node, bool) {
	nodes := m.territory.Snapshot().Nodes
	if m.territoryNode < 0 || m.territoryNode >= len(nodes) {
		return graph.Node{}, false
	}
	return nodes[m.territoryNode], true
}

func (m Model) nudgeTerritory(dx, dy float64) {
	if n, ok := m.selectedTerritoryNode(); ok {
		nudgeNode(m.territory, n.ID, dx, dy)
	}
}

func (m Model) handleTerritoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.territory.Snapshot()

	switch msg.String() {
	case "up", "k":
		if m.territoryRow > 0 {
			m.territoryRow--
		}
	case "down", "j":
		if m.territoryRow < len(m.accounts.Snapshot().Accounts)-1 {
			m.territoryRow++
		}
	case "enter":
		if a, ok := m.selectedTerritoryAccount(); ok {
			// Dropping an account that is already on the map is a no-op.
			_, _ = m.territory.Drop(graph.DropCommand{Account: &a, Pointer: graph.GridPosition(len(snap.Nodes))})
		}
	case "]":
		if len(snap.Nodes) > 0 {
			m.territoryNode = (m.territoryNode + 1) % len(snap.Nodes)
		}
	case "[":
		if len(snap.Nodes) > 0 {
			m.territoryNode = (m.territoryNode + len(snap.Nodes) - 1) % len(snap.Nodes)
		}
	case "H":
		m.nudgeTerritory(-nudge, 0)
	case "L":
		m.nudgeTerritory(nudge, 0)
	case "K":
		m.nudgeTerritory(0, -nudge)
	case "J":
		m.nudgeTerritory(0, nudge)
	case "delete", "backspace":
		if n, ok := m.selectedTerritoryNode(); ok {
			m.territory.ApplyNodeChanges([]graph.NodeChange{{Type: graph.ChangeRemove, ID: n.ID}})
			if m.territoryNode > 0 {
				m.territoryNode--
			}
		}
	case "p":
		dot, err := viz.RenderMap(context.Background(), snap)
		if err != nil {
			dot = err.Error()
		}
		m.preview = dot
		m.viewMode = ViewPreview
	}
	return m, nil
}
