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

const nudge = 20

func (m Model) renderStakeholderView() string {
	contacts := m.portfolio.Snapshot().Contacts

	var left strings.Builder
	left.WriteString(lipgloss.NewStyle().Bold(true).Render("Contacts"))
	left.WriteString("\n")
	if len(contacts) == 0 {
		left.WriteString("(none)\n")
	}
	for i, c := range contacts {
		line := fmt.Sprintf("%s · %s", c.Name, c.Role)
		if i == m.contactRow {
			line = selectedStyle.Render("▸ " + line)
		}
		left.WriteString(line)
		left.WriteString("\n")
	}

	snap := m.editor.Snapshot()
	var right strings.Builder
	right.WriteString(lipgloss.NewStyle().Bold(true).Render("Stakeholder map"))
	right.WriteString("\n")
	if len(snap.Nodes) == 0 {
		right.WriteString("Press Enter to drop the selected contact onto the map\n")
	}
	for i, n := range snap.Nodes {
		marker := "  "
		if n.ID == m.connectSource {
			marker = "⇢ "
		}
		line := fmt.Sprintf("%s%s (%s) @ %.0f,%.0f", marker, n.Label(), n.Subtitle(), n.Position.X, n.Position.Y)
		if i == m.nodeIndex {
			line = selectedStyle.Render(line)
		}
		right.WriteString(line)
		right.WriteString("\n")
	}
	if len(snap.Edges) > 0 {
		right.WriteString("\n")
	}
	for i, e := range snap.Edges {
		src, _ := snap.Node(e.Source)
		dst, _ := snap.Node(e.Target)
		line := fmt.Sprintf("%s → %s [%s]", src.Label(), dst.Label(), e.Relationship)
		if i == m.edgeIndex {
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
	s.WriteString(renderHelp("j/k: Contact", "Enter: Drop", "[/]: Node", "HJKL: Nudge", "c: Connect", "{/}: Edge", "r: Relabel", "Del: Remove", "p: Preview", "n/e: Contact form"))
	return s.String()
}

func (m Model) selectedNode() (graph.Node, bool) {
	nodes := m.editor.Snapshot().Nodes
	if m.nodeIndex < 0 || m.nodeIndex >= len(nodes) {
		return graph.Node{}, false
	}
	return nodes[m.nodeIndex], true
}

func (m Model) selectedEdge() (graph.Edge, bool) {
	edges := m.editor.Snapshot().Edges
	if m.edgeIndex < 0 || m.edgeIndex >= len(edges) {
		return graph.Edge{}, false
	}
	return edges[m.edgeIndex], true
}

func (m Model) selectedContact() (models.ContactPerson, bool) {
	contacts := m.portfolio.Snapshot().Contacts
	if m.contactRow < 0 || m.contactRow >= len(contacts) {
		return models.ContactPerson{}, false
	}
	return contacts[m.contactRow], true
}

func nextRelationship(r graph.Relationship) graph.Relationship {
	all := graph.Relationships()
	for i, v := range all {
		if v == r {
			return all[(i+1)%len(all)]
		}
	}
	return graph.DefaultRelationship
}

func nudgeNode(e *graph.Editor, id string, dx, dy float64) {
	e.ApplyNodeChanges([]graph.NodeChange{{
		Type:  graph.ChangePosition,
		ID:    id,
		Delta: graph.Position{X: dx, Y: dy},
	}})
}

func (m Model) nudgeSelected(dx, dy float64) {
	if n, ok := m.selectedNode(); ok {
		nudgeNode(m.editor, n.ID, dx, dy)
	}
}

func (m Model) handleStakeholderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.editor.Snapshot()

	switch msg.String() {
	case "up", "k":
		if m.contactRow > 0 {
			m.contactRow--
		}
	case "down", "j":
		if m.contactRow < len(m.portfolio.Snapshot().Contacts)-1 {
			m.contactRow++
		}
	case "enter":
		if c, ok := m.selectedContact(); ok {
			_, _ = m.editor.Drop(graph.DropCommand{Contact: &c, Pointer: graph.GridPosition(len(snap.Nodes))})
		}
	case "]":
		if len(snap.Nodes) > 0 {
			m.nodeIndex = (m.nodeIndex + 1) % len(snap.Nodes)
		}
	case "[":
		if len(snap.Nodes) > 0 {
			m.nodeIndex = (m.nodeIndex + len(snap.Nodes) - 1) % len(snap.Nodes)
		}
	case "H":
		m.nudgeSelected(-nudge, 0)
	case "L":
		m.nudgeSelected(nudge, 0)
	case "K":
		m.nudgeSelected(0, -nudge)
	case "J":
		m.nudgeSelected(0, nudge)
	case "c":
		n, ok := m.selectedNode()
		if !ok {
			break
		}
		if m.connectSource == "" {
			m.connectSource = n.ID
			break
		}
		if _, _, err := m.editor.Connect(graph.Connection{Source: m.connectSource, Target: n.ID}); err == nil {
			m.edgeIndex = len(m.editor.Snapshot().Edges) - 1
		}
		m.connectSource = ""
	case "}":
		if len(snap.Edges) > 0 {
			m.edgeIndex = (m.edgeIndex + 1) % len(snap.Edges)
		}
	case "{":
		if len(snap.Edges) > 0 {
			m.edgeIndex = (m.edgeIndex + len(snap.Edges) - 1) % len(snap.Edges)
		}
	case "r":
		if e, ok := m.selectedEdge(); ok {
			_ = m.editor.Relabel(e.ID, nextRelationship(e.Relationship))
		}
	case "delete", "backspace":
		if n, ok := m.selectedNode(); ok {
			m.editor.ApplyNodeChanges([]graph.NodeChange{{Type: graph.ChangeRemove, ID: n.ID}})
			if m.connectSource == n.ID {
				m.connectSource = ""
			}
			if m.nodeIndex > 0 {
				m.nodeIndex--
			}
			m.edgeIndex = 0
		}
	case "p":
		dot, err := viz.RenderMap(context.Background(), snap)
		if err != nil {
			dot = err.Error()
		}
		m.preview = dot
		m.viewMode = ViewPreview
	case "n":
		m.form = NewContactForm(nil)
		m.viewMode = ViewForm
	case "e":
		if c, ok := m.selectedContact(); ok {
			if fresh, err := m.portfolio.FetchContact(context.Background(), c.ID); err == nil {
				c = fresh
			}
			m.form = NewContactForm(&c)
			m.viewMode = ViewForm
		}
	}
	return m, nil
}
