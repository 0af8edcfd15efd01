// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Hosts the account table, opportunity board, initiatives and both map editors over the shared stores
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/keyaccounts/graph"
	"github.com/harperreed/keyaccounts/state"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewForm
	ViewConfirmDelete
	ViewPreview
)

// Tab is one of the top-level screens.
type Tab int

const (
	TabAccounts Tab = iota
	TabBoard
	TabStakeholders
	TabInitiatives
	TabTerritory
)

var tabNames = []string{"Accounts", "Pipeline", "Stakeholders", "Initiatives", "Territory"}

// deleteTarget says which record the confirm dialog removes.
type deleteTarget int

const (
	deleteAccount deleteTarget = iota
	deleteOpportunity
	deleteInitiative
)

// Model is the main bubbletea model
type Model struct {
	accounts  *state.AccountStore
	portfolio *state.PortfolioStore

	viewMode ViewMode
	tab      Tab

	// Account table
	selectedRow int

	// Opportunity board
	boardColumn int
	boardRow    int

	// Stakeholder map
	editor        *graph.Editor
	contactRow    int
	nodeIndex     int
	edgeIndex     int
	connectSource string

	// Initiatives
	initiativeRow int
	linkRow       int

	// Territory map
	territory     *graph.Editor
	territoryRow  int
	territoryNode int

	form       *Form
	deleteKind deleteTarget
	deleteID   string
	deleteName string
	preview    string

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(accounts *state.AccountStore, portfolio *state.PortfolioStore) Model {
	return Model{
		accounts:  accounts,
		portfolio: portfolio,
		viewMode:  ViewList,
		tab:       TabAccounts,
		editor:    graph.NewStakeholderMap(),
		territory: graph.NewTerritoryMap(),
		width:     100,
		height:    30,
	}
}

// Run starts the full-screen program.
func Run(accounts *state.AccountStore, portfolio *state.PortfolioStore) error {
	p := tea.NewProgram(NewModel(accounts, portfolio), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("KEY ACCOUNTS"))
	s.WriteString("\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if banner := m.bannerText(); banner != "" {
		s.WriteString(bannerStyle.Render("⚠ " + banner + "  (x to dismiss)"))
		s.WriteString("\n\n")
	}

	switch m.viewMode {
	case ViewForm:
		s.WriteString(m.form.View())
	case ViewConfirmDelete:
		s.WriteString(m.renderConfirmDeleteView())
	case ViewPreview:
		s.WriteString(m.renderPreview())
	default:
		switch m.tab {
		case TabAccounts:
			s.WriteString(m.renderAccountsView())
		case TabBoard:
			s.WriteString(m.renderBoardView())
		case TabStakeholders:
			s.WriteString(m.renderStakeholderView())
		case TabInitiatives:
			s.WriteString(m.renderInitiativesView())
		case TabTerritory:
			s.WriteString(m.renderTerritoryView())
		}
	}
	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// bannerText is the page-level error from whichever store has one.
func (m Model) bannerText() string {
	if msg := m.accounts.Snapshot().Err; msg != "" {
		return msg
	}
	return m.portfolio.Snapshot().Err
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Forms own every other key, including q.
	if m.viewMode == ViewForm {
		return m.handleFormKeys(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "x":
		m.accounts.ClearError()
		m.portfolio.ClearError()
		return m, nil
	case "R":
		ctx := context.Background()
		_ = m.accounts.Refresh(ctx)
		_ = m.portfolio.Refresh(ctx)
		return m, nil
	}

	switch m.viewMode {
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewPreview:
		if msg.String() == "esc" || msg.String() == "p" {
			m.viewMode = ViewList
			m.preview = ""
		}
		return m, nil
	}

	if msg.String() == "tab" {
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, nil
	}

	switch m.tab {
	case TabAccounts:
		return m.handleAccountKeys(msg)
	case TabBoard:
		return m.handleBoardKeys(msg)
	case TabStakeholders:
		return m.handleStakeholderKeys(msg)
	case TabInitiatives:
		return m.handleInitiativeKeys(msg)
	case TabTerritory:
		return m.handleTerritoryKeys(msg)
	}
	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.viewMode = ViewList
		return m, nil
	case "enter":
		// A failed submit keeps the dialog and its draft open.
		if err := m.form.Submit(context.Background(), m.accounts, m.portfolio); err == nil {
			m.form = nil
			m.viewMode = ViewList
		}
		return m, nil
	}
	return m, m.form.Update(msg)
}

func (m Model) renderPreview() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("DOT PREVIEW"))
	s.WriteString("\n")
	s.WriteString(previewStyle.Render(m.preview))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Esc: Back"))
	return s.String()
}

func renderHelp(keys ...string) string {
	return helpStyle.Render(strings.Join(keys, " • "))
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	previewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)
