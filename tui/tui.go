// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Full-screen paged contact listing for one project with quick filters
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/filter"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewSearch
	ViewDetail
	ViewConfirmDelete
)

// Model is the main bubbletea model
type Model struct {
	dash      *dashboard.Dashboard
	projectID string
	viewMode  ViewMode

	// List view state
	criteria    filter.Criteria
	preset      int
	page        int
	listing     dashboard.Listing
	loaded      bool
	loading     bool
	selectedRow int
	searchInput textinput.Model

	// Detail view state
	detail dashboard.ContactDetail

	// UI state
	status string
	width  int
	height int
	err    error
}

// NewModel creates a model listing projectID.
func NewModel(dash *dashboard.Dashboard, projectID string) Model {
	ti := textinput.New()
	ti.Placeholder = "name, email or company"
	ti.CharLimit = 100

	return Model{
		dash:        dash,
		projectID:   projectID,
		viewMode:    ViewList,
		page:        1,
		searchInput: ti,
		width:       100,
		height:      24,
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(dash *dashboard.Dashboard, projectID string) error {
	_, err := tea.NewProgram(NewModel(dash, projectID), tea.WithAltScreen()).Run()
	return err
}

type enteredMsg struct{ err error }

type listingMsg struct {
	listing dashboard.Listing
	err     error
}

type deletedMsg struct {
	name string
	err  error
}

func (m Model) Init() tea.Cmd {
	return m.enter()
}

// enter loads (or reloads) the project, then lists the current page.
func (m Model) enter() tea.Cmd {
	dash, id := m.dash, m.projectID
	return func() tea.Msg {
		_, err := dash.Enter(context.Background(), id)
		return enteredMsg{err: err}
	}
}

func (m Model) fetchPage() tea.Cmd {
	dash, criteria, page := m.dash, m.criteria, m.page
	return func() tea.Msg {
		listing, err := dash.Page(context.Background(), criteria, page)
		return listingMsg{listing: listing, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case enteredMsg:
		// A failed refresh still leaves any cached state usable.
		m.err = msg.err
		if m.dash.State() == nil {
			m.loading = false
			return m, nil
		}
		return m, m.fetchPage()
	case listingMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.listing = msg.listing
		m.loaded = true
		m.page = msg.listing.Window.Page
		if m.selectedRow >= len(m.listing.Rows) {
			m.selectedRow = max(len(m.listing.Rows)-1, 0)
		}
		return m, nil
	case deletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = "Deleted " + msg.name
		return m, m.fetchPage()
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList, ViewSearch:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.viewMode == ViewSearch {
		return m.handleSearchKeys(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
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

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
