package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/filter"
	"github.com/harperreed/leadgen/index"
)

// preset is a quick filter reachable with tab.
type preset struct {
	name  string
	apply func(*filter.Criteria)
}

var presets = []preset{
	{"All", func(*filter.Criteria) {}},
	{"Due today", func(c *filter.Criteria) { c.NextAction = dates.Window{Bucket: dates.BucketToday} }},
	{"Due tomorrow", func(c *filter.Criteria) { c.NextAction = dates.Window{Bucket: dates.BucketTomorrow} }},
	{"Touched this week", func(c *filter.Criteria) { c.LastInteraction = dates.Window{Bucket: dates.BucketThisWeek} }},
	{"No activity", func(c *filter.Criteria) { c.NoActivity = true }},
}

// withPreset returns the criteria for preset i, keeping search and sort.
func (m Model) withPreset(i int) filter.Criteria {
	c := filter.Criteria{Search: m.criteria.Search, Sort: m.criteria.Sort}
	presets[i].apply(&c)
	return c
}

func (m Model) renderListView() string {
	var s strings.Builder

	title := "LEADGEN"
	if st := m.dash.State(); st != nil && st.Project.Name != "" {
		title += " · " + st.Project.Name
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.viewMode == ViewSearch {
		s.WriteString("Search: " + m.searchInput.View())
		s.WriteString("\n\n")
	} else if m.criteria.Search != "" {
		s.WriteString(fmt.Sprintf("Search: %q\n\n", m.criteria.Search))
	}

	switch {
	case !m.loaded && m.err == nil:
		s.WriteString("Loading…")
	case len(m.listing.Rows) == 0 && m.loaded:
		s.WriteString("No contacts found")
	default:
		s.WriteString(m.renderContactsTable())
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderFooter())
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()))
	}
	if m.status != "" {
		s.WriteString("\n" + m.status)
	}
	s.WriteString("\n")
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, p := range presets {
		if i == m.preset {
			rendered = append(rendered, tabActiveStyle.Render(p.name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(p.name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderContactsTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Company", Width: 18},
		{Title: "Status", Width: 18},
		{Title: "Last activity", Width: 13},
		{Title: "Next action", Width: 24},
	}

	rows := make([]table.Row, 0, len(m.listing.Rows))
	for _, v := range m.listing.Rows {
		rows = append(rows, table.Row{
			v.Contact.Name,
			v.Contact.Company,
			v.Status,
			lastActivity(v),
			nextAction(v),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 5)),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func lastActivity(v index.View) string {
	t, ok := v.LastActivityDate()
	if !ok {
		return "-"
	}
	return t.Format("2006-01-02")
}

func nextAction(v index.View) string {
	if v.NextAction == nil || v.NextAction.NextActionDate == nil {
		return "-"
	}
	s := v.NextAction.NextActionDate.Format("Jan 02")
	if v.NextAction.NextAction != "" {
		s += " " + v.NextAction.NextAction
	}
	return s
}

func (m Model) renderFooter() string {
	if !m.loaded {
		return ""
	}
	w := m.listing.Window
	footer := w.String()
	if w.TotalPages > 1 {
		footer += fmt.Sprintf(" · page %d/%d", w.Page, w.TotalPages)
	}
	if m.loading {
		footer += " · loading…"
	}
	return footer
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"n/p: Page",
		"Tab: Filter",
		"s: Sort",
		"/: Search",
		"Enter: Details",
		"d: Delete",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.listing.Rows)-1 {
			m.selectedRow++
		}
	case "n", "right":
		if m.loaded && m.listing.Window.HasNext() {
			return m.goToPage(m.page + 1)
		}
	case "p", "left":
		if m.page > 1 {
			return m.goToPage(m.page - 1)
		}
	case "r":
		m.loading = true
		return m, m.enter()
	case "tab":
		m.preset = (m.preset + 1) % len(presets)
		m.criteria = m.withPreset(m.preset)
		return m.goToPage(1)
	case "s":
		switch m.criteria.Sort {
		case filter.SortNone:
			m.criteria.Sort = filter.SortNameAsc
		case filter.SortNameAsc:
			m.criteria.Sort = filter.SortNameDesc
		default:
			m.criteria.Sort = filter.SortNone
		}
		return m.goToPage(1)
	case "/":
		m.viewMode = ViewSearch
		m.searchInput.SetValue(m.criteria.Search)
		return m, m.searchInput.Focus()
	case "enter":
		if v, ok := m.selected(); ok {
			detail, err := m.dash.Contact(v.Contact.Key())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.detail = detail
			m.viewMode = ViewDetail
		}
	case "d":
		if _, ok := m.selected(); ok {
			m.viewMode = ViewConfirmDelete
		}
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.viewMode = ViewList
		m.searchInput.Blur()
		m.criteria.Search = strings.TrimSpace(m.searchInput.Value())
		return m.goToPage(1)
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) goToPage(page int) (tea.Model, tea.Cmd) {
	m.page = page
	m.selectedRow = 0
	m.loading = true
	return m, m.fetchPage()
}

func (m Model) selected() (index.View, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.listing.Rows) {
		return index.View{}, false
	}
	return m.listing.Rows[m.selectedRow], true
}
