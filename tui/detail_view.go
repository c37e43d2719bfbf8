package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/leadgen/dashboard"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(16)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder
	v := m.detail.View
	c := v.Contact

	s.WriteString(titleStyle.Render(strings.ToUpper(c.Name)))
	s.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		s.WriteString(fieldLabelStyle.Render(label))
		s.WriteString(fieldValueStyle.Render(value))
		s.WriteString("\n")
	}
	field("Company", c.Company)
	field("Email", c.Email)
	field("Phone", c.Phone)
	field("LinkedIn", strings.Join(c.LinkedInURLs, ", "))
	field("Stage", c.Stage)
	field("Status", v.Status)
	field("Last activity", lastActivity(v))
	field("Next action", nextAction(v))
	field("Match", v.Confidence)

	s.WriteString("\n")
	if len(m.detail.Activities) == 0 {
		s.WriteString("No activities\n")
	}
	for _, a := range m.detail.Activities {
		date := "-"
		if t, ok := a.ActivityDate(); ok {
			date = t.Format("2006-01-02")
		}
		line := fmt.Sprintf("%s  %-8s  %s", date, a.Type, a.StatusValue())
		if a.Notes != "" {
			line += "  " + a.Notes
		}
		s.WriteString(line + "\n")
	}

	s.WriteString(helpStyle.Render("Esc: Back • d: Delete • q: Quit"))
	return s.String()
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewList
		m.detail = dashboard.ContactDetail{}
	case "d":
		m.viewMode = ViewConfirmDelete
	}
	return m, nil
}
