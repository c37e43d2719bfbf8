// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Hides the contact at once and restores it if the delete fails
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/leadgen/dashboard"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// deleteTarget is the contact the confirmation refers to: the open detail
// view, else the selected row.
func (m Model) deleteTarget() (id, name string) {
	if m.detail.View.Contact.ID != "" {
		return m.detail.View.Contact.ID, m.detail.View.Contact.Name
	}
	if v, ok := m.selected(); ok {
		return v.Contact.ID, v.Contact.Name
	}
	return "", ""
}

func (m Model) renderConfirmDeleteView() string {
	id, name := m.deleteTarget()
	var s strings.Builder
	if id == "" {
		s.WriteString(warningStyle.Render(fmt.Sprintf("%s has no saved record to delete", name)))
		s.WriteString("\n\nPress any key to go back")
	} else {
		s.WriteString(warningStyle.Render("Delete contact?"))
		s.WriteString("\n\n")
		s.WriteString(name)
		s.WriteString("\n\nIts activities are deleted too.\n\n")
		s.WriteString("y: Delete • n: Cancel")
	}
	return confirmBoxStyle.Render(s.String())
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, name := m.deleteTarget()
	m.viewMode = ViewList
	m.detail = dashboard.ContactDetail{}
	if id == "" || msg.String() != "y" {
		return m, nil
	}

	dash := m.dash
	return m, func() tea.Msg {
		return deletedMsg{name: name, err: dash.DeleteContact(context.Background(), id)}
	}
}
