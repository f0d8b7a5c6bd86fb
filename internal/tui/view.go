package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateMeals:
		content = m.viewMeals()
	case StateCalendar:
		content = m.viewCalendar()
	case StateConsultations:
		content = m.viewConsultations()
	case StateAddMeal, StateRequestConsultation:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirm("Delete " + m.mealToDeleteName + "?")
	case StateConfirmCancel:
		content = m.viewConfirm("Cancel this consultation?")
	}

	parts := []string{m.viewTabs(), content}
	if m.status != "" {
		parts = append(parts, docStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Meals", "Calendar", "Consultations"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	if m.auth == nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	}
	if user, ok := m.auth.CurrentUser(); ok {
		tabs = append(tabs, inactiveTabStyle.Render(user.DisplayName()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewMeals() string {
	heading := headingStyle.Render(m.dayTitle())
	body := lipgloss.JoinVertical(lipgloss.Left, heading, m.mealList.View())
	if line := m.progressLine(); line != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", progressStyle.Render(line))
	}
	return docStyle.Render(body)
}

func (m Model) viewCalendar() string {
	return docStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		m.calendar.View(),
		"    ",
		m.agenda.View(),
	))
}

func (m Model) viewConsultations() string {
	return docStyle.Render(m.consultList.View())
}

func (m Model) viewConfirm(question string) string {
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
