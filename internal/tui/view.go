package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateToday:
		content = docStyle.Render(m.habitList.View())
	case StateCalendar:
		content = docStyle.Render(m.month.Format("January 2006") + "\n\n" + m.calendarPanel.View())
	case StateInsights:
		content = docStyle.Render(m.insightsPanel.View())
	case StateAchievements:
		content = docStyle.Render(m.achievePanel.View())
	case StateAddHabit, StateEditHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	status := toastStyle.Render(m.toast)
	if m.err != nil {
		status = errorStyle.Render("Error: " + m.err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		status,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and its whole history?", m.deleteName)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
