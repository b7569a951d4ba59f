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
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = docStyle.Render(m.habitList.View())
	}

	parts := []string{m.viewHeader(), content}
	if m.err != nil {
		parts = append(parts, errorStyle.Render("Error: "+m.err.Error()))
	}
	parts = append(parts, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHeader() string {
	if m.loading {
		return lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("habitlit"), subtleStyle.Render("loading…"))
	}

	today := m.svc.Today()
	done := 0
	for _, h := range m.habits {
		if h.CompletedOn(today) {
			done++
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("habitlit"),
		subtleStyle.Render(string(today)),
		subtleStyle.Render(fmt.Sprintf("done %d/%d", done, len(m.habits))),
		streakStyle.Render(fmt.Sprintf("🔥 best %d", m.stats.LongestStreak)),
		subtleStyle.Render(fmt.Sprintf("avg %d", m.stats.AverageStreak)),
	)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and its history?", m.deleteName)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
