package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.habitList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case habitsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.habits = msg.habits
		m.stats = msg.stats
		m.refreshList()
		return m, nil

	case statsLoadedMsg:
		if msg.err == nil {
			m.stats = msg.stats
		}
		return m, nil

	case habitToggledMsg:
		delete(m.inFlight, msg.id)
		if msg.err != nil {
			m.err = msg.err
			m.refreshList()
			return m, nil
		}
		m.err = nil
		if i := m.indexOf(msg.id); i >= 0 {
			m.habits[i] = msg.habit
		}
		m.refreshList()
		return m, loadStats(m.svc)

	case habitDeletedMsg:
		delete(m.inFlight, msg.id)
		if msg.err != nil {
			m.err = msg.err
			m.refreshList()
			return m, nil
		}
		m.err = nil
		if i := m.indexOf(msg.id); i >= 0 {
			m.habits = slices.Delete(slices.Clone(m.habits), i, i+1)
		}
		m.refreshList()
		return m, loadStats(m.svc)

	case habitAddedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.habits = append(slices.Clone(m.habits), msg.habit)
		m.refreshList()
		return m, loadStats(m.svc)
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Category: constants.DefaultCategory}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.ToggleHabitMsg:
		if m.inFlight[msg.ID] {
			return m, nil
		}
		m.inFlight[msg.ID] = true
		m.err = nil
		m.refreshList()
		return m, toggleHabit(m.svc, msg.ID)

	case habitlist.DeleteHabitMsg:
		if m.inFlight[msg.ID] {
			return m, nil
		}
		m.deleteID = msg.ID
		m.deleteName = msg.Name
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.habitList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, loadHabits(m.svc)
		}
	}

	var cmd tea.Cmd
	m.habitList, cmd = m.habitList.Update(msg)
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateHabits
		data := m.habitForm.data()
		data.ReminderTime = strings.TrimSpace(data.ReminderTime)
		cmds = append(cmds, addHabit(m.svc, data))
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		id := m.deleteID
		m.state = StateHabits
		m.deleteID, m.deleteName = "", ""
		if m.inFlight[id] {
			return m, nil
		}
		m.inFlight[id] = true
		m.err = nil
		m.refreshList()
		return m, deleteHabit(m.svc, id)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = StateHabits
		m.deleteID, m.deleteName = "", ""
	}
	return m, nil
}

func (m Model) indexOf(id string) int {
	return slices.IndexFunc(m.habits, func(h models.Habit) bool { return h.ID == id })
}
