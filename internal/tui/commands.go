package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/service"
)

// Storage runs inside these commands so the update loop never blocks on it.

type habitsLoadedMsg struct {
	habits []models.Habit
	stats  models.HabitStats
	err    error
}

type habitToggledMsg struct {
	id    string
	habit models.Habit
	err   error
}

type habitDeletedMsg struct {
	id  string
	err error
}

type habitAddedMsg struct {
	habit models.Habit
	err   error
}

func loadHabits(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		habits, err := svc.ListHabits()
		if err != nil {
			return habitsLoadedMsg{err: err}
		}
		stats, err := svc.Stats()
		return habitsLoadedMsg{habits: habits, stats: stats, err: err}
	}
}

func toggleHabit(svc *service.Service, id string) tea.Cmd {
	return func() tea.Msg {
		h, err := svc.ToggleCompletion(id)
		if err != nil {
			logger.Error("toggle failed", "habit", id, "error", err)
		}
		return habitToggledMsg{id: id, habit: h, err: err}
	}
}

func deleteHabit(svc *service.Service, id string) tea.Cmd {
	return func() tea.Msg {
		err := svc.DeleteHabit(id)
		if err != nil {
			logger.Error("delete failed", "habit", id, "error", err)
		}
		return habitDeletedMsg{id: id, err: err}
	}
}

func addHabit(svc *service.Service, data models.CreateHabitData) tea.Cmd {
	return func() tea.Msg {
		h, err := svc.AddHabit(data)
		return habitAddedMsg{habit: h, err: err}
	}
}

type statsLoadedMsg struct {
	stats models.HabitStats
	err   error
}

func loadStats(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		stats, err := svc.Stats()
		return statsLoadedMsg{stats: stats, err: err}
	}
}
