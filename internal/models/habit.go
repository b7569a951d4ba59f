package models

import (
	"time"

	"github.com/julianstephens/habitlit/internal/utils"
)

// Habit represents a trackable routine and its completion history
type Habit struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	ReminderTime   string         `json:"reminder_time,omitempty"` // HH:MM format
	CreatedAt      time.Time      `json:"created_at"`
	CompletedDates []utils.DayKey `json:"completed_dates"` // sorted ascending
	CurrentStreak  int            `json:"current_streak"`
	LongestStreak  int            `json:"longest_streak"`
}

// CompletedOn reports whether the habit was marked complete on day.
func (h Habit) CompletedOn(day utils.DayKey) bool {
	for _, d := range h.CompletedDates {
		if d == day {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the CompletedDates backing array.
func (h Habit) Clone() Habit {
	c := h
	if h.CompletedDates != nil {
		c.CompletedDates = append([]utils.DayKey(nil), h.CompletedDates...)
	}
	return c
}

// CreateHabitData is the input accepted when creating a habit
type CreateHabitData struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	ReminderTime string `json:"reminder_time,omitempty"`
}

// HabitStats aggregates streak figures across all habits
type HabitStats struct {
	TotalHabits      int `json:"total_habits"`
	TotalCompletions int `json:"total_completions"`
	LongestStreak    int `json:"longest_streak"`
	CurrentStreaks   int `json:"current_streaks"`
	AverageStreak    int `json:"average_streak"`
}

// CategoryStats is the per-category breakdown shown in analytics
type CategoryStats struct {
	Category    string `json:"category"`
	Habits      int    `json:"habits"`
	Completions int    `json:"completions"`
}

// DailyCompletion counts how many habits were completed on a given day
type DailyCompletion struct {
	Day         utils.DayKey `json:"day"`
	Completions int          `json:"completions"`
	Total       int          `json:"total"`
}
