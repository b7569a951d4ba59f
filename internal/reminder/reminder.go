// Package reminder works out when a habit's daily reminder fires.
package reminder

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Next returns the next firing of an HH:MM reminder after now: today if the
// time is still ahead, otherwise tomorrow. Times are in now's location.
func Next(reminderTime string, now time.Time) (time.Time, error) {
	today := utils.DayKeyOf(now)
	at, err := utils.CombineDayAndTime(today, reminderTime, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("reminder %q: %w", reminderTime, err)
	}
	if at.After(now) {
		return at, nil
	}
	return utils.CombineDayAndTime(today.AddDays(1), reminderTime, now.Location())
}

// Due returns the habits whose reminder fell within (now-window, now] today
// and which are not yet completed today. Habits without a parseable reminder
// time are skipped.
func Due(habits []models.Habit, now time.Time, window time.Duration) []models.Habit {
	today := utils.DayKeyOf(now)
	due := []models.Habit{}
	for _, h := range habits {
		if h.ReminderTime == "" || h.CompletedOn(today) {
			continue
		}
		at, err := utils.CombineDayAndTime(today, h.ReminderTime, now.Location())
		if err != nil {
			continue
		}
		if at.After(now) || !at.After(now.Add(-window)) {
			continue
		}
		due = append(due, h)
	}
	return due
}
