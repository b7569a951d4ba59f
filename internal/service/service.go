// Package service implements the habit lifecycle on top of a storage
// provider: creating habits, toggling today's completion, deleting, and the
// read-side views used by the CLI and TUI.
package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/streak"
	"github.com/julianstephens/habitlit/internal/utils"
	"github.com/julianstephens/habitlit/internal/validation"
)

// ErrInvalidInput is returned for requests rejected before touching storage.
var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	store storage.Provider
	now   func() time.Time
	loc   *time.Location
	newID func() string
}

type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current day key in the service's timezone.
func (s *Service) Today() utils.DayKey {
	return utils.DayKeyOf(s.Now())
}

// Now is the current instant in the service's location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// AddHabit creates a habit with no completions. The category defaults to
// "Other"; a blank name is rejected without a store call.
func (s *Service) AddHabit(data models.CreateHabitData) (models.Habit, error) {
	data = validation.NormalizeCreate(data)
	if err := validation.CheckCreate(data); err != nil {
		return models.Habit{}, invalid(err)
	}

	habit := models.Habit{
		ID:             s.newID(),
		Name:           data.Name,
		Description:    data.Description,
		Category:       data.Category,
		ReminderTime:   data.ReminderTime,
		CreatedAt:      s.now(),
		CompletedDates: []utils.DayKey{},
	}

	if err := s.store.Insert(habit); err != nil {
		return models.Habit{}, err
	}

	logger.Info("habit added", "id", habit.ID, "name", habit.Name, "category", habit.Category)
	return habit, nil
}

// ToggleCompletion flips today's completion for the habit and recomputes its
// streaks. The longest streak only ever grows.
func (s *Service) ToggleCompletion(id string) (models.Habit, error) {
	habit, err := s.store.Get(id)
	if err != nil {
		return models.Habit{}, err
	}

	today := s.Today()
	days, completed := streak.Toggle(habit.CompletedDates, today)

	habit.CompletedDates = days
	habit.CurrentStreak = streak.Current(days, today)
	habit.LongestStreak = streak.UpdateLongest(habit.LongestStreak, habit.CurrentStreak)

	if err := s.store.Replace(habit); err != nil {
		return models.Habit{}, err
	}

	logger.Debug("habit toggled", "id", id, "day", today, "completed", completed,
		"current", habit.CurrentStreak, "longest", habit.LongestStreak)
	return habit, nil
}

func (s *Service) DeleteHabit(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	logger.Info("habit deleted", "id", id)
	return nil
}

// refresh recomputes the current streak against today. A streak can lapse
// overnight without any write, so reads never trust the stored value. The
// result is not written back.
func (s *Service) refresh(habits []models.Habit) []models.Habit {
	today := s.Today()
	for i := range habits {
		habits[i].CurrentStreak = streak.Current(habits[i].CompletedDates, today)
	}
	return habits
}

// ListHabits returns every habit in creation order with current streaks
// as of today.
func (s *Service) ListHabits() ([]models.Habit, error) {
	habits, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}
	return s.refresh(habits), nil
}

func (s *Service) GetHabit(id string) (models.Habit, error) {
	habit, err := s.store.Get(id)
	if err != nil {
		return models.Habit{}, err
	}
	return s.refresh([]models.Habit{habit})[0], nil
}

func (s *Service) HabitsByCategory(category string) ([]models.Habit, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, invalid(errors.New("category is required"))
	}

	habits, err := s.store.GetByCategory(category)
	if err != nil {
		return nil, err
	}
	return s.refresh(habits), nil
}

// Stats aggregates the analytics header figures. AverageStreak is the sum
// of current streaks divided by the habit count, rounded.
func (s *Service) Stats() (models.HabitStats, error) {
	habits, err := s.ListHabits()
	if err != nil {
		return models.HabitStats{}, err
	}
	return summarize(habits), nil
}

func summarize(habits []models.Habit) models.HabitStats {
	stats := models.HabitStats{TotalHabits: len(habits)}
	for _, h := range habits {
		stats.TotalCompletions += len(h.CompletedDates)
		stats.LongestStreak = max(stats.LongestStreak, h.LongestStreak)
		stats.CurrentStreaks += h.CurrentStreak
	}
	if stats.TotalHabits > 0 {
		stats.AverageStreak = int(math.Round(float64(stats.CurrentStreaks) / float64(stats.TotalHabits)))
	}
	return stats
}

// CategoryBreakdown groups habits by category in order of first appearance.
func (s *Service) CategoryBreakdown() ([]models.CategoryStats, error) {
	habits, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}

	out := []models.CategoryStats{}
	index := map[string]int{}
	for _, h := range habits {
		i, ok := index[h.Category]
		if !ok {
			i = len(out)
			index[h.Category] = i
			out = append(out, models.CategoryStats{Category: h.Category})
		}
		out[i].Habits++
		out[i].Completions += len(h.CompletedDates)
	}
	return out, nil
}

// DailyCompletions counts completions for each of the last n days, oldest
// first and ending today.
func (s *Service) DailyCompletions(n int) ([]models.DailyCompletion, error) {
	if n <= 0 {
		return nil, invalid(fmt.Errorf("day count must be positive, got %d", n))
	}

	habits, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}

	today := s.Today()
	counts := make(map[utils.DayKey]int)
	for _, h := range habits {
		for _, d := range h.CompletedDates {
			counts[d]++
		}
	}

	out := make([]models.DailyCompletion, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		out = append(out, models.DailyCompletion{
			Day:         day,
			Completions: counts[day],
			Total:       len(habits),
		})
	}
	return out, nil
}

// Reset removes every habit.
func (s *Service) Reset() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	logger.Warn("all habits cleared", "store", s.store.Path())
	return nil
}

// Export returns habits exactly as stored.
func (s *Service) Export() ([]models.Habit, error) {
	return s.store.GetAll()
}

// Import inserts previously exported habits after repairing their
// completion history. Habits whose id already exists are skipped. It returns
// the number inserted.
func (s *Service) Import(habits []models.Habit) (int, error) {
	today := s.Today()
	imported := 0
	for _, h := range habits {
		if strings.TrimSpace(h.Name) == "" {
			return imported, invalid(fmt.Errorf("habit %q has an empty name", h.ID))
		}
		if h.ID == "" {
			h.ID = s.newID()
		}
		if h.Category == "" {
			h.Category = constants.DefaultCategory
		}
		if h.CreatedAt.IsZero() {
			h.CreatedAt = s.now()
		}

		err := s.store.Insert(validation.Repair(h, today))
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Warn("skipping existing habit on import", "id", h.ID)
			continue
		}
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// Check validates stored habits against the record invariants.
func (s *Service) Check() (validation.ValidationResult, error) {
	if err := s.store.Check(); err != nil {
		return validation.ValidationResult{}, err
	}
	habits, err := s.store.GetAll()
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return validation.ValidateHabits(habits, s.Today()), nil
}

// Repair rewrites every habit that fails the record invariants and returns
// how many were changed.
func (s *Service) Repair() (int, error) {
	habits, err := s.store.GetAll()
	if err != nil {
		return 0, err
	}

	today := s.Today()
	fixed := 0
	for _, h := range habits {
		if !validation.ValidateHabits([]models.Habit{h}, today).HasConflicts() {
			continue
		}
		if err := s.store.Replace(validation.Repair(h, today)); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}
