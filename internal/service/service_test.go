package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// spyStore counts writes and can fail them on demand.
type spyStore struct {
	storage.Provider

	inserts     int
	replaces    int
	failReplace error
}

func (s *spyStore) Insert(h models.Habit) error {
	s.inserts++
	return s.Provider.Insert(h)
}

func (s *spyStore) Replace(h models.Habit) error {
	s.replaces++
	if s.failReplace != nil {
		return s.failReplace
	}
	return s.Provider.Replace(h)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

// nextDay advances the clock by one calendar day.
func (c *fakeClock) nextDay() {
	c.now = c.now.AddDate(0, 0, 1)
}

func day(s string) utils.DayKey {
	return utils.MustDayKey(s)
}

type fixture struct {
	svc   *Service
	store *spyStore
	clock *fakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	store := &spyStore{Provider: storage.NewSQLiteStore(filepath.Join(t.TempDir(), "habits.db"))}
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	n := 0
	base := []Option{
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("habit-%d", n)
		}),
	}

	return &fixture{
		svc:   New(store, append(base, opts...)...),
		store: store,
		clock: clock,
	}
}

func (f *fixture) add(t *testing.T, name string) models.Habit {
	t.Helper()
	h, err := f.svc.AddHabit(models.CreateHabitData{Name: name})
	require.NoError(t, err)
	return h
}

func TestAddHabitDefaults(t *testing.T) {
	f := newFixture(t)

	h, err := f.svc.AddHabit(models.CreateHabitData{
		Name:         "Drink water",
		Description:  "8 glasses",
		ReminderTime: "09:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "habit-1", h.ID)
	assert.Equal(t, "Drink water", h.Name)
	assert.Equal(t, "Other", h.Category)
	assert.Equal(t, "09:00", h.ReminderTime)
	assert.Empty(t, h.CompletedDates)
	assert.Zero(t, h.CurrentStreak)
	assert.Zero(t, h.LongestStreak)
	assert.True(t, h.CreatedAt.Equal(f.clock.now))

	stored, err := f.svc.GetHabit(h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Name, stored.Name)
	assert.Equal(t, "8 glasses", stored.Description)
}

func TestAddHabitAcceptsLongFields(t *testing.T) {
	f := newFixture(t)

	data := models.CreateHabitData{
		Name:     strings.Repeat("a", 500),
		Category: strings.Repeat("c", 200),
	}
	h, err := f.svc.AddHabit(data)
	require.NoError(t, err)
	assert.Equal(t, data.Name, h.Name)
	assert.Equal(t, data.Category, h.Category)
	assert.Zero(t, h.CurrentStreak)
	assert.Zero(t, h.LongestStreak)
	assert.Empty(t, h.CompletedDates)
}

func TestAddThenListKeepsSubmittedFields(t *testing.T) {
	f := newFixture(t)

	data := models.CreateHabitData{
		Name:         "  Stretch ",
		Description:  "  10 minutes, then breathe  ",
		Category:     "Fitness",
		ReminderTime: "07:15",
	}
	_, err := f.svc.AddHabit(data)
	require.NoError(t, err)

	habits, err := f.svc.ListHabits()
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, data.Name, habits[0].Name)
	assert.Equal(t, data.Description, habits[0].Description)
	assert.Equal(t, data.Category, habits[0].Category)
	assert.Equal(t, data.ReminderTime, habits[0].ReminderTime)
}

func TestAddHabitRejectsBlankName(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := f.svc.AddHabit(models.CreateHabitData{Name: name, Category: "Health"})
		assert.ErrorIs(t, err, ErrInvalidInput, "name %q", name)
	}

	assert.Zero(t, f.store.inserts, "no store call on invalid input")
	habits, err := f.svc.ListHabits()
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestAddHabitDuplicateID(t *testing.T) {
	f := newFixture(t, WithIDGenerator(func() string { return "fixed" }))

	f.add(t, "Read")
	_, err := f.svc.AddHabit(models.CreateHabitData{Name: "Run"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestToggleCompletesToday(t *testing.T) {
	f := newFixture(t)
	h := f.add(t, "Read")

	got, err := f.svc.ToggleCompletion(h.ID)
	require.NoError(t, err)

	assert.Equal(t, []utils.DayKey{day("2026-03-10")}, got.CompletedDates)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 1, got.LongestStreak)

	stored, err := f.store.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, got.CompletedDates, stored.CompletedDates)
	assert.Equal(t, 1, stored.LongestStreak)
}

func TestToggleTwiceRestoresDays(t *testing.T) {
	f := newFixture(t)
	h := f.add(t, "Read")

	_, err := f.svc.ToggleCompletion(h.ID)
	require.NoError(t, err)
	got, err := f.svc.ToggleCompletion(h.ID)
	require.NoError(t, err)

	assert.Empty(t, got.CompletedDates)
	assert.Equal(t, 0, got.CurrentStreak)
	assert.Equal(t, 1, got.LongestStreak, "longest streak never decreases")
}

func TestConsecutiveDaysBuildStreak(t *testing.T) {
	f := newFixture(t)
	h := f.add(t, "Read")

	var got models.Habit
	for i := 0; i < 3; i++ {
		var err error
		got, err = f.svc.ToggleCompletion(h.ID)
		require.NoError(t, err)
		f.clock.nextDay()
	}
	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)

	// Skip a day, then complete again.
	f.clock.nextDay()
	got, err := f.svc.ToggleCompletion(h.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)
	assert.Equal(t, []utils.DayKey{
		day("2026-03-10"), day("2026-03-11"), day("2026-03-12"), day("2026-03-14"),
	}, got.CompletedDates)
}

func TestUntoggleTodayBreaksCurrentNotLongest(t *testing.T) {
	f := newFixture(t)
	h := f.add(t, "Read")

	steps := []struct {
		nextDay       bool
		current       int
		longest       int
		completedDays []utils.DayKey
	}{
		{false, 1, 1, []utils.DayKey{day("2026-03-10")}},
		{true, 2, 2, []utils.DayKey{day("2026-03-10"), day("2026-03-11")}},
		{true, 3, 3, []utils.DayKey{day("2026-03-10"), day("2026-03-11"), day("2026-03-12")}},
		// Unmarking today leaves yesterday, which alone does not count.
		{false, 0, 3, []utils.DayKey{day("2026-03-10"), day("2026-03-11")}},
		{true, 1, 3, []utils.DayKey{day("2026-03-10"), day("2026-03-11"), day("2026-03-13")}},
	}

	for i, step := range steps {
		if step.nextDay {
			f.clock.nextDay()
		}
		got, err := f.svc.ToggleCompletion(h.ID)
		require.NoError(t, err)

		assert.Equal(t, step.current, got.CurrentStreak, "toggle %d current", i+1)
		assert.Equal(t, step.longest, got.LongestStreak, "toggle %d longest", i+1)
		assert.Equal(t, step.completedDays, got.CompletedDates, "toggle %d days", i+1)

		stored, err := f.store.Get(h.ID)
		require.NoError(t, err)
		assert.Equal(t, step.longest, stored.LongestStreak, "toggle %d stored longest", i+1)
	}
}

func TestListRecomputesLapsedStreak(t *testing.T) {
	f := newFixture(t)
	h := f.add(t, "Read")

	toggled, err := f.svc.ToggleCompletion(h.ID)
	require.NoError(t, err)
	require.Equal(t, 1, toggled.CurrentStreak)

	f.clock.nextDay()

	habits, err := f.svc.ListHabits()
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, 0, habits[0].CurrentStreak)
	assert.Equal(t, 1, habits[0].LongestStreak)

	got, err := f.svc.GetHabit(h.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentStreak)

	// The recomputed value is not written back.
	stored, err := f.store.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStreak)
}

func TestToggleUnknownHabit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ToggleCompletion("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, f.store.replaces)
}

func TestToggleStoreFailureLeavesRecord(t *testing.T) {
	f := newFixture(t)
	h := f.add(t, "Read")

	f.store.failReplace = fmt.Errorf("%w: disk full", storage.ErrStorageUnavailable)
	_, err := f.svc.ToggleCompletion(h.ID)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)

	stored, err := f.store.Get(h.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CompletedDates)
}

func TestDayFollowsConfiguredTimezone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	f := newFixture(t, WithLocation(tokyo))
	f.clock.now = time.Date(2026, 12, 31, 20, 0, 0, 0, time.UTC) // 05:00 on Jan 1 in Tokyo

	h := f.add(t, "Journal")
	got, err := f.svc.ToggleCompletion(h.ID)
	require.NoError(t, err)

	assert.Equal(t, []utils.DayKey{day("2027-01-01")}, got.CompletedDates)
	assert.Equal(t, day("2027-01-01"), f.svc.Today())
}

func TestStreakAcrossYearBoundary(t *testing.T) {
	f := newFixture(t)
	f.clock.now = time.Date(2026, 12, 30, 8, 0, 0, 0, time.UTC)
	h := f.add(t, "Stretch")

	var got models.Habit
	for i := 0; i < 4; i++ {
		var err error
		got, err = f.svc.ToggleCompletion(h.ID)
		require.NoError(t, err)
		f.clock.nextDay()
	}
	assert.Equal(t, 4, got.CurrentStreak)
	assert.Equal(t, day("2027-01-02"), got.CompletedDates[3])
}

func TestDeleteHabit(t *testing.T) {
	f := newFixture(t)
	keep := f.add(t, "Read")
	gone := f.add(t, "Run")

	require.NoError(t, f.svc.DeleteHabit(gone.ID))

	_, err := f.svc.GetHabit(gone.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteHabit(gone.ID), storage.ErrNotFound)

	habits, err := f.svc.ListHabits()
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, keep.ID, habits[0].ID)
}

func TestListHabitsCreationOrder(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"A", "B", "C"} {
		f.add(t, name)
		f.clock.now = f.clock.now.Add(time.Minute)
	}

	habits, err := f.svc.ListHabits()
	require.NoError(t, err)
	require.Len(t, habits, 3)
	assert.Equal(t, "A", habits[0].Name)
	assert.Equal(t, "B", habits[1].Name)
	assert.Equal(t, "C", habits[2].Name)
}

func TestHabitsByCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddHabit(models.CreateHabitData{Name: "Run", Category: "Fitness"})
	require.NoError(t, err)
	f.add(t, "Misc")

	fitness, err := f.svc.HabitsByCategory(" Fitness ")
	require.NoError(t, err)
	require.Len(t, fitness, 1)
	assert.Equal(t, "Run", fitness[0].Name)

	other, err := f.svc.HabitsByCategory("Other")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	_, err = f.svc.HabitsByCategory("  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	read, err := f.svc.AddHabit(models.CreateHabitData{Name: "Read", Category: "Learning"})
	require.NoError(t, err)
	run, err := f.svc.AddHabit(models.CreateHabitData{Name: "Run", Category: "Fitness"})
	require.NoError(t, err)
	_, err = f.svc.AddHabit(models.CreateHabitData{Name: "Code", Category: "Learning"})
	require.NoError(t, err)

	// Read: 3-day run ending today. Run: today only.
	for i := 0; i < 3; i++ {
		_, err := f.svc.ToggleCompletion(read.ID)
		require.NoError(t, err)
		if i < 2 {
			f.clock.nextDay()
		}
	}
	_, err = f.svc.ToggleCompletion(run.ID)
	require.NoError(t, err)

	stats, err := f.svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, models.HabitStats{
		TotalHabits:      3,
		TotalCompletions: 4,
		LongestStreak:    3,
		CurrentStreaks:   4,
		AverageStreak:    1,
	}, stats)

	breakdown, err := f.svc.CategoryBreakdown()
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryStats{
		{Category: "Learning", Habits: 2, Completions: 3},
		{Category: "Fitness", Habits: 1, Completions: 1},
	}, breakdown)

	daily, err := f.svc.DailyCompletions(4)
	require.NoError(t, err)
	require.Len(t, daily, 4)
	assert.Equal(t, models.DailyCompletion{Day: day("2026-03-09"), Completions: 0, Total: 3}, daily[0])
	assert.Equal(t, models.DailyCompletion{Day: day("2026-03-12"), Completions: 2, Total: 3}, daily[3])

	_, err = f.svc.DailyCompletions(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatsEmpty(t *testing.T) {
	f := newFixture(t)
	stats, err := f.svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, models.HabitStats{}, stats)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Read")
	f.add(t, "Run")

	require.NoError(t, f.svc.Reset())

	habits, err := f.svc.ListHabits()
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestImportRepairsAndSkipsExisting(t *testing.T) {
	f := newFixture(t)
	existing := f.add(t, "Read")

	n, err := f.svc.Import([]models.Habit{
		{ID: existing.ID, Name: "Read again"},
		{
			ID:             "imported",
			Name:           "Walk",
			CompletedDates: []utils.DayKey{day("2026-03-10"), day("2026-03-09"), day("2026-03-10")},
			LongestStreak:  1,
		},
		{Name: "No id"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	walk, err := f.svc.GetHabit("imported")
	require.NoError(t, err)
	assert.Equal(t, []utils.DayKey{day("2026-03-09"), day("2026-03-10")}, walk.CompletedDates)
	assert.Equal(t, 2, walk.CurrentStreak)
	assert.Equal(t, 2, walk.LongestStreak)
	assert.Equal(t, "Other", walk.Category)

	read, err := f.svc.GetHabit(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read", read.Name, "existing habit untouched")

	_, err = f.svc.Import([]models.Habit{{ID: "x", Name: " "}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckAndRepair(t *testing.T) {
	f := newFixture(t)
	h := f.add(t, "Read")

	// Written behind the service's back: a streak the longest never saw.
	broken := h
	broken.CompletedDates = []utils.DayKey{day("2026-03-09"), day("2026-03-10")}
	broken.CurrentStreak = 2
	broken.LongestStreak = 0
	require.NoError(t, f.store.Replace(broken))

	result, err := f.svc.Check()
	require.NoError(t, err)
	assert.True(t, result.HasConflicts())

	fixed, err := f.svc.Repair()
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	result, err = f.svc.Check()
	require.NoError(t, err)
	assert.False(t, result.HasConflicts(), result.FormatReport())

	again, err := f.svc.Repair()
	require.NoError(t, err)
	assert.Zero(t, again)
}
