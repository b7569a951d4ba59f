package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/streak"
	"github.com/julianstephens/habitlit/internal/utils"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// NormalizeCreate fills in the default category when none is given. Other
// fields are stored as submitted.
func NormalizeCreate(data models.CreateHabitData) models.CreateHabitData {
	if strings.TrimSpace(data.Category) == "" {
		data.Category = constants.DefaultCategory
	}
	return data
}

// CheckCreate validates create input. A name of only whitespace counts as
// empty. The returned error names the first offending field.
func CheckCreate(data models.CreateHabitData) error {
	data.Name = strings.TrimSpace(data.Name)

	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return fmt.Errorf("%s is required", fe.Field())
	}
	return fmt.Errorf("%s failed %q validation", fe.Field(), fe.Tag())
}

// ConflictType classifies an integrity problem found in stored habits
type ConflictType string

const (
	ConflictEmptyName           ConflictType = "empty_name"
	ConflictInvalidDay          ConflictType = "invalid_day"
	ConflictUnsortedDays        ConflictType = "unsorted_days"
	ConflictDuplicateDays       ConflictType = "duplicate_days"
	ConflictFutureDay           ConflictType = "future_day"
	ConflictLongestBelowCurrent ConflictType = "longest_below_current"
	ConflictInvalidReminderTime ConflictType = "invalid_reminder_time"
)

type Conflict struct {
	Type        ConflictType
	HabitID     string
	Description string
}

type ValidationResult struct {
	Conflicts []Conflict
}

func (vr ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

func (vr ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, h models.Habit, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		HabitID:     h.ID,
		Description: fmt.Sprintf("Habit %q: ", h.Name) + fmt.Sprintf(format, args...),
	})
}

// ValidateHabits checks stored habits against the record invariants as of
// today. A stale CurrentStreak is not reported: streaks are recomputed on read.
func ValidateHabits(habits []models.Habit, today utils.DayKey) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, h := range habits {
		if strings.TrimSpace(h.Name) == "" {
			result.add(ConflictEmptyName, h, "name is empty (id %s)", h.ID)
		}

		if h.ReminderTime != "" && !utils.ValidateTimeFormat(h.ReminderTime) {
			result.add(ConflictInvalidReminderTime, h, "reminder time %q is not HH:MM", h.ReminderTime)
		}

		for _, d := range h.CompletedDates {
			if _, err := utils.ParseDayKey(string(d)); err != nil {
				result.add(ConflictInvalidDay, h, "completion %q is not a valid day", d)
			} else if today.Before(d) {
				result.add(ConflictFutureDay, h, "completion %s is after today (%s)", d, today)
			}
		}

		normalized := streak.Normalize(h.CompletedDates)
		if len(normalized) != len(h.CompletedDates) {
			result.add(ConflictDuplicateDays, h, "%d duplicate completion day(s)", len(h.CompletedDates)-len(normalized))
		} else if !isSorted(h.CompletedDates) {
			result.add(ConflictUnsortedDays, h, "completion days are not in ascending order")
		}

		current := streak.Current(h.CompletedDates, today)
		if h.LongestStreak < h.CurrentStreak || h.LongestStreak < current {
			result.add(ConflictLongestBelowCurrent, h, "longest streak %d is below current streak %d",
				h.LongestStreak, max(h.CurrentStreak, current))
		}
	}

	return result
}

// Repair rewrites a habit so it satisfies the record invariants: completion
// days deduplicated and sorted, current streak recomputed, longest streak
// raised to cover it. Days that do not parse are dropped.
func Repair(h models.Habit, today utils.DayKey) models.Habit {
	h = h.Clone()

	days := make([]utils.DayKey, 0, len(h.CompletedDates))
	for _, d := range h.CompletedDates {
		if k, err := utils.ParseDayKey(string(d)); err == nil {
			days = append(days, k)
		}
	}
	h.CompletedDates = streak.Normalize(days)
	h.CurrentStreak = streak.Current(h.CompletedDates, today)
	h.LongestStreak = streak.UpdateLongest(h.LongestStreak, h.CurrentStreak)
	return h
}

func isSorted(days []utils.DayKey) bool {
	for i := 1; i < len(days); i++ {
		if days[i] < days[i-1] {
			return false
		}
	}
	return true
}
