// Package streak computes habit streaks from sets of completed day keys.
// Everything here is pure: no clock, no storage.
package streak

import (
	"slices"

	"github.com/julianstephens/habitlit/internal/utils"
)

// Current returns the length of the run of consecutive completed days that
// ends at today (inclusive). If today is not completed the streak is 0, even
// when yesterday and earlier days are.
func Current(completed []utils.DayKey, today utils.DayKey) int {
	if len(completed) == 0 {
		return 0
	}

	set := make(map[utils.DayKey]struct{}, len(completed))
	for _, d := range completed {
		set[d] = struct{}{}
	}

	count := 0
	for day := today; ; day = day.AddDays(-1) {
		if _, ok := set[day]; !ok {
			break
		}
		count++
	}
	return count
}

// UpdateLongest folds a freshly computed current streak into the longest
// streak seen so far. The longest streak never decreases.
func UpdateLongest(priorLongest, newCurrent int) int {
	return max(priorLongest, newCurrent)
}

// Normalize returns the keys deduplicated and sorted ascending.
func Normalize(days []utils.DayKey) []utils.DayKey {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

// Toggle flips membership of day in days and returns the normalized result
// together with whether day is now present.
func Toggle(days []utils.DayKey, day utils.DayKey) ([]utils.DayKey, bool) {
	if slices.Contains(days, day) {
		out := slices.DeleteFunc(slices.Clone(days), func(d utils.DayKey) bool { return d == day })
		return Normalize(out), false
	}
	return Normalize(append(slices.Clone(days), day)), true
}

// LongestRun returns the longest run of consecutive days anywhere in the
// history. Diagnostics use it to compare against the stored longest streak;
// it is not how LongestStreak is maintained.
func LongestRun(days []utils.DayKey) int {
	sorted := Normalize(days)
	if len(sorted) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if utils.DaysBetween(sorted[i-1], sorted[i]) == 1 {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}
