package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
)

type AddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Optional description." short:"d"`
	Category    string `help:"Category (default: Other)." short:"c"`
	Reminder    string `help:"Daily reminder time (HH:MM)." short:"r"`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Service.AddHabit(models.CreateHabitData{
		Name:         c.Name,
		Description:  c.Description,
		Category:     c.Category,
		ReminderTime: c.Reminder,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added habit %q (%s)\n", habit.Name, habit.ID)
	return nil
}

type ListCmd struct {
	Category string `help:"Only show habits in this category." short:"c"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	var habits []models.Habit
	var err error
	if c.Category != "" {
		habits, err = ctx.Service.HabitsByCategory(c.Category)
	} else {
		habits, err = ctx.Service.ListHabits()
	}
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today := ctx.Service.Today()
	done := 0
	for _, h := range habits {
		mark := "[ ]"
		if h.CompletedOn(today) {
			mark = "[x]"
			done++
		}
		ctx.Printf("%s %-24s %-13s 🔥 %-3d best %-3d %s\n",
			mark, truncate(h.Name, 24), h.Category, h.CurrentStreak, h.LongestStreak, h.ID)
	}
	ctx.Printf("\nCompleted today (%s): %d/%d\n", today, done, len(habits))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type ToggleCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	updated, err := ctx.Service.ToggleCompletion(habit.ID)
	if err != nil {
		return err
	}

	if updated.CompletedOn(ctx.Service.Today()) {
		ctx.Printf("✓ %s done for today. Streak: %d (best %d)\n", updated.Name, updated.CurrentStreak, updated.LongestStreak)
	} else {
		ctx.Printf("○ %s unmarked for today. Streak: %d (best %d)\n", updated.Name, updated.CurrentStreak, updated.LongestStreak)
	}
	return nil
}

type DeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q and its %d completion(s)?", habit.Name, len(habit.CompletedDates)))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Service.DeleteHabit(habit.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted habit %q\n", habit.Name)
	return nil
}

type StatsCmd struct {
	Days int `help:"Number of days in the completion history." default:"30"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	days := c.Days
	if days <= 0 {
		days = constants.DefaultCompletionWindowDays
	}

	stats, err := ctx.Service.Stats()
	if err != nil {
		return err
	}

	ctx.Printf("Total habits:        %d\n", stats.TotalHabits)
	ctx.Printf("Total completions:   %d\n", stats.TotalCompletions)
	ctx.Printf("Longest streak:      %d\n", stats.LongestStreak)
	ctx.Printf("Active streak days:  %d\n", stats.CurrentStreaks)
	ctx.Printf("Average streak:      %d\n", stats.AverageStreak)

	if stats.TotalHabits == 0 {
		return nil
	}

	breakdown, err := ctx.Service.CategoryBreakdown()
	if err != nil {
		return err
	}
	ctx.Println("\nBy category:")
	for _, cs := range breakdown {
		ctx.Printf("  %-14s %2d habit(s)  %4d completion(s)\n", cs.Category, cs.Habits, cs.Completions)
	}

	daily, err := ctx.Service.DailyCompletions(days)
	if err != nil {
		return err
	}
	ctx.Printf("\nLast %d days:\n", days)
	for _, d := range daily {
		ctx.Printf("  %s %s %d/%d\n", d.Day, bar(d.Completions, d.Total, 20), d.Completions, d.Total)
	}
	return nil
}

// bar renders done/total as a fixed-width block gauge.
func bar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
