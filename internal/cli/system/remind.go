package system

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/notifier"
	"github.com/julianstephens/habitlit/internal/reminder"
)

// RemindCmd sends reminders for habits whose reminder time just passed and
// which are not yet done today. It is meant to run from cron or a timer.
type RemindCmd struct {
	DryRun   bool `help:"Print reminders instead of sending them."`
	Upcoming bool `help:"List the next reminder for every habit and exit."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	if c.Upcoming {
		return c.listUpcoming(ctx)
	}

	if !ctx.Config.Reminders.IsEnabled() {
		if c.DryRun {
			ctx.Println("Reminders are disabled in config.")
		}
		return nil
	}

	habits, err := ctx.Service.ListHabits()
	if err != nil {
		return err
	}

	due := reminder.Due(habits, ctx.Service.Now(), ctx.Config.Reminders.Window())
	if len(due) == 0 && c.DryRun {
		ctx.Println("No reminders due.")
	}

	for _, h := range due {
		msg := fmt.Sprintf("Time for %s (%s)", h.Name, h.ReminderTime)
		if h.CurrentStreak > 0 {
			msg = fmt.Sprintf("%s - keep your %d-day streak going", msg, h.CurrentStreak)
		}

		if c.DryRun || ctx.Notifier == nil {
			ctx.Println("[DryRun] " + msg)
			continue
		}

		err := ctx.Notifier.Notify(context.Background(), msg)
		if errors.Is(err, notifier.ErrTrayNotRunning) {
			ctx.Println("⏰ " + msg)
			continue
		}
		if err != nil {
			logger.Warn("failed to send reminder", "habit", h.ID, "error", err)
			ctx.Printf("Failed to send notification: %v\n", err)
		}
	}
	return nil
}

func (c *RemindCmd) listUpcoming(ctx *cli.Context) error {
	habits, err := ctx.Service.ListHabits()
	if err != nil {
		return err
	}

	now := ctx.Service.Now()
	type upcoming struct {
		name string
		at   string
	}
	var list []upcoming
	for _, h := range habits {
		if h.ReminderTime == "" {
			continue
		}
		next, err := reminder.Next(h.ReminderTime, now)
		if err != nil {
			ctx.Printf("⚠ %s: %v\n", h.Name, err)
			continue
		}
		list = append(list, upcoming{name: h.Name, at: next.Format("2006-01-02 15:04")})
	}

	if len(list) == 0 {
		ctx.Println("No habits have reminders.")
		return nil
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].at < list[j].at })
	for _, u := range list {
		ctx.Printf("  %s  %s\n", u.at, u.name)
	}
	return nil
}
