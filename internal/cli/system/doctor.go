package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitlit/internal/backup"
	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/streak"
	"github.com/julianstephens/habitlit/internal/utils"
)

var errChecksFailed = errors.New("one or more health checks failed")

type DoctorCmd struct {
	Fix bool `help:"Repair habits whose completion history or streaks are inconsistent."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	failed := false
	check := func(name string, err error) bool {
		if err != nil {
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			failed = true
			return false
		}
		ctx.Printf("✓ %s: OK\n", name)
		return true
	}

	reachable := check("Database reachable", ctx.Store.Open())
	if reachable {
		check("Schema", ctx.Store.Check())
	} else {
		ctx.Println("⊘ Schema: SKIPPED (database not reachable)")
	}

	if ctx.IsFileStore() {
		if err := checkBackups(ctx); err != nil {
			ctx.Println("⚠ Backups present: WARNING")
			ctx.Printf("   %v\n", err)
		} else {
			ctx.Println("✓ Backups present: OK")
		}
	}

	if reachable {
		if ok := check("Data validation", cmd.checkData(ctx)); ok {
			cmd.reportHistory(ctx)
		}
	} else {
		ctx.Println("⊘ Data validation: SKIPPED (database not reachable)")
	}

	check("Clock/timezone", checkClock(ctx))

	ctx.Println()
	if failed {
		ctx.Println("Diagnostics completed with errors.")
		return errChecksFailed
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkBackups(ctx *cli.Context) error {
	list, err := backup.NewManager(ctx.Store.Path()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		return errors.New("no backups found - consider creating one with 'habitlit backup create'")
	}
	return nil
}

func (cmd *DoctorCmd) checkData(ctx *cli.Context) error {
	result, err := ctx.Service.Check()
	if err != nil {
		return err
	}
	if !result.HasConflicts() {
		return nil
	}

	if !cmd.Fix {
		return fmt.Errorf("%d problem(s) found (run with --fix to repair)\n%s", len(result.Conflicts), result.FormatReport())
	}

	fixed, err := ctx.Service.Repair()
	if err != nil {
		return fmt.Errorf("repair failed after %d habit(s): %w", fixed, err)
	}
	ctx.Printf("   Repaired %d habit(s)\n", fixed)
	return nil
}

// reportHistory notes habits whose best historical run is longer than their
// recorded longest streak, as with imported history. It never changes them.
func (cmd *DoctorCmd) reportHistory(ctx *cli.Context) {
	habits, err := ctx.Service.ListHabits()
	if err != nil {
		return
	}
	for _, h := range habits {
		if run := streak.LongestRun(h.CompletedDates); run > h.LongestStreak {
			ctx.Printf("   Note: %s has a %d-day run in its history (longest streak %d)\n", h.Name, run, h.LongestStreak)
		}
	}
}

func checkClock(ctx *cli.Context) error {
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("unknown timezone %q", ctx.Config.Timezone)
	}

	now := ctx.Service.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	ctx.Printf("   Today is %s (%s, UTC%s)\n", ctx.Service.Today(), now.Location(), now.Format("-07:00"))
	return nil
}
