package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/utils"
)

func NewHabitForm(fm *HabitFormModel) *huh.Form {
	options := make([]huh.Option[string], len(constants.Categories))
	for i, c := range constants.Categories {
		options[i] = huh.NewOption(c, c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewSelect[string]().
				Title("Category").
				Options(options...).
				Value(&fm.Category),
			huh.NewInput().
				Title("Reminder (HH:MM, optional)").
				Value(&fm.ReminderTime).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s != "" && !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("reminder must be HH:MM")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
