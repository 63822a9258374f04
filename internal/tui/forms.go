package tui

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/dateutil"
	"github.com/julianstephens/streakly/internal/habits"
	"github.com/julianstephens/streakly/internal/models"
)

// NewHabitForm creates the add/edit form bound to fm.
func NewHabitForm(fm *HabitFormModel, title string) *huh.Form {
	options := make([]huh.Option[models.Category], 0, len(models.Categories))
	for _, c := range models.Categories {
		options = append(options, huh.NewOption(c.Title(), c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("Drink water").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return habits.ErrEmptyName
					}
					return nil
				}),
			huh.NewSelect[models.Category]().
				Title("Category").
				Options(options...).
				Value(&fm.Category),
			huh.NewInput().
				Title("Target days").
				Description("Optional, e.g. mon,wed,fri").
				Value(&fm.Days).
				Validate(func(s string) error {
					_, err := dateutil.ParseWeekdays(s)
					return err
				}),
		),
	)
}
