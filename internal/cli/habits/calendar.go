package habits

import (
	"github.com/julianstephens/streakly/internal/calendar"
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/dateutil"
	"github.com/julianstephens/streakly/internal/models"
)

type CalendarCmd struct {
	Ref   string `arg:"" optional:"" help:"Habit name or id (default: every habit)."`
	Month string `help:"Month in YYYY-MM format (default: this month)."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	now := today(ctx)
	month := dateutil.StartOfMonth(now)
	if c.Month != "" {
		m, err := dateutil.ParseMonth(c.Month, ctx.Habits.Location())
		if err != nil {
			return err
		}
		month = m
	}

	habits := ctx.Habits.Habits()
	if c.Ref != "" {
		h, err := ctx.Habits.Find(c.Ref)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for i := range habits {
		h := habits[i]
		grid := calendar.Month(&h, month.Year(), month.Month(), now)
		ctx.Printf("%s  (%d/%d days)\n", h.Name, grid.Completed(), len(dateutil.MonthDays(month.Year(), month.Month(), month.Location())))
		ctx.Println(calendar.Render(grid, h.Category.Color()))
		if i < len(habits)-1 {
			ctx.Println()
		}
	}
	return nil
}
