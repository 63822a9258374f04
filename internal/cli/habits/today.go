package habits

import (
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
)

type TodayCmd struct {
	Category string `help:"Only show habits in this category." short:"c"`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habits, err := selectHabits(ctx, c.Category)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	now := today(ctx)
	ctx.Printf("Habits for %s:\n\n", now.Format(constants.DateFormat))

	done := 0
	for _, h := range habits {
		status := "[ ]"
		if ctx.Habits.IsCompletedOn(h, now) {
			status = "[x]"
			done++
		}
		flame := ""
		if h.Streak > 0 {
			flame = " 🔥"
		}
		ctx.Printf("%s %s  (%s, streak %d%s)\n", status, h.Name, h.Category, h.Streak, flame)
	}

	ctx.Printf("\nCompleted: %d/%d\n", done, len(habits))
	return nil
}
