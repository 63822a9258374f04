package habits

import (
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/insights"
)

type InsightsCmd struct{}

func (c *InsightsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	ctx.Println(insights.Render(insights.Compute(ctx.Habits.Habits())))
	return nil
}
