package habits

import (
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/models"
)

type AchievementsCmd struct {
	Recent int `help:"Only show the N most recently earned badges." default:"0"`
}

func (c *AchievementsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	if c.Recent > 0 {
		recent := ctx.Habits.RecentAchievements(c.Recent)
		if len(recent) == 0 {
			ctx.Println("No achievements earned yet.")
			return nil
		}
		for _, a := range recent {
			printAchievement(ctx, a)
		}
		return nil
	}

	all := ctx.Habits.Achievements()
	earned := 0
	for _, a := range all {
		if a.Earned() {
			earned++
		}
		printAchievement(ctx, a)
	}
	ctx.Printf("\nEarned: %d/%d\n", earned, len(all))
	return nil
}

func printAchievement(ctx *cli.Context, a models.Achievement) {
	if !a.Earned() {
		ctx.Printf("🔒 %s  %s\n", a.Name, a.Description)
		return
	}
	suffix := ""
	if a.Category != "" {
		suffix = " (" + a.Category.Title() + ")"
	}
	ctx.Printf("%s %s%s  %s, earned %s\n", a.Icon, a.Name, suffix, a.Description, humanize.RelTime(*a.EarnedOn, ctx.Habits.Now(), "ago", "from now"))
}
