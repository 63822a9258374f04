package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/calendar"
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/dateutil"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/streak"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an existing habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Toggle HabitToggleCmd `cmd:"" help:"Toggle a habit's completion for a day."`
	Show   HabitShowCmd   `cmd:"" help:"Show details for one habit."`
	Log    HabitLogCmd    `cmd:"" help:"Show habit log (ASCII history)."`
}

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `help:"Category (health, fitness, learning, productivity, mindfulness, social, other)." default:"other" short:"c"`
	Days     string `help:"Target weekdays, e.g. mon,wed,fri. Stored for reference only."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	category, err := cli.ParseCategory(c.Category)
	if err != nil {
		return err
	}
	days, err := dateutil.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	habit, err := ctx.Habits.CreateHabit(c.Name, category, days)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s) [%s]\n", habit.Name, habit.Category, shortID(habit.ID))
	return nil
}

type HabitEditCmd struct {
	Ref      string  `arg:"" help:"Habit name or id."`
	Name     *string `help:"New name."`
	Category *string `help:"New category." short:"c"`
	Days     *string `help:"New target weekdays. Pass an empty string to clear."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habit, err := ctx.Habits.Find(c.Ref)
	if err != nil {
		return err
	}

	if c.Name == nil && c.Category == nil && c.Days == nil {
		return fmt.Errorf("nothing to change: pass --name, --category or --days")
	}

	if c.Name != nil {
		habit.Name = *c.Name
	}
	if c.Category != nil {
		category, err := models.ParseCategory(*c.Category)
		if err != nil {
			return err
		}
		habit.Category = category
	}
	if c.Days != nil {
		days, err := dateutil.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		habit.TargetDays = days
	}

	if err := ctx.Habits.UpdateHabit(habit); err != nil {
		return err
	}

	ctx.Printf("Updated habit: %s\n", strings.TrimSpace(habit.Name))
	return nil
}

type HabitDeleteCmd struct {
	Ref string `arg:"" help:"Habit name or id to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habit, err := ctx.Habits.Find(c.Ref)
	if err != nil {
		return err
	}

	if err := ctx.Habits.DeleteHabit(habit.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitListCmd struct {
	Category string `help:"Only list habits in this category." short:"c"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
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

	ctx.Printf("%-8s  %-24s  %-12s  %6s  %5s\n", "ID", "NAME", "CATEGORY", "STREAK", "TOTAL")
	for _, h := range habits {
		ctx.Printf("%-8s  %s  %-12s  %6d  %5d\n",
			shortID(h.ID), cli.Truncate(h.Name, 24), h.Category, h.Streak, h.TotalCompletions)
	}
	return nil
}

type HabitToggleCmd struct {
	Ref  string `arg:"" help:"Habit name or id."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habit, err := ctx.Habits.Find(c.Ref)
	if err != nil {
		return err
	}

	day := ctx.Habits.Now()
	if c.Date != "" {
		day, err = dateutil.ParseDay(c.Date, ctx.Habits.Location())
		if err != nil {
			return err
		}
	}

	if err := ctx.Habits.ToggleCompletion(habit.ID, day); err != nil {
		return err
	}

	updated, _ := ctx.Habits.Get(habit.ID)
	stamp := dateutil.Stamp(day.In(ctx.Habits.Location()))
	if ctx.Habits.IsCompletedOn(updated, day) {
		ctx.Printf("Marked %q done for %s (streak: %d)\n", updated.Name, stamp, updated.Streak)
	} else {
		ctx.Printf("Unmarked %q for %s (streak: %d)\n", updated.Name, stamp, updated.Streak)
	}
	return nil
}

type HabitShowCmd struct {
	Ref string `arg:"" help:"Habit name or id."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.Habits.Find(c.Ref)
	if err != nil {
		return err
	}

	now := today(ctx)
	ctx.Printf("%s\n", h.Name)
	ctx.Printf("  ID:          %s\n", h.ID)
	ctx.Printf("  Category:    %s\n", h.Category.Title())
	ctx.Printf("  Created:     %s\n", h.CreatedAt.In(ctx.Habits.Location()).Format(constants.DateFormat))
	ctx.Printf("  Streak:      %d day(s) (%d%% of days since created)\n", h.Streak, ctx.Habits.StreakPercentage(h))
	ctx.Printf("  Best streak: %d day(s)\n", streak.Longest(h.CompletedDates))
	ctx.Printf("  Completions: %d\n", h.TotalCompletions)
	if len(h.TargetDays) > 0 {
		ctx.Printf("  Target days: %s\n", dateutil.FormatWeekdays(h.TargetDays))
	}
	if n := len(h.CompletedDates); n > 0 {
		ctx.Printf("  Last done:   %s\n", h.CompletedDates[n-1])
	}
	ctx.Println()

	grid := calendar.Month(&h, now.Year(), now.Month(), now)
	ctx.Println(calendar.Render(grid, h.Category.Color()))
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	var selected []models.Habit
	if c.Habit != "" {
		h, err := ctx.Habits.Find(c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{h}
	} else {
		selected = ctx.Habits.Habits()
	}

	if len(selected) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	endDay := dateutil.StartOfDay(today(ctx))
	startDay := dateutil.AddDays(endDay, -(c.Days - 1))

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)

	const nameWidth = 20
	ctx.Printf("%-*s", nameWidth, "Habit")
	for i := 0; i < c.Days; i++ {
		ctx.Printf(" %5s", dateutil.AddDays(startDay, i).Format("01/02"))
	}
	ctx.Println()
	ctx.Println(strings.Repeat("-", nameWidth+6*c.Days))

	for _, h := range selected {
		ctx.Printf("%s", cli.Truncate(h.Name, nameWidth))
		for i := 0; i < c.Days; i++ {
			if h.HasCompletion(dateutil.Stamp(dateutil.AddDays(startDay, i))) {
				ctx.Printf("  x   ")
			} else {
				ctx.Printf("  .   ")
			}
		}
		ctx.Println()
	}
	return nil
}

func selectHabits(ctx *cli.Context, category string) ([]models.Habit, error) {
	if strings.TrimSpace(category) == "" {
		return ctx.Habits.Habits(), nil
	}
	c, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return ctx.Habits.HabitsByCategory(c), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// today returns the current day in the store's location.
func today(ctx *cli.Context) time.Time {
	return ctx.Habits.Now().In(ctx.Habits.Location())
}
