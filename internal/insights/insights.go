// Package insights computes aggregate statistics over a habit snapshot.
package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/streak"
)

// StreakEntry is one row of the top streaks table.
type StreakEntry struct {
	HabitID  string
	Name     string
	Category models.Category
	Streak   int
}

// CategoryCount is the total completions of every habit in a category.
type CategoryCount struct {
	Category    models.Category
	Completions int
}

type Summary struct {
	TotalHabits      int
	TotalCompletions int
	AverageStreak    int
	LongestStreak    int
	// BestEver is the longest run found anywhere in any habit's history.
	BestEver   int
	TopStreaks []StreakEntry
	ByCategory []CategoryCount
}

// Compute derives the summary. Current streaks are read from the habits as
// given; callers pass a freshly loaded snapshot.
func Compute(habits []models.Habit) Summary {
	var sum Summary
	sum.TotalHabits = len(habits)
	if len(habits) == 0 {
		return sum
	}

	perCategory := make(map[models.Category]int)
	streakTotal := 0
	for _, h := range habits {
		sum.TotalCompletions += h.TotalCompletions
		perCategory[h.Category] += h.TotalCompletions
		streakTotal += h.Streak
		if h.Streak > sum.LongestStreak {
			sum.LongestStreak = h.Streak
		}
		if best := streak.Longest(h.CompletedDates); best > sum.BestEver {
			sum.BestEver = best
		}
		if h.Streak > 0 {
			sum.TopStreaks = append(sum.TopStreaks, StreakEntry{
				HabitID:  h.ID,
				Name:     h.Name,
				Category: h.Category,
				Streak:   h.Streak,
			})
		}
	}
	sum.AverageStreak = int(math.Round(float64(streakTotal) / float64(len(habits))))

	// Equal streaks keep habit order
	sort.SliceStable(sum.TopStreaks, func(i, j int) bool {
		return sum.TopStreaks[i].Streak > sum.TopStreaks[j].Streak
	})
	if len(sum.TopStreaks) > constants.TopStreaksLimit {
		sum.TopStreaks = sum.TopStreaks[:constants.TopStreaksLimit]
	}

	for _, c := range models.Categories {
		if n := perCategory[c]; n > 0 {
			sum.ByCategory = append(sum.ByCategory, CategoryCount{Category: c, Completions: n})
		}
	}

	return sum
}

const barWidth = 30

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Width(14)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Render formats the summary for the terminal.
func Render(sum Summary) string {
	if sum.TotalHabits == 0 {
		return mutedStyle.Render("Create and complete habits to see insights") + "\n"
	}

	var b strings.Builder

	stats := []struct {
		label string
		value int
	}{
		{"Habits", sum.TotalHabits},
		{"Completions", sum.TotalCompletions},
		{"Avg streak", sum.AverageStreak},
		{"Longest", sum.LongestStreak},
		{"Best ever", sum.BestEver},
	}
	for _, s := range stats {
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render(s.label), valueStyle.Render(fmt.Sprint(s.value)))
	}

	b.WriteString("\n" + headingStyle.Render("Top streaks") + "\n")
	if len(sum.TopStreaks) == 0 {
		b.WriteString(mutedStyle.Render("No active streaks yet") + "\n")
	}
	for i, e := range sum.TopStreaks {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Category.Color())).Render("●")
		fmt.Fprintf(&b, "%d. %s %s %s\n", i+1, dot, e.Name, valueStyle.Render(fmt.Sprintf("%dd", e.Streak)))
	}

	b.WriteString("\n" + headingStyle.Render("Completions by category") + "\n")
	if len(sum.ByCategory) == 0 {
		b.WriteString(mutedStyle.Render("No completions yet") + "\n")
		return b.String()
	}

	most := 0
	for _, c := range sum.ByCategory {
		if c.Completions > most {
			most = c.Completions
		}
	}
	for _, c := range sum.ByCategory {
		width := int(math.Ceil(float64(c.Completions) / float64(most) * barWidth))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Category.Color())).Render(strings.Repeat("█", width))
		fmt.Fprintf(&b, "%s%s %d\n", labelStyle.Render(c.Category.Title()), bar, c.Completions)
	}

	return b.String()
}
