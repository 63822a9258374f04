// Package streak computes streak metrics from a habit's completion history.
package streak

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/dateutil"
)

// daySet normalizes day stamps into a set keyed by canonical YYYY-MM-DD.
// Stamps that do not parse are dropped.
func daySet(completedDates []string) map[string]bool {
	set := make(map[string]bool, len(completedDates))
	for _, d := range completedDates {
		t, err := time.Parse(constants.DateFormat, d)
		if err != nil {
			continue
		}
		set[dateutil.Stamp(t)] = true
	}
	return set
}

// Calculate returns the number of consecutive completed days ending today.
// A streak requires a completion on today itself; a missing today yields 0.
func Calculate(completedDates []string, today time.Time) int {
	if len(completedDates) == 0 {
		return 0
	}

	set := daySet(completedDates)
	current := dateutil.StartOfDay(today)
	if !set[dateutil.Stamp(current)] {
		return 0
	}

	streak := 1
	for i := 1; i < constants.MaxStreakWalkDays; i++ {
		current = dateutil.AddDays(current, -1)
		if !set[dateutil.Stamp(current)] {
			break
		}
		streak++
	}

	return streak
}

// Longest returns the longest run of consecutive days anywhere in the history.
func Longest(completedDates []string) int {
	set := daySet(completedDates)
	if len(set) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(set))
	for stamp := range set {
		t, _ := time.Parse(constants.DateFormat, stamp)
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if dateutil.SameDay(dateutil.AddDays(days[i-1], 1), days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Percentage returns the current streak as a share of the days since the
// habit was created, counting the creation day as day 1. The result is
// clamped to [0, 100].
func Percentage(streak int, createdAt, now time.Time) int {
	daysSinceCreation := int(math.Floor(now.Sub(createdAt).Hours()/24)) + 1
	if daysSinceCreation <= 0 || streak <= 0 {
		return 0
	}

	pct := math.Round(float64(streak) / float64(daysSinceCreation) * 100)
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}
	return int(math.Min(100, pct))
}
