// Package achievements evaluates the fixed badge rules against a habit
// snapshot. Badges only ever move from unearned to earned.
package achievements

import (
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
)

// Rule decides whether the badge with AchievementID is earned. Check returns
// the category to tag the badge with (empty for badges not scoped to a habit)
// and whether the condition holds.
type Rule struct {
	Name          string
	AchievementID string
	Check         func(habits []models.Habit) (models.Category, bool)
}

// Evaluator applies an ordered rule set.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator returns an evaluator over the given rules, or over
// DefaultRules when none are supplied.
func NewEvaluator(rules ...Rule) *Evaluator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Evaluator{rules: rules}
}

// Rules returns the rule set in evaluation order.
func (e *Evaluator) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// DefaultRules returns the built-in rules. The perfect-week slot is declared
// so the badge has a named owner, but it has no condition and never fires.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "first-streak", AchievementID: constants.AchievementFirstStreak, Check: streakAtLeast(constants.FirstStreakDays)},
		{Name: "consistency-master", AchievementID: constants.AchievementConsistencyMaster, Check: streakAtLeast(constants.ConsistencyMasterDays)},
		{Name: "habit-champion", AchievementID: constants.AchievementHabitChampion, Check: streakAtLeast(constants.HabitChampionDays)},
		{Name: "diverse-achiever", AchievementID: constants.AchievementDiverseAchiever, Check: distinctCategories(constants.DiverseCategoryCount)},
		{Name: "perfect-week", AchievementID: constants.AchievementPerfectWeek},
	}
}

// streakAtLeast fires for the first habit, in collection order, whose streak
// reaches days, tagging that habit's category.
func streakAtLeast(days int) func([]models.Habit) (models.Category, bool) {
	return func(habits []models.Habit) (models.Category, bool) {
		for _, h := range habits {
			if h.Streak >= days {
				return h.Category, true
			}
		}
		return "", false
	}
}

func distinctCategories(n int) func([]models.Habit) (models.Category, bool) {
	return func(habits []models.Habit) (models.Category, bool) {
		seen := make(map[models.Category]bool)
		for _, h := range habits {
			seen[h.Category] = true
		}
		return "", len(seen) >= n
	}
}

// Evaluate returns a copy of current with every newly satisfied badge marked
// earned at now, plus the list of badges that transitioned during this pass.
// Earned badges are never re-evaluated, and current is left untouched.
func (e *Evaluator) Evaluate(habits []models.Habit, current []models.Achievement, now time.Time) ([]models.Achievement, []models.Achievement) {
	updated := make([]models.Achievement, len(current))
	copy(updated, current)

	index := make(map[string]int, len(updated))
	for i, a := range updated {
		if _, ok := index[a.ID]; !ok {
			index[a.ID] = i
		}
	}

	var earned []models.Achievement
	for _, rule := range e.rules {
		if rule.Check == nil {
			continue
		}
		i, ok := index[rule.AchievementID]
		if !ok || updated[i].Earned() {
			continue
		}
		category, hit := rule.Check(habits)
		if !hit {
			continue
		}
		earnedOn := now
		updated[i].EarnedOn = &earnedOn
		updated[i].Category = category
		earned = append(earned, updated[i])
	}

	return updated, earned
}
