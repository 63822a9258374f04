package models

import (
	"time"

	"github.com/julianstephens/streakly/internal/constants"
)

// Achievement is a predefined badge unlocked once and kept forever
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	EarnedOn    *time.Time `json:"earnedOn,omitempty"`
	Category    Category   `json:"category,omitempty"` // only set by habit-scoped badges
}

// Earned reports whether the badge has been unlocked.
func (a Achievement) Earned() bool {
	return a.EarnedOn != nil
}

// DefaultAchievements returns a fresh copy of the built-in badge set.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			ID:          constants.AchievementFirstStreak,
			Name:        "First Streak",
			Description: "Complete a habit for 3 days in a row",
			Icon:        "🔥",
		},
		{
			ID:          constants.AchievementConsistencyMaster,
			Name:        "Consistency Master",
			Description: "Complete a habit for 7 days in a row",
			Icon:        "⚡",
		},
		{
			ID:          constants.AchievementHabitChampion,
			Name:        "Habit Champion",
			Description: "Complete a habit for 30 days in a row",
			Icon:        "🏆",
		},
		{
			ID:          constants.AchievementDiverseAchiever,
			Name:        "Diverse Achiever",
			Description: "Have active habits in 3 different categories",
			Icon:        "🌈",
		},
		{
			ID:          constants.AchievementPerfectWeek,
			Name:        "Perfect Week",
			Description: "Complete all habits for 7 days in a row",
			Icon:        "🌟",
		},
	}
}
