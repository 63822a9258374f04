package constants

const (
	// MaxStreakWalkDays bounds the backward walk when counting a streak.
	MaxStreakWalkDays = 1000

	// Achievement thresholds
	FirstStreakDays       = 3
	ConsistencyMasterDays = 7
	HabitChampionDays     = 30
	DiverseCategoryCount  = 3

	// Achievement ids from the default badge set
	AchievementFirstStreak       = "1"
	AchievementConsistencyMaster = "2"
	AchievementHabitChampion     = "3"
	AchievementDiverseAchiever   = "4"
	AchievementPerfectWeek       = "5"

	DefaultRecentAchievements = 3
	TopStreaksLimit           = 5

	// Notification texts
	MsgHabitCreated      = "New habit created!"
	MsgHabitUpdated      = "Habit updated!"
	MsgHabitDeleted      = "Habit deleted!"
	MsgAchievementEarned = "You've unlocked a new achievement!"
)
