package habits

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
)

// decodeHabits fails closed: anything that is not an array of records yields
// an empty collection, and individual records that cannot be trusted are
// dropped. Derived counters are recomputed by the caller.
func decodeHabits(data []byte) []models.Habit {
	habits := []models.Habit{}
	if data == nil {
		return habits
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("Stored habits are malformed, starting empty", "error", err)
		return habits
	}

	seen := make(map[string]bool, len(records))
	for i, raw := range records {
		var h models.Habit
		if err := json.Unmarshal(raw, &h); err != nil {
			logger.Warn("Dropping unreadable habit record", "index", i, "error", err)
			continue
		}
		if h.ID == "" || seen[h.ID] {
			logger.Warn("Dropping habit record with missing or duplicate id", "index", i)
			continue
		}
		if !h.Category.Valid() {
			logger.Warn("Dropping habit record with unknown category", "id", h.ID, "category", h.Category)
			continue
		}
		seen[h.ID] = true

		h.CompletedDates = normalizeStamps(h.CompletedDates)
		h.TargetDays = normalizeWeekdays(h.TargetDays)
		h.TotalCompletions = len(h.CompletedDates)
		habits = append(habits, h)
	}

	return habits
}

// decodeAchievements merges stored badges onto the default set by id, so a
// missing badge reappears unearned and unknown ids are discarded. Display
// metadata always comes from the defaults.
func decodeAchievements(data []byte) []models.Achievement {
	defaults := models.DefaultAchievements()
	if data == nil {
		return defaults
	}

	var stored []models.Achievement
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("Stored achievements are malformed, using defaults", "error", err)
		return defaults
	}

	byID := make(map[string]models.Achievement, len(stored))
	for _, a := range stored {
		if _, dup := byID[a.ID]; !dup {
			byID[a.ID] = a
		}
	}

	for i := range defaults {
		a, ok := byID[defaults[i].ID]
		if !ok || !a.Earned() {
			continue
		}
		defaults[i].EarnedOn = a.EarnedOn
		if a.Category.Valid() {
			defaults[i].Category = a.Category
		}
	}
	return defaults
}

// mergeAchievements overlays imported badges onto current. Earned badges
// are write-once: an already earned slot keeps its earnedOn and category, and
// only unearned slots take the imported values.
func mergeAchievements(current, imported []models.Achievement) []models.Achievement {
	out := make([]models.Achievement, len(current))
	copy(out, current)

	byID := make(map[string]models.Achievement, len(imported))
	for _, a := range imported {
		if a.Earned() {
			byID[a.ID] = a
		}
	}

	for i := range out {
		if out[i].Earned() {
			continue
		}
		if a, ok := byID[out[i].ID]; ok {
			out[i].EarnedOn = a.EarnedOn
			out[i].Category = a.Category
		}
	}
	return out
}

// normalizeStamps drops malformed and duplicate day stamps and sorts the rest.
func normalizeStamps(dates []string) []string {
	out := make([]string, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		t, err := time.Parse(constants.DateFormat, d)
		if err != nil {
			continue
		}
		stamp := t.Format(constants.DateFormat)
		if seen[stamp] {
			continue
		}
		seen[stamp] = true
		out = append(out, stamp)
	}
	sort.Strings(out)
	return out
}

func normalizeWeekdays(days []time.Weekday) []time.Weekday {
	if len(days) == 0 {
		return nil
	}
	var set [7]bool
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			set[d] = true
		}
	}
	var out []time.Weekday
	for d, ok := range set {
		if ok {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}
