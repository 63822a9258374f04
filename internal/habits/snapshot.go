package habits

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
)

// Snapshot is the export format. Its keys match the persisted entries, so a
// browser localStorage dump of the same keys imports unchanged.
type Snapshot struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exportedAt"`
	Habits       []models.Habit       `json:"habits"`
	Achievements []models.Achievement `json:"achievements"`
}

// Export returns the current collections.
func (s *Store) Export() Snapshot {
	return Snapshot{
		Version:      constants.Version,
		ExportedAt:   s.Now(),
		Habits:       s.Habits(),
		Achievements: s.Achievements(),
	}
}

// Import replaces the habit collection with the contents of an exported
// snapshot, applying the same validation as Load. Imported badges are merged
// onto the current ones and never clear an earned badge. It returns the
// number of habits kept.
func (s *Store) Import(data []byte) (int, error) {
	if err := s.checkLoaded(); err != nil {
		return 0, err
	}

	var raw struct {
		Habits       json.RawMessage `json:"habits"`
		Achievements json.RawMessage `json:"achievements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("failed to parse import file: %w", err)
	}
	if raw.Habits == nil {
		return 0, fmt.Errorf("import file has no habits entry")
	}

	s.habits = decodeHabits(raw.Habits)
	s.achievements = mergeAchievements(s.achievements, decodeAchievements(raw.Achievements))

	s.recomputeStreaks()

	if err := s.saveHabits(); err != nil {
		return 0, err
	}
	if err := s.saveAchievements(); err != nil {
		return 0, err
	}
	logger.Info("Imported snapshot", "habits", len(s.habits))

	if err := s.evaluate(); err != nil {
		return 0, err
	}
	return len(s.habits), nil
}
