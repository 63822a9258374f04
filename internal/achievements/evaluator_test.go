package achievements

import (
	"testing"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
)

func find(t *testing.T, list []models.Achievement, id string) models.Achievement {
	t.Helper()
	for _, a := range list {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("achievement %s not found", id)
	return models.Achievement{}
}

func TestEvaluateStreakRules(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		streaks    []int
		wantEarned []string
	}{
		{name: "no habits", streaks: nil, wantEarned: nil},
		{name: "below threshold", streaks: []int{2}, wantEarned: nil},
		{name: "three days", streaks: []int{3}, wantEarned: []string{"1"}},
		{name: "seven days", streaks: []int{1, 7}, wantEarned: []string{"1", "2"}},
		{name: "thirty days", streaks: []int{30}, wantEarned: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var habits []models.Habit
			for _, s := range tt.streaks {
				habits = append(habits, models.Habit{ID: "h", Category: models.CategoryFitness, Streak: s})
			}

			updated, earned := NewEvaluator().Evaluate(habits, models.DefaultAchievements(), now)
			if len(earned) != len(tt.wantEarned) {
				t.Fatalf("earned %d achievements, want %d", len(earned), len(tt.wantEarned))
			}
			for i, id := range tt.wantEarned {
				if earned[i].ID != id {
					t.Errorf("earned[%d] = %s, want %s", i, earned[i].ID, id)
				}
				a := find(t, updated, id)
				if a.EarnedOn == nil || !a.EarnedOn.Equal(now) {
					t.Errorf("achievement %s EarnedOn = %v, want %v", id, a.EarnedOn, now)
				}
				if a.Category != models.CategoryFitness {
					t.Errorf("achievement %s category = %q, want fitness", id, a.Category)
				}
			}
		})
	}
}

func TestEvaluateTagsFirstMatchingHabit(t *testing.T) {
	habits := []models.Habit{
		{ID: "a", Category: models.CategoryLearning, Streak: 1},
		{ID: "b", Category: models.CategorySocial, Streak: 4},
		{ID: "c", Category: models.CategoryHealth, Streak: 9},
	}
	updated, _ := NewEvaluator().Evaluate(habits, models.DefaultAchievements(), time.Now())

	if got := find(t, updated, "1").Category; got != models.CategorySocial {
		t.Errorf("first streak category = %q, want social", got)
	}
	if got := find(t, updated, "2").Category; got != models.CategoryHealth {
		t.Errorf("consistency master category = %q, want health", got)
	}
}

func TestEvaluateDiverseAchiever(t *testing.T) {
	now := time.Now()
	two := []models.Habit{
		{ID: "a", Category: models.CategoryHealth},
		{ID: "b", Category: models.CategoryHealth},
		{ID: "c", Category: models.CategoryLearning},
	}
	_, earned := NewEvaluator().Evaluate(two, models.DefaultAchievements(), now)
	if len(earned) != 0 {
		t.Fatalf("two distinct categories earned %v", earned)
	}

	three := append(two, models.Habit{ID: "d", Category: models.CategoryOther})
	updated, earned := NewEvaluator().Evaluate(three, models.DefaultAchievements(), now)
	if len(earned) != 1 || earned[0].ID != constants.AchievementDiverseAchiever {
		t.Fatalf("expected only diverse achiever, got %v", earned)
	}
	if got := find(t, updated, "4").Category; got != "" {
		t.Errorf("diverse achiever should have no category tag, got %q", got)
	}
}

func TestEvaluateIsMonotonic(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.AddDate(0, 1, 0)
	eval := NewEvaluator()

	habits := []models.Habit{{ID: "a", Category: models.CategoryFitness, Streak: 3}}
	updated, _ := eval.Evaluate(habits, models.DefaultAchievements(), first)

	// Streak broken and category changed: the badge must keep its first award.
	habits = []models.Habit{{ID: "a", Category: models.CategoryHealth, Streak: 0}}
	updated, earned := eval.Evaluate(habits, updated, later)
	if len(earned) != 0 {
		t.Fatalf("expected no new achievements, got %v", earned)
	}

	// Streak regained: still the original award.
	habits[0].Streak = 5
	updated, earned = eval.Evaluate(habits, updated, later)
	if len(earned) != 0 {
		t.Fatalf("earned badge was awarded twice: %v", earned)
	}

	a := find(t, updated, "1")
	if a.EarnedOn == nil || !a.EarnedOn.Equal(first) {
		t.Errorf("EarnedOn = %v, want %v", a.EarnedOn, first)
	}
	if a.Category != models.CategoryFitness {
		t.Errorf("Category = %q, want fitness", a.Category)
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	current := models.DefaultAchievements()
	habits := []models.Habit{{ID: "a", Category: models.CategoryFitness, Streak: 30}}
	NewEvaluator().Evaluate(habits, current, time.Now())

	for _, a := range current {
		if a.Earned() {
			t.Errorf("input achievement %s was mutated", a.ID)
		}
	}
}

func TestPerfectWeekIsNeverEvaluated(t *testing.T) {
	var habits []models.Habit
	for _, c := range models.Categories {
		habits = append(habits, models.Habit{ID: string(c), Category: c, Streak: 100})
	}
	updated, earned := NewEvaluator().Evaluate(habits, models.DefaultAchievements(), time.Now())

	if len(earned) != 4 {
		t.Errorf("expected 4 earned badges, got %d", len(earned))
	}
	if find(t, updated, constants.AchievementPerfectWeek).Earned() {
		t.Error("perfect week should never be awarded")
	}

	var slot *Rule
	for _, r := range NewEvaluator().Rules() {
		if r.AchievementID == constants.AchievementPerfectWeek {
			r := r
			slot = &r
		}
	}
	if slot == nil || slot.Name != "perfect-week" {
		t.Fatalf("perfect week rule slot missing: %+v", slot)
	}
	if slot.Check != nil {
		t.Error("perfect week rule slot should have no condition")
	}
}

func TestEvaluateSkipsUnknownIDs(t *testing.T) {
	current := []models.Achievement{{ID: "custom", Name: "Custom"}}
	habits := []models.Habit{{ID: "a", Category: models.CategoryFitness, Streak: 30}}
	updated, earned := NewEvaluator().Evaluate(habits, current, time.Now())

	if len(earned) != 0 {
		t.Errorf("expected nothing earned without matching ids, got %v", earned)
	}
	if len(updated) != 1 || updated[0].Earned() {
		t.Errorf("unknown achievement should be left untouched: %+v", updated)
	}
}

func TestCustomRules(t *testing.T) {
	always := Rule{
		Name:          "always",
		AchievementID: "x",
		Check: func([]models.Habit) (models.Category, bool) {
			return models.CategoryOther, true
		},
	}
	_, earned := NewEvaluator(always).Evaluate(nil, []models.Achievement{{ID: "x"}}, time.Now())
	if len(earned) != 1 || earned[0].Category != models.CategoryOther {
		t.Errorf("custom rule not applied: %v", earned)
	}
}
