package habits

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/storage"
)

// fixedNow is a Wednesday afternoon in UTC.
var fixedNow = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

type testEnv struct {
	store    *Store
	provider *storage.JSONStore
	rec      *notifier.Recorder
	now      *time.Time
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("habit-%03d", n)
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	provider := storage.NewJSONStore(filepath.Join(t.TempDir(), "streakly.json"))
	if err := provider.Init(); err != nil {
		t.Fatalf("failed to init provider: %v", err)
	}

	env := &testEnv{provider: provider, rec: &notifier.Recorder{}}
	now := fixedNow
	env.now = &now
	env.store = env.open(t)
	return env
}

// open builds a fresh store over the same provider, as a restart would.
func (e *testEnv) open(t *testing.T) *Store {
	t.Helper()
	s := New(e.provider,
		WithClock(func() time.Time { return *e.now }),
		WithLocation(time.UTC),
		WithNotifier(e.rec),
		WithIDGenerator(sequentialIDs()),
	)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func mustCreate(t *testing.T, s *Store, name string, c models.Category) models.Habit {
	t.Helper()
	h, err := s.CreateHabit(name, c, nil)
	if err != nil {
		t.Fatalf("CreateHabit(%q) failed: %v", name, err)
	}
	return h
}

func achievement(s *Store, id string) models.Achievement {
	for _, a := range s.Achievements() {
		if a.ID == id {
			return a
		}
	}
	return models.Achievement{}
}

func TestCreateHabit(t *testing.T) {
	env := newTestEnv(t)

	h, err := env.store.CreateHabit("  Meditate  ", models.CategoryMindfulness, []time.Weekday{time.Monday, time.Monday, time.Friday})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if h.ID != "habit-001" || h.Name != "Meditate" {
		t.Errorf("unexpected habit %+v", h)
	}
	if h.Streak != 0 || h.TotalCompletions != 0 || len(h.CompletedDates) != 0 {
		t.Errorf("new habit should start empty: %+v", h)
	}
	if !h.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", h.CreatedAt, fixedNow)
	}
	if len(h.TargetDays) != 2 {
		t.Errorf("TargetDays = %v, want deduplicated pair", h.TargetDays)
	}

	msgs := env.rec.Messages()
	if len(msgs) != 1 || msgs[0] != constants.MsgHabitCreated {
		t.Errorf("notifications = %v", msgs)
	}
}

func TestCreateHabitValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		habit    string
		category models.Category
		want     error
	}{
		{name: "empty name", habit: "", category: models.CategoryHealth, want: ErrEmptyName},
		{name: "whitespace name", habit: "   ", category: models.CategoryHealth, want: ErrEmptyName},
		{name: "unknown category", habit: "Run", category: "cardio", want: ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.store.CreateHabit(tt.habit, tt.category, nil); !errors.Is(err, tt.want) {
				t.Errorf("CreateHabit() error = %v, want %v", err, tt.want)
			}
		})
	}

	if len(env.store.Habits()) != 0 {
		t.Error("rejected habits must not be stored")
	}
}

func TestToggleTodayRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	h := mustCreate(t, env.store, "Meditate", models.CategoryMindfulness)

	if err := env.store.ToggleToday(h.ID); err != nil {
		t.Fatalf("ToggleToday failed: %v", err)
	}
	got, _ := env.store.Get(h.ID)
	if got.Streak != 1 || got.TotalCompletions != 1 {
		t.Errorf("after first toggle: streak=%d total=%d", got.Streak, got.TotalCompletions)
	}
	if !env.store.IsCompletedOn(got, fixedNow) {
		t.Error("today should be completed")
	}

	if err := env.store.ToggleToday(h.ID); err != nil {
		t.Fatalf("ToggleToday failed: %v", err)
	}
	got, _ = env.store.Get(h.ID)
	if got.Streak != 0 || got.TotalCompletions != 0 {
		t.Errorf("after second toggle: streak=%d total=%d", got.Streak, got.TotalCompletions)
	}
}

func TestToggleIsIdempotentForPastDay(t *testing.T) {
	env := newTestEnv(t)
	h := mustCreate(t, env.store, "Read", models.CategoryLearning)

	for _, d := range []int{0, -1} {
		if err := env.store.ToggleCompletion(h.ID, fixedNow.AddDate(0, 0, d)); err != nil {
			t.Fatal(err)
		}
	}
	before, _ := env.store.Get(h.ID)

	past := fixedNow.AddDate(0, 0, -5)
	for i := 0; i < 2; i++ {
		if err := env.store.ToggleCompletion(h.ID, past); err != nil {
			t.Fatal(err)
		}
	}
	after, _ := env.store.Get(h.ID)

	if after.Streak != before.Streak || after.TotalCompletions != before.TotalCompletions {
		t.Errorf("double toggle changed state: before %+v after %+v", before, after)
	}
}

func TestToggleNormalizesToStoreLocation(t *testing.T) {
	provider := storage.NewJSONStore(filepath.Join(t.TempDir(), "s.json"))
	if err := provider.Init(); err != nil {
		t.Fatal(err)
	}
	tokyo := time.FixedZone("JST", 9*60*60)
	s := New(provider, WithClock(func() time.Time { return fixedNow }), WithLocation(tokyo))
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}

	h, err := s.CreateHabit("Journal", models.CategoryMindfulness, nil)
	if err != nil {
		t.Fatal(err)
	}
	// 20:00 UTC on the 13th is already the 14th in Tokyo
	if err := s.ToggleCompletion(h.ID, time.Date(2024, 3, 13, 20, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(h.ID)
	if len(got.CompletedDates) != 1 || got.CompletedDates[0] != "2024-03-14" {
		t.Errorf("CompletedDates = %v, want [2024-03-14]", got.CompletedDates)
	}
}

func TestFirstStreakAchievement(t *testing.T) {
	env := newTestEnv(t)
	h := mustCreate(t, env.store, "Run", models.CategoryFitness)

	for _, d := range []int{-2, -1} {
		if err := env.store.ToggleCompletion(h.ID, fixedNow.AddDate(0, 0, d)); err != nil {
			t.Fatal(err)
		}
	}
	if achievement(env.store, constants.AchievementFirstStreak).Earned() {
		t.Fatal("first streak earned too early")
	}

	if err := env.store.ToggleToday(h.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := env.store.Get(h.ID)
	if got.Streak != 3 {
		t.Fatalf("streak = %d, want 3", got.Streak)
	}

	a := achievement(env.store, constants.AchievementFirstStreak)
	if !a.Earned() || a.Category != models.CategoryFitness {
		t.Errorf("first streak = %+v, want earned with fitness tag", a)
	}
	if !a.EarnedOn.Equal(fixedNow) {
		t.Errorf("EarnedOn = %v, want %v", a.EarnedOn, fixedNow)
	}

	last := env.rec.Messages()[len(env.rec.Messages())-1]
	if last != constants.MsgAchievementEarned {
		t.Errorf("last notification = %q", last)
	}

	// Un-marking today drops the streak but never the badge
	if err := env.store.ToggleToday(h.ID); err != nil {
		t.Fatal(err)
	}
	if !achievement(env.store, constants.AchievementFirstStreak).Earned() {
		t.Error("earned badge was cleared")
	}
}

func TestDiverseAchiever(t *testing.T) {
	env := newTestEnv(t)
	mustCreate(t, env.store, "Run", models.CategoryFitness)
	mustCreate(t, env.store, "Read", models.CategoryLearning)
	if achievement(env.store, constants.AchievementDiverseAchiever).Earned() {
		t.Fatal("diverse achiever needs three categories")
	}
	mustCreate(t, env.store, "Call mum", models.CategorySocial)

	a := achievement(env.store, constants.AchievementDiverseAchiever)
	if !a.Earned() {
		t.Fatal("diverse achiever should be earned")
	}
	if a.Category != "" {
		t.Errorf("diverse achiever should have no category tag, got %q", a.Category)
	}

	count := 0
	for _, m := range env.rec.Messages() {
		if m == constants.MsgAchievementEarned {
			count++
		}
	}
	if count != 1 {
		t.Errorf("achievement toasts = %d, want 1", count)
	}
}

func TestDeleteHabit(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreate(t, env.store, "Run", models.CategoryFitness)
	b := mustCreate(t, env.store, "Swim", models.CategoryFitness)
	if err := env.store.ToggleToday(b.ID); err != nil {
		t.Fatal(err)
	}

	if err := env.store.DeleteHabit(a.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	fitness := env.store.HabitsByCategory(models.CategoryFitness)
	if len(fitness) != 1 || fitness[0].ID != b.ID {
		t.Errorf("HabitsByCategory = %+v", fitness)
	}
	if fitness[0].Streak != 1 {
		t.Errorf("other habit's streak changed to %d", fitness[0].Streak)
	}
	if _, err := env.store.Find(a.ID); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("deleted habit still found: %v", err)
	}

	msgs := env.rec.Messages()
	if msgs[len(msgs)-1] != constants.MsgHabitDeleted {
		t.Errorf("last notification = %q", msgs[len(msgs)-1])
	}
}

func TestMissingIDIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	mustCreate(t, env.store, "Run", models.CategoryFitness)
	before := len(env.rec.Messages())

	if err := env.store.DeleteHabit("nope"); err != nil {
		t.Errorf("DeleteHabit: %v", err)
	}
	if err := env.store.ToggleToday("nope"); err != nil {
		t.Errorf("ToggleToday: %v", err)
	}
	if err := env.store.UpdateHabit(models.Habit{ID: "nope", Name: "x", Category: models.CategoryOther}); err != nil {
		t.Errorf("UpdateHabit: %v", err)
	}

	if len(env.rec.Messages()) != before {
		t.Error("no-op mutations must not notify")
	}
	if len(env.store.Habits()) != 1 {
		t.Error("no-op mutations changed the collection")
	}
}

func TestUpdateHabitKeepsIdentityAndDerivedFields(t *testing.T) {
	env := newTestEnv(t)
	h := mustCreate(t, env.store, "Run", models.CategoryFitness)

	edited := h
	edited.Name = "Morning run"
	edited.Category = models.CategoryHealth
	edited.CreatedAt = fixedNow.AddDate(-1, 0, 0)
	edited.CompletedDates = []string{"2024-03-13", "2024-03-12", "2024-03-12", "garbage"}
	edited.TotalCompletions = 99
	edited.Streak = 42

	if err := env.store.UpdateHabit(edited); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}

	got, _ := env.store.Get(h.ID)
	if got.Name != "Morning run" || got.Category != models.CategoryHealth {
		t.Errorf("editable fields not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(h.CreatedAt) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}
	if got.TotalCompletions != 2 || got.Streak != 2 {
		t.Errorf("derived fields = total %d streak %d, want 2 and 2", got.TotalCompletions, got.Streak)
	}

	edited.Name = ""
	if err := env.store.UpdateHabit(edited); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestFind(t *testing.T) {
	env := newTestEnv(t)
	mustCreate(t, env.store, "Run", models.CategoryFitness)
	mustCreate(t, env.store, "Read", models.CategoryLearning)

	tests := []struct {
		ref     string
		wantID  string
		wantErr error
	}{
		{ref: "habit-001", wantID: "habit-001"},
		{ref: "READ", wantID: "habit-002"},
		{ref: "habit-00", wantErr: ErrAmbiguousRef},
		{ref: "habit-002", wantID: "habit-002"},
		{ref: "Swim", wantErr: ErrHabitNotFound},
		{ref: "", wantErr: ErrHabitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			h, err := env.store.Find(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Find(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil || h.ID != tt.wantID {
				t.Errorf("Find(%q) = %s, %v; want %s", tt.ref, h.ID, err, tt.wantID)
			}
		})
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	env := newTestEnv(t)
	h := mustCreate(t, env.store, "Run", models.CategoryFitness)
	for _, d := range []int{-2, -1, 0} {
		if err := env.store.ToggleCompletion(h.ID, fixedNow.AddDate(0, 0, d)); err != nil {
			t.Fatal(err)
		}
	}

	reopened := env.open(t)
	got, ok := reopened.Get(h.ID)
	if !ok || got.Streak != 3 || got.TotalCompletions != 3 {
		t.Errorf("reloaded habit = %+v", got)
	}
	if !achievement(reopened, constants.AchievementFirstStreak).Earned() {
		t.Error("earned badge not persisted")
	}

	// Two days later the streak is broken but the badge stays
	*env.now = fixedNow.AddDate(0, 0, 2)
	later := env.open(t)
	got, _ = later.Get(h.ID)
	if got.Streak != 0 {
		t.Errorf("streak should be recomputed on load, got %d", got.Streak)
	}
	if !achievement(later, constants.AchievementFirstStreak).Earned() {
		t.Error("badge lost after streak broke")
	}
}

func TestLoadFailsClosed(t *testing.T) {
	tests := []struct {
		name      string
		habits    string
		wantCount int
	}{
		{name: "not an array", habits: `{"id":"x"}`, wantCount: 0},
		{name: "wrong element type", habits: `[1, "two"]`, wantCount: 0},
		{
			name:      "drops bad records",
			habits:    `[{"id":"","name":"a","category":"health"},{"id":"b","name":"b","category":"cardio"},{"id":"c","name":"c","category":"health","completedDates":["2024-03-13","bad","2024-03-13"],"totalCompletions":7,"streak":12}]`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := storage.NewJSONStore(filepath.Join(t.TempDir(), "s.json"))
			if err := provider.Init(); err != nil {
				t.Fatal(err)
			}
			if err := provider.Put(constants.HabitsKey, []byte(tt.habits)); err != nil {
				t.Fatal(err)
			}
			if err := provider.Put(constants.AchievementsKey, []byte(`"nonsense"`)); err != nil {
				t.Fatal(err)
			}

			s := New(provider, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
			if err := s.Load(); err != nil {
				t.Fatalf("Load should not fail on malformed data: %v", err)
			}
			habits := s.Habits()
			if len(habits) != tt.wantCount {
				t.Fatalf("got %d habits, want %d", len(habits), tt.wantCount)
			}
			if tt.wantCount == 1 {
				h := habits[0]
				if h.TotalCompletions != 1 || h.Streak != 1 || len(h.CompletedDates) != 1 {
					t.Errorf("derived fields not recomputed: %+v", h)
				}
			}
			if len(s.Achievements()) != len(models.DefaultAchievements()) {
				t.Error("malformed achievements should fall back to defaults")
			}
		})
	}
}

func TestLoadMergesAchievementsOntoDefaults(t *testing.T) {
	env := newTestEnv(t)
	stored := `[{"id":"2","name":"Renamed","earnedOn":"2024-01-01T00:00:00Z","category":"fitness"},{"id":"99","name":"Ghost","earnedOn":"2024-01-01T00:00:00Z"}]`
	if err := env.provider.Put(constants.AchievementsKey, []byte(stored)); err != nil {
		t.Fatal(err)
	}

	s := env.open(t)
	all := s.Achievements()
	if len(all) != 5 {
		t.Fatalf("got %d achievements, want 5", len(all))
	}
	a := achievement(s, constants.AchievementConsistencyMaster)
	if !a.Earned() || a.Name != "Consistency Master" || a.Category != models.CategoryFitness {
		t.Errorf("merged badge = %+v", a)
	}
	if achievement(s, "99").ID != "" {
		t.Error("unknown badge id should be discarded")
	}
}

func TestRecentAchievements(t *testing.T) {
	env := newTestEnv(t)
	stored := `[
		{"id":"1","earnedOn":"2024-01-01T00:00:00Z"},
		{"id":"2","earnedOn":"2024-03-01T00:00:00Z"},
		{"id":"3"},
		{"id":"4","earnedOn":"2024-02-01T00:00:00Z"}
	]`
	if err := env.provider.Put(constants.AchievementsKey, []byte(stored)); err != nil {
		t.Fatal(err)
	}
	s := env.open(t)

	recent := s.RecentAchievements(0)
	if len(recent) != 3 {
		t.Fatalf("got %d recent, want 3", len(recent))
	}
	want := []string{"2", "4", "1"}
	for i, a := range recent {
		if a.ID != want[i] {
			t.Errorf("recent[%d] = %s, want %s", i, a.ID, want[i])
		}
	}
	if got := s.RecentAchievements(1); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("RecentAchievements(1) = %+v", got)
	}
}

func TestStreakPercentage(t *testing.T) {
	env := newTestEnv(t)
	h := mustCreate(t, env.store, "Run", models.CategoryFitness)
	if p := env.store.StreakPercentage(h); p != 0 {
		t.Errorf("percentage with no streak = %d, want 0", p)
	}

	if err := env.store.ToggleToday(h.ID); err != nil {
		t.Fatal(err)
	}
	h, _ = env.store.Get(h.ID)
	if p := env.store.StreakPercentage(h); p != 100 {
		t.Errorf("percentage on creation day = %d, want 100", p)
	}
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	h := mustCreate(t, env.store, "Run", models.CategoryFitness)
	if err := env.store.ToggleToday(h.ID); err != nil {
		t.Fatal(err)
	}
	snap := env.store.Export()
	if len(snap.Habits) != 1 || snap.Version != constants.Version {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	other := newTestEnv(t)
	data := []byte(`{"habits":[{"id":"x1","name":"Walk","category":"health","completedDates":["2024-03-12","2024-03-13"],"createdAt":"2024-03-01T00:00:00.000Z"}]}`)
	n, err := other.store.Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d habits, want 1", n)
	}
	got, ok := other.store.Get("x1")
	if !ok || got.Streak != 2 || got.TotalCompletions != 2 {
		t.Errorf("imported habit = %+v", got)
	}

	if _, err := other.store.Import([]byte(`{"achievements":[]}`)); err == nil {
		t.Error("import without habits should fail")
	}
}

func TestImportNeverClearsEarnedBadges(t *testing.T) {
	env := newTestEnv(t)
	mustCreate(t, env.store, "Run", models.CategoryFitness)
	mustCreate(t, env.store, "Read", models.CategoryLearning)
	mustCreate(t, env.store, "Call mum", models.CategorySocial)
	before := achievement(env.store, constants.AchievementDiverseAchiever)
	if !before.Earned() {
		t.Fatal("diverse achiever should be earned before import")
	}

	tests := []struct {
		name string
		data string
	}{
		{"empty achievements", `{"habits":[],"achievements":[]}`},
		{"no achievements key", `{"habits":[]}`},
		{"different earnedOn", `{"habits":[],"achievements":[{"id":"4","earnedOn":"2020-01-01T00:00:00Z"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.store.Import([]byte(tt.data)); err != nil {
				t.Fatalf("Import failed: %v", err)
			}
			got := achievement(env.store, constants.AchievementDiverseAchiever)
			if !got.Earned() || !got.EarnedOn.Equal(*before.EarnedOn) {
				t.Errorf("diverse achiever = %+v, want earned on %v", got, before.EarnedOn)
			}
		})
	}

	reopened := env.open(t)
	if !achievement(reopened, constants.AchievementDiverseAchiever).Earned() {
		t.Error("earned badge lost after restart")
	}
}

func TestImportFillsUnearnedBadges(t *testing.T) {
	env := newTestEnv(t)
	data := []byte(`{"habits":[],"achievements":[{"id":"1","earnedOn":"2024-01-05T10:00:00Z","category":"fitness"}]}`)
	if _, err := env.store.Import(data); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	a := achievement(env.store, constants.AchievementFirstStreak)
	want := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	if !a.Earned() || !a.EarnedOn.Equal(want) {
		t.Errorf("first streak = %+v, want earned on %v", a, want)
	}
	if a.Category != models.CategoryFitness {
		t.Errorf("Category = %q, want fitness", a.Category)
	}
}

func TestStreaksFollowTheClock(t *testing.T) {
	env := newTestEnv(t)
	run := mustCreate(t, env.store, "Run", models.CategoryFitness)
	read := mustCreate(t, env.store, "Read", models.CategoryLearning)
	for _, d := range []int{-4, -3, -2, -1, 0} {
		if err := env.store.ToggleCompletion(run.ID, fixedNow.AddDate(0, 0, d)); err != nil {
			t.Fatal(err)
		}
	}
	if got, _ := env.store.Get(run.ID); got.Streak != 5 {
		t.Fatalf("streak = %d, want 5", got.Streak)
	}

	// Same store, next day, nothing done yet
	*env.now = fixedNow.AddDate(0, 0, 1)
	for _, h := range env.store.Habits() {
		if h.Streak != 0 {
			t.Errorf("Habits(): %s streak = %d, want 0", h.Name, h.Streak)
		}
	}
	for _, h := range env.store.HabitsByCategory(models.CategoryFitness) {
		if h.Streak != 0 {
			t.Errorf("HabitsByCategory(): %s streak = %d, want 0", h.Name, h.Streak)
		}
	}

	if err := env.store.ToggleToday(read.ID); err != nil {
		t.Fatal(err)
	}
	got, err := env.store.Find("Run")
	if err != nil {
		t.Fatal(err)
	}
	if got.Streak != 0 {
		t.Errorf("Run streak after toggling another habit = %d, want 0", got.Streak)
	}
	if got, _ := env.store.Get(read.ID); got.Streak != 1 {
		t.Errorf("Read streak = %d, want 1", got.Streak)
	}
}

func TestNotLoaded(t *testing.T) {
	s := New(storage.NewJSONStore(filepath.Join(t.TempDir(), "s.json")))
	if _, err := s.CreateHabit("Run", models.CategoryFitness, nil); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}
