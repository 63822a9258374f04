// Package habits owns the habit and achievement collections. Every mutation
// recomputes derived fields, persists the full collection, and re-runs the
// achievement rules.
package habits

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/dateutil"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/streak"
)

var (
	ErrEmptyName       = errors.New("habit name cannot be empty")
	ErrInvalidCategory = errors.New("invalid category")
	ErrHabitNotFound   = errors.New("habit not found")
	ErrAmbiguousRef    = errors.New("habit reference matches more than one habit")
	ErrNotLoaded       = errors.New("habit store not loaded")
)

// Store is the single owner of the habit and achievement collections.
// It is not safe for concurrent use.
type Store struct {
	provider  storage.Provider
	clock     func() time.Time
	loc       *time.Location
	notifier  notifier.Notifier
	evaluator *achievements.Evaluator
	newID     func() string

	loaded       bool
	habits       []models.Habit
	achievements []models.Achievement
}

type Option func(*Store)

// WithClock injects the time source used for today, createdAt and earnedOn.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithNotifier(n notifier.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithEvaluator(e *achievements.Evaluator) Option {
	return func(s *Store) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider:     provider,
		clock:        time.Now,
		loc:          time.Local,
		notifier:     notifier.Nop{},
		evaluator:    achievements.NewEvaluator(),
		newID:        uuid.NewString,
		achievements: models.DefaultAchievements(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNotifier replaces the notification sink, e.g. when a TUI takes over the terminal.
func (s *Store) SetNotifier(n notifier.Notifier) {
	if n == nil {
		n = notifier.Nop{}
	}
	s.notifier = n
}

// Now returns the current time in the store's location.
func (s *Store) Now() time.Time {
	return s.clock().In(s.loc)
}

func (s *Store) Location() *time.Location {
	return s.loc
}

// Load rehydrates both collections from the provider, recomputes every
// streak against today and runs the achievement rules once.
func (s *Store) Load() error {
	habitsRaw, err := s.read(constants.HabitsKey)
	if err != nil {
		return err
	}
	achievementsRaw, err := s.read(constants.AchievementsKey)
	if err != nil {
		return err
	}

	s.habits = decodeHabits(habitsRaw)
	s.achievements = decodeAchievements(achievementsRaw)
	s.loaded = true

	s.recomputeStreaks()

	if achievementsRaw == nil {
		if err := s.saveAchievements(); err != nil {
			return err
		}
	}

	logger.Debug("Loaded habit store", "habits", len(s.habits), "source", s.provider.GetConfigPath())
	return s.evaluate()
}

// read returns nil when the key has never been written.
func (s *Store) read(key string) ([]byte, error) {
	data, err := s.provider.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) checkLoaded() error {
	if !s.loaded {
		return ErrNotLoaded
	}
	return nil
}

func (s *Store) index(id string) int {
	for i, h := range s.habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// CreateHabit adds a habit with a fresh id and an empty history.
func (s *Store) CreateHabit(name string, category models.Category, targetDays []time.Weekday) (models.Habit, error) {
	if err := s.checkLoaded(); err != nil {
		return models.Habit{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, ErrEmptyName
	}
	if !category.Valid() {
		return models.Habit{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	h := models.Habit{
		ID:             s.newID(),
		Name:           name,
		Category:       category,
		CompletedDates: []string{},
		CreatedAt:      s.Now(),
		TargetDays:     normalizeWeekdays(targetDays),
	}
	s.habits = append(s.habits, h)

	if err := s.commit(constants.MsgHabitCreated); err != nil {
		return models.Habit{}, err
	}
	logger.Info("Habit created", "id", h.ID, "name", h.Name, "category", h.Category)
	return h.Clone(), nil
}

// UpdateHabit replaces the stored record with the same id. The id, createdAt
// and derived counters always come from the store, never from h.
func (s *Store) UpdateHabit(h models.Habit) error {
	if err := s.checkLoaded(); err != nil {
		return err
	}

	i := s.index(h.ID)
	if i < 0 {
		return nil
	}

	name := strings.TrimSpace(h.Name)
	if name == "" {
		return ErrEmptyName
	}
	if !h.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, h.Category)
	}

	stored := s.habits[i]
	next := h.Clone()
	next.ID = stored.ID
	next.CreatedAt = stored.CreatedAt
	next.Name = name
	next.CompletedDates = normalizeStamps(next.CompletedDates)
	next.TargetDays = normalizeWeekdays(next.TargetDays)
	s.derive(&next)
	s.habits[i] = next

	if err := s.commit(constants.MsgHabitUpdated); err != nil {
		return err
	}
	logger.Info("Habit updated", "id", next.ID)
	return nil
}

// DeleteHabit removes a habit. Unknown ids are ignored.
func (s *Store) DeleteHabit(id string) error {
	if err := s.checkLoaded(); err != nil {
		return err
	}

	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.habits = append(s.habits[:i], s.habits[i+1:]...)

	if err := s.commit(constants.MsgHabitDeleted); err != nil {
		return err
	}
	logger.Info("Habit deleted", "id", id)
	return nil
}

// ToggleCompletion flips the completion of day for habit id. Unknown ids are
// ignored.
func (s *Store) ToggleCompletion(id string, day time.Time) error {
	if err := s.checkLoaded(); err != nil {
		return err
	}

	i := s.index(id)
	if i < 0 {
		return nil
	}

	stamp := dateutil.Stamp(day.In(s.loc))
	h := &s.habits[i]

	dates := make([]string, 0, len(h.CompletedDates)+1)
	removed := false
	for _, d := range h.CompletedDates {
		if d == stamp {
			removed = true
			continue
		}
		dates = append(dates, d)
	}
	if !removed {
		dates = append(dates, stamp)
	}
	h.CompletedDates = normalizeStamps(dates)
	s.derive(h)

	if err := s.commit(""); err != nil {
		return err
	}
	logger.Debug("Completion toggled", "id", id, "day", stamp, "completed", !removed)
	return nil
}

// ToggleToday toggles the current calendar day.
func (s *Store) ToggleToday(id string) error {
	return s.ToggleCompletion(id, s.Now())
}

func (s *Store) derive(h *models.Habit) {
	h.TotalCompletions = len(h.CompletedDates)
	h.Streak = streak.Calculate(h.CompletedDates, s.Now())
}

// recomputeStreaks re-derives every streak against the clock. A long-lived
// store crosses midnight, so reads call this too.
func (s *Store) recomputeStreaks() {
	today := s.Now()
	for i := range s.habits {
		s.habits[i].Streak = streak.Calculate(s.habits[i].CompletedDates, today)
	}
}

// commit persists the habits, raises msg and re-runs the achievement rules.
func (s *Store) commit(msg string) error {
	s.recomputeStreaks()
	if err := s.saveHabits(); err != nil {
		return err
	}
	if msg != "" {
		s.notify(msg)
	}
	return s.evaluate()
}

func (s *Store) evaluate() error {
	updated, earned := s.evaluator.Evaluate(s.habits, s.achievements, s.Now())
	if len(earned) == 0 {
		return nil
	}
	s.achievements = updated

	if err := s.saveAchievements(); err != nil {
		return err
	}
	for _, a := range earned {
		logger.Info("Achievement earned", "id", a.ID, "name", a.Name, "category", a.Category)
	}
	s.notify(constants.MsgAchievementEarned)
	return nil
}

func (s *Store) notify(msg string) {
	if err := s.notifier.Notify(msg); err != nil {
		logger.Warn("Failed to deliver notification", "message", msg, "error", err)
	}
}

func (s *Store) saveHabits() error {
	data, err := json.Marshal(s.habits)
	if err != nil {
		return fmt.Errorf("failed to encode habits: %w", err)
	}
	if err := s.provider.Put(constants.HabitsKey, data); err != nil {
		return fmt.Errorf("failed to save habits: %w", err)
	}
	return nil
}

func (s *Store) saveAchievements() error {
	data, err := json.Marshal(s.achievements)
	if err != nil {
		return fmt.Errorf("failed to encode achievements: %w", err)
	}
	if err := s.provider.Put(constants.AchievementsKey, data); err != nil {
		return fmt.Errorf("failed to save achievements: %w", err)
	}
	return nil
}

// Habits returns a copy of the collection in insertion order.
func (s *Store) Habits() []models.Habit {
	s.recomputeStreaks()
	out := make([]models.Habit, len(s.habits))
	for i, h := range s.habits {
		out[i] = h.Clone()
	}
	return out
}

// HabitsByCategory filters by category; the empty category returns all.
func (s *Store) HabitsByCategory(c models.Category) []models.Habit {
	if c == "" {
		return s.Habits()
	}
	s.recomputeStreaks()
	var out []models.Habit
	for _, h := range s.habits {
		if h.Category == c {
			out = append(out, h.Clone())
		}
	}
	return out
}

// Get returns the habit with exactly this id.
func (s *Store) Get(id string) (models.Habit, bool) {
	if i := s.index(id); i >= 0 {
		h := &s.habits[i]
		h.Streak = streak.Calculate(h.CompletedDates, s.Now())
		return h.Clone(), true
	}
	return models.Habit{}, false
}

// Find resolves a user-supplied reference: an exact id, then a
// case-insensitive exact name, then a unique id prefix.
func (s *Store) Find(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, ErrHabitNotFound
	}

	if h, ok := s.Get(ref); ok {
		return h, nil
	}

	s.recomputeStreaks()
	var byName, byPrefix []int
	for i, h := range s.habits {
		if strings.EqualFold(h.Name, ref) {
			byName = append(byName, i)
		}
		if strings.HasPrefix(h.ID, ref) {
			byPrefix = append(byPrefix, i)
		}
	}

	for _, matches := range [][]int{byName, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return s.habits[matches[0]].Clone(), nil
		default:
			return models.Habit{}, fmt.Errorf("%w: %q", ErrAmbiguousRef, ref)
		}
	}

	return models.Habit{}, fmt.Errorf("%w: %q", ErrHabitNotFound, ref)
}

// IsCompletedOn reports whether h has a completion on day's calendar day.
func (s *Store) IsCompletedOn(h models.Habit, day time.Time) bool {
	return h.HasCompletion(dateutil.Stamp(day.In(s.loc)))
}

// StreakPercentage is the current streak as a share of the habit's age.
func (s *Store) StreakPercentage(h models.Habit) int {
	return streak.Percentage(h.Streak, h.CreatedAt, s.Now())
}

// Achievements returns every badge, earned or not, in id order.
func (s *Store) Achievements() []models.Achievement {
	return append([]models.Achievement(nil), s.achievements...)
}

// RecentAchievements returns up to n earned badges, newest first.
// n <= 0 uses the default of three.
func (s *Store) RecentAchievements(n int) []models.Achievement {
	if n <= 0 {
		n = constants.DefaultRecentAchievements
	}

	var earned []models.Achievement
	for _, a := range s.achievements {
		if a.Earned() {
			earned = append(earned, a)
		}
	}
	sort.SliceStable(earned, func(i, j int) bool {
		return earned[i].EarnedOn.After(*earned[j].EarnedOn)
	})

	if len(earned) > n {
		earned = earned[:n]
	}
	return earned
}
