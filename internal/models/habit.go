package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is the fixed classification tag assigned to every habit
type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryLearning     Category = "learning"
	CategoryProductivity Category = "productivity"
	CategoryMindfulness  Category = "mindfulness"
	CategorySocial       Category = "social"
	CategoryOther        Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryHealth,
	CategoryFitness,
	CategoryLearning,
	CategoryProductivity,
	CategoryMindfulness,
	CategorySocial,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

var categoryColors = map[Category]string{
	CategoryHealth:       "#ef4444",
	CategoryFitness:      "#22c55e",
	CategoryLearning:     "#3b82f6",
	CategoryProductivity: "#f59e0b",
	CategoryMindfulness:  "#8b5cf6",
	CategorySocial:       "#ec4899",
	CategoryOther:        "#64748b",
}

// Color returns the hex display color for the category.
func (c Category) Color() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return categoryColors[CategoryOther]
}

// Title returns the category name with its first letter upper-cased
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category: %q", s)
	}
	return c, nil
}

// Habit represents a tracked daily practice
type Habit struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Category         Category       `json:"category"`
	Streak           int            `json:"streak"`
	TotalCompletions int            `json:"totalCompletions"`
	CompletedDates   []string       `json:"completedDates"` // YYYY-MM-DD format
	CreatedAt        time.Time      `json:"createdAt"`
	TargetDays       []time.Weekday `json:"targetDays,omitempty"` // persisted only, not used by streaks
}

// HasCompletion reports whether day (YYYY-MM-DD) is in the completion set.
func (h Habit) HasCompletion(day string) bool {
	for _, d := range h.CompletedDates {
		if d == day {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot alias the store's slices.
func (h Habit) Clone() Habit {
	out := h
	if h.CompletedDates != nil {
		out.CompletedDates = append([]string(nil), h.CompletedDates...)
	}
	if h.TargetDays != nil {
		out.TargetDays = append([]time.Weekday(nil), h.TargetDays...)
	}
	return out
}
