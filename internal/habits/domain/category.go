package domain

import (
	"errors"
	"strings"
)

var ErrInvalidCategory = errors.New("invalid task category")

// Category is a local tag attached to a task. The ledger never sees it.
type Category string

const (
	CategoryFitness  Category = "fitness"
	CategoryLearning Category = "learning"
	CategoryHealth   Category = "health"
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategorySocial   Category = "social"

	// CategoryUncategorized is the synthetic bucket for untagged tasks.
	// It is never persisted.
	CategoryUncategorized Category = "uncategorized"
)

var categoryLabels = map[Category]string{
	CategoryFitness:       "Fitness",
	CategoryLearning:      "Learning",
	CategoryHealth:        "Health",
	CategoryWork:          "Work",
	CategoryPersonal:      "Personal",
	CategorySocial:        "Social",
	CategoryUncategorized: "Uncategorized",
}

// AllCategories returns the storable categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryFitness,
		CategoryLearning,
		CategoryHealth,
		CategoryWork,
		CategoryPersonal,
		CategorySocial,
	}
}

// IsValid checks if the category can be stored.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFitness, CategoryLearning, CategoryHealth, CategoryWork, CategoryPersonal, CategorySocial:
		return true
	default:
		return false
	}
}

// Label returns the display label.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory parses a storable category, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// CategoryStat counts completions within one category bucket.
type CategoryStat struct {
	Category  Category
	Completed int
	Total     int
}
