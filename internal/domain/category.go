// Package domain holds the persistent entities of the content service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is a named grouping entity owning zero or more notes. Titles are
// unique across all categories; uniqueness is enforced before creation.
type Category struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCategory creates a category with a fresh id and timestamps.
func NewCategory(title, description string) Category {
	now := time.Now().UTC()
	return Category{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
