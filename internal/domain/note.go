package domain

import (
	"time"

	"github.com/google/uuid"
)

// Note is a text entity with a tag set and a mandatory category reference.
// CategoryTitle denormalizes the owning category's title at creation time and
// is rewritten by the rename cascade so it never goes stale.
type Note struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	CategoryID    string    `json:"categoryId"`
	CategoryTitle string    `json:"categoryTitle"`
	Creator       string    `json:"creator,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewNote creates a note under the given category with a fresh id.
func NewNote(title, text string, category Category, creatorID string, tags []string) Note {
	now := time.Now().UTC()
	if tags == nil {
		tags = []string{}
	}
	return Note{
		ID:            uuid.New().String(),
		Title:         title,
		Text:          text,
		CategoryID:    category.ID,
		CategoryTitle: category.Title,
		Creator:       creatorID,
		Tags:          tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasAllTags reports whether the note's tag set is a superset of required.
func (n Note) HasAllTags(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]bool, len(n.Tags))
	for _, tag := range n.Tags {
		have[tag] = true
	}
	for _, tag := range required {
		if !have[tag] {
			return false
		}
	}
	return true
}
