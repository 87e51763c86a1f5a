package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns a list of note ids. The content core only touches it through the
// cascade enforcer when a note is deleted; the user service owns the rest.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Notes        []string  `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser creates a user with a fresh id and an empty note list.
func NewUser(email, username, passwordHash string) User {
	now := time.Now().UTC()
	return User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Notes:        []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AddNote appends a note id to the user's note list.
func (u *User) AddNote(noteID string) {
	u.Notes = append(u.Notes, noteID)
	u.UpdatedAt = time.Now().UTC()
}

// RemoveNote detaches a note id from the user's note list. It reports whether
// the id was present.
func (u *User) RemoveNote(noteID string) bool {
	for i, id := range u.Notes {
		if id == noteID {
			u.Notes = append(u.Notes[:i], u.Notes[i+1:]...)
			u.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}
