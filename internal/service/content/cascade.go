package content

import (
	"context"

	"go.uber.org/zap"

	"notekeeper/internal/repository"
	apperrors "notekeeper/pkg/errors"
)

// CascadeEnforcer executes the dependent writes that keep cross-entity
// references consistent after a primary mutation: note removal when a
// category is deleted, denormalized-title propagation when a category is
// renamed, and creator note-list detachment when a note is deleted.
//
// None of these sequences is transactional with the primary write; callers
// surface enforcer failures as a distinct partial-success state.
type CascadeEnforcer struct {
	notes  repository.NoteRepository
	users  repository.UserRepository
	logger *zap.Logger
}

// NewCascadeEnforcer creates an enforcer over the given repositories.
func NewCascadeEnforcer(notes repository.NoteRepository, users repository.UserRepository, logger *zap.Logger) *CascadeEnforcer {
	return &CascadeEnforcer{notes: notes, users: users, logger: logger}
}

// OnCategoryRenamed rewrites the denormalized category title on every note
// referencing the category. Note update timestamps are left untouched so a
// rename does not reorder update-date listings.
func (e *CascadeEnforcer) OnCategoryRenamed(ctx context.Context, categoryID, newTitle string) error {
	notes, err := e.notes.FindByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	for _, note := range notes {
		if note.CategoryTitle == newTitle {
			continue
		}
		note.CategoryTitle = newTitle
		if err := e.notes.Update(ctx, note); err != nil {
			return err
		}
	}
	e.logger.Debug("propagated category title",
		zap.String("categoryId", categoryID),
		zap.String("title", newTitle),
		zap.Int("notes", len(notes)),
	)
	return nil
}

// OnCategoryDeleted removes every note referencing the category and returns
// how many were removed.
func (e *CascadeEnforcer) OnCategoryDeleted(ctx context.Context, categoryID string) (int, error) {
	removed, err := e.notes.RemoveAllByCategory(ctx, categoryID)
	if err != nil {
		return removed, err
	}
	e.logger.Debug("removed category notes",
		zap.String("categoryId", categoryID),
		zap.Int("removed", removed),
	)
	return removed, nil
}

// OnNoteDeleted detaches the note id from the user's note list. An
// unresolvable user is a NotFound failure of the delete operation, not a
// condition to swallow.
func (e *CascadeEnforcer) OnNoteDeleted(ctx context.Context, noteID, userID string) error {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewNotFound("user")
	}

	if !user.RemoveNote(noteID) {
		e.logger.Warn("deleted note was not in the user's note list",
			zap.String("noteId", noteID),
			zap.String("userId", userID),
		)
		return nil
	}
	return e.users.Update(ctx, *user)
}
