package content

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository/mocks"
	apperrors "notekeeper/pkg/errors"
)

type fixture struct {
	categories *mocks.MockCategoryRepository
	notes      *mocks.MockNoteRepository
	users      *mocks.MockUserRepository
	svc        Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	categories := mocks.NewMockCategoryRepository()
	notes := mocks.NewMockNoteRepository()
	users := mocks.NewMockUserRepository()
	logger := zap.NewNop()
	cascade := NewCascadeEnforcer(notes, users, logger)
	return &fixture{
		categories: categories,
		notes:      notes,
		users:      users,
		svc:        NewService(categories, notes, cascade, nil, logger),
	}
}

func (f *fixture) mustCreateCategory(t *testing.T, title string) *domain.Category {
	t.Helper()
	category, err := f.svc.CreateCategory(context.Background(), title, title+" description")
	require.NoError(t, err)
	return category
}

func (f *fixture) mustCreateNote(t *testing.T, title, categoryTitle string, tags []string) *domain.Note {
	t.Helper()
	note, err := f.svc.CreateNote(context.Background(), title, "text of "+title, categoryTitle, tags, "")
	require.NoError(t, err)
	return note
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("PersistsAndReturns", func(t *testing.T) {
		f := newFixture(t)
		category, err := f.svc.CreateCategory(ctx, "Work", "work things")
		require.NoError(t, err)
		assert.NotEmpty(t, category.ID)
		assert.Equal(t, "Work", category.Title)

		stored, err := f.categories.GetByID(ctx, category.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
	})

	t.Run("DuplicateTitleIsConflict", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")

		_, err := f.svc.CreateCategory(ctx, "Work", "again")
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		all, err := f.categories.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("EmptyFieldsAreRejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateCategory(ctx, "  ", "desc")
		assert.True(t, apperrors.IsValidation(err))
		_, err = f.svc.CreateCategory(ctx, "Work", "")
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestGetCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsOnlyItsNotes", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")
		f.mustCreateCategory(t, "Plan")
		f.mustCreateNote(t, "standup", "Work", nil)
		f.mustCreateNote(t, "retro", "Work", nil)
		f.mustCreateNote(t, "vacation", "Plan", nil)

		result, err := f.svc.GetCategory(ctx, work.ID)
		require.NoError(t, err)
		assert.Equal(t, work.ID, result.CategoryID)
		require.Len(t, result.Notes, 2)
		for _, note := range result.Notes {
			assert.Equal(t, work.ID, note.CategoryID)
		}
	})

	t.Run("EmptyCategoryIsNotAnError", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")

		result, err := f.svc.GetCategory(ctx, work.ID)
		require.NoError(t, err)
		assert.NotNil(t, result.Notes)
		assert.Empty(t, result.Notes)
	})

	t.Run("UnknownIdIsNotFound", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.GetCategory(ctx, "missing")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestEditCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("RenamePropagatesToNotes", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")
		note := f.mustCreateNote(t, "standup", "Work", nil)

		updated, err := f.svc.EditCategory(ctx, work.ID, "Office", "office things")
		require.NoError(t, err)
		assert.Equal(t, "Office", updated.Title)
		assert.True(t, updated.UpdatedAt.After(work.UpdatedAt) || updated.UpdatedAt.Equal(work.UpdatedAt))

		stored, err := f.notes.GetByID(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, "Office", stored.CategoryTitle)
	})

	t.Run("RenameToTakenTitleIsConflict", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")
		f.mustCreateCategory(t, "Plan")

		_, err := f.svc.EditCategory(ctx, work.ID, "Plan", "desc")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("SameTitleIsNotAConflict", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")

		updated, err := f.svc.EditCategory(ctx, work.ID, "Work", "new description")
		require.NoError(t, err)
		assert.Equal(t, "new description", updated.Description)
	})

	t.Run("PropagationFailureIsCascadeFailure", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")
		f.mustCreateNote(t, "standup", "Work", nil)
		f.notes.SetError("Update", apperrors.NewInternal("storage unavailable", nil))

		updated, err := f.svc.EditCategory(ctx, work.ID, "Office", "desc")
		require.Error(t, err)
		assert.True(t, apperrors.IsCascadeFailure(err))
		// The primary write committed; the caller still gets the category.
		require.NotNil(t, updated)
		assert.Equal(t, "Office", updated.Title)

		stored, err := f.categories.GetByID(ctx, work.ID)
		require.NoError(t, err)
		assert.Equal(t, "Office", stored.Title)
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesCategoryAndItsNotes", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")
		f.mustCreateCategory(t, "Plan")
		f.mustCreateNote(t, "standup", "Work", nil)
		f.mustCreateNote(t, "retro", "Work", nil)
		keep := f.mustCreateNote(t, "vacation", "Plan", nil)

		require.NoError(t, f.svc.DeleteCategory(ctx, work.ID))

		_, err := f.svc.GetCategory(ctx, work.ID)
		assert.True(t, apperrors.IsNotFound(err))

		orphans, err := f.notes.FindByCategory(ctx, work.ID)
		require.NoError(t, err)
		assert.Empty(t, orphans)

		still, err := f.notes.GetByID(ctx, keep.ID)
		require.NoError(t, err)
		require.NotNil(t, still)
	})

	t.Run("UnknownIdIsNotFound", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.DeleteCategory(ctx, "missing")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("NoteRemovalFailureIsCascadeFailure", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")
		f.mustCreateNote(t, "standup", "Work", nil)
		f.notes.SetError("RemoveAllByCategory", apperrors.NewInternal("storage unavailable", nil))

		err := f.svc.DeleteCategory(ctx, work.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCascadeFailure(err))

		// The category removal committed before the cascade failed.
		stored, getErr := f.categories.GetByID(ctx, work.ID)
		require.NoError(t, getErr)
		assert.Nil(t, stored)
	})
}

func TestListNotes(t *testing.T) {
	ctx := context.Background()

	t.Run("PagesAreDisjointAndBounded", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		for i := 0; i < 12; i++ {
			f.mustCreateNote(t, fmt.Sprintf("note-%02d", i), "Work", nil)
		}

		seen := make(map[string]bool)
		total := 0
		for page := 1; page <= 3; page++ {
			notes, err := f.svc.ListNotes(ctx, ListNotesQuery{Page: page})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(notes), notesPerPage)
			for _, note := range notes {
				assert.False(t, seen[note.ID], "note %s appeared on two pages", note.Title)
				seen[note.ID] = true
			}
			total += len(notes)
		}
		assert.Equal(t, 12, total)
	})

	t.Run("PageBeyondEndIsEmptyNotNil", func(t *testing.T) {
		f := newFixture(t)
		notes, err := f.svc.ListNotes(ctx, ListNotesQuery{Page: 7})
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})

	t.Run("TagFilterMatchesSupersets", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		f.mustCreateNote(t, "both", "Work", []string{"a", "b", "c"})
		f.mustCreateNote(t, "only-a", "Work", []string{"a"})
		f.mustCreateNote(t, "neither", "Work", nil)

		notes, err := f.svc.ListNotes(ctx, ListNotesQuery{Page: 1, Tags: "a_b"})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "both", notes[0].Title)
	})

	t.Run("SortByUpdateDate", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		first := f.mustCreateNote(t, "first", "Work", nil)
		second := f.mustCreateNote(t, "second", "Work", nil)

		// Touch the older note so it carries the freshest update timestamp.
		time.Sleep(time.Millisecond)
		_, err := f.svc.EditNote(ctx, first.ID, "first", "edited", nil)
		require.NoError(t, err)

		newest, err := f.svc.ListNotes(ctx, ListNotesQuery{Page: 1, Sort: "updateDate", Order: "new"})
		require.NoError(t, err)
		require.Len(t, newest, 2)
		assert.Equal(t, first.ID, newest[0].ID)

		oldest, err := f.svc.ListNotes(ctx, ListNotesQuery{Page: 1, Sort: "updateDate", Order: "old"})
		require.NoError(t, err)
		require.Len(t, oldest, 2)
		assert.Equal(t, second.ID, oldest[0].ID)
	})

	t.Run("UnknownSortStillAnswers", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		f.mustCreateNote(t, "a", "Work", nil)

		notes, err := f.svc.ListNotes(ctx, ListNotesQuery{Page: 1, Sort: "title", Order: "up"})
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	})
}

func TestCreateNote(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolvesCategoryByTitle", func(t *testing.T) {
		f := newFixture(t)
		work := f.mustCreateCategory(t, "Work")

		note, err := f.svc.CreateNote(ctx, "standup", "daily notes", "Work", []string{"daily"}, "user-1")
		require.NoError(t, err)
		assert.Equal(t, work.ID, note.CategoryID)
		assert.Equal(t, "Work", note.CategoryTitle)
		assert.Equal(t, "user-1", note.Creator)
		assert.Equal(t, []string{"daily"}, note.Tags)
	})

	t.Run("UnknownCategoryTitlePersistsNothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateNote(ctx, "standup", "text", "Nowhere", nil, "")
		assert.True(t, apperrors.IsNotFound(err))

		count, countErr := f.notes.Count(ctx)
		require.NoError(t, countErr)
		assert.Zero(t, count)
	})

	t.Run("NilTagsBecomeEmptySet", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		note := f.mustCreateNote(t, "standup", "Work", nil)
		assert.NotNil(t, note.Tags)
		assert.Empty(t, note.Tags)
	})

	t.Run("EmptyFieldsAreRejected", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		_, err := f.svc.CreateNote(ctx, "", "text", "Work", nil, "")
		assert.True(t, apperrors.IsValidation(err))
		_, err = f.svc.CreateNote(ctx, "title", "  ", "Work", nil, "")
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestEditNote(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTripsWithFreshTimestamp", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		note := f.mustCreateNote(t, "standup", "Work", []string{"daily"})

		time.Sleep(time.Millisecond)
		updated, err := f.svc.EditNote(ctx, note.ID, "standup notes", "new text", []string{"daily", "team"})
		require.NoError(t, err)
		assert.Equal(t, "standup notes", updated.Title)
		assert.Equal(t, "new text", updated.Text)
		assert.Equal(t, []string{"daily", "team"}, updated.Tags)
		assert.True(t, updated.UpdatedAt.After(note.UpdatedAt))
		assert.True(t, updated.CreatedAt.Equal(note.CreatedAt))

		stored, err := f.svc.GetNote(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, *updated, *stored)
	})

	t.Run("UnknownIdIsNotFound", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.EditNote(ctx, "missing", "t", "x", nil)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestDeleteNote(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesNoteAndDetachesFromCreator", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")

		user := domain.NewUser("a@b.c", "alex", "hash")
		require.NoError(t, f.users.Create(ctx, user))

		note, err := f.svc.CreateNote(ctx, "standup", "text", "Work", nil, user.ID)
		require.NoError(t, err)
		user.AddNote(note.ID)
		require.NoError(t, f.users.Update(ctx, user))

		require.NoError(t, f.svc.DeleteNote(ctx, note.ID, user.ID))

		_, err = f.svc.GetNote(ctx, note.ID)
		assert.True(t, apperrors.IsNotFound(err))

		stored, err := f.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotContains(t, stored.Notes, note.ID)
	})

	t.Run("NoteCreatorWinsOverRequester", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")

		creator := domain.NewUser("c@b.c", "creator", "hash")
		requester := domain.NewUser("r@b.c", "requester", "hash")
		require.NoError(t, f.users.Create(ctx, creator))
		require.NoError(t, f.users.Create(ctx, requester))

		note, err := f.svc.CreateNote(ctx, "standup", "text", "Work", nil, creator.ID)
		require.NoError(t, err)
		creator.AddNote(note.ID)
		require.NoError(t, f.users.Update(ctx, creator))

		require.NoError(t, f.svc.DeleteNote(ctx, note.ID, requester.ID))

		stored, err := f.users.GetByID(ctx, creator.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Notes)
	})

	t.Run("NoCreatorAndNoRequesterSkipsDetachment", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")
		note := f.mustCreateNote(t, "standup", "Work", nil)

		require.NoError(t, f.svc.DeleteNote(ctx, note.ID, ""))

		_, err := f.svc.GetNote(ctx, note.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("DetachmentFailureIsCascadeFailure", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateCategory(t, "Work")

		user := domain.NewUser("a@b.c", "alex", "hash")
		require.NoError(t, f.users.Create(ctx, user))
		note, err := f.svc.CreateNote(ctx, "standup", "text", "Work", nil, user.ID)
		require.NoError(t, err)
		user.AddNote(note.ID)
		require.NoError(t, f.users.Update(ctx, user))

		f.users.SetError("Update", apperrors.NewInternal("storage unavailable", nil))

		err = f.svc.DeleteNote(ctx, note.ID, user.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCascadeFailure(err))

		// The note removal committed before the detachment failed.
		_, getErr := f.svc.GetNote(ctx, note.ID)
		assert.True(t, apperrors.IsNotFound(getErr))
	})

	t.Run("UnknownIdIsNotFound", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.DeleteNote(ctx, "missing", "user-1")
		assert.True(t, apperrors.IsNotFound(err))
	})
}
