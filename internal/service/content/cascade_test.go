package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository/mocks"
	apperrors "notekeeper/pkg/errors"
)

func TestOnCategoryRenamed(t *testing.T) {
	ctx := context.Background()
	notes := mocks.NewMockNoteRepository()
	users := mocks.NewMockUserRepository()
	enforcer := NewCascadeEnforcer(notes, users, zap.NewNop())

	work := domain.NewCategory("Work", "work things")
	play := domain.NewCategory("Play", "play things")

	inWork := domain.NewNote("plan", "body", work, "", nil)
	alsoInWork := domain.NewNote("review", "body", work, "", nil)
	inPlay := domain.NewNote("game", "body", play, "", nil)
	require.NoError(t, notes.Create(ctx, inWork))
	require.NoError(t, notes.Create(ctx, alsoInWork))
	require.NoError(t, notes.Create(ctx, inPlay))

	require.NoError(t, enforcer.OnCategoryRenamed(ctx, work.ID, "Office"))

	for _, id := range []string{inWork.ID, alsoInWork.ID} {
		updated, err := notes.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Office", updated.CategoryTitle)
		// A rename must not reorder update-date listings.
		assert.True(t, updated.UpdatedAt.Equal(inWork.UpdatedAt))
	}

	untouched, err := notes.GetByID(ctx, inPlay.ID)
	require.NoError(t, err)
	assert.Equal(t, "Play", untouched.CategoryTitle)
}

func TestOnCategoryDeleted(t *testing.T) {
	ctx := context.Background()
	notes := mocks.NewMockNoteRepository()
	users := mocks.NewMockUserRepository()
	enforcer := NewCascadeEnforcer(notes, users, zap.NewNop())

	category := domain.NewCategory("Work", "work things")
	other := domain.NewCategory("Play", "play things")
	for i := 0; i < 3; i++ {
		require.NoError(t, notes.Create(ctx, domain.NewNote("n", "b", category, "", nil)))
	}
	keep := domain.NewNote("keep", "b", other, "", nil)
	require.NoError(t, notes.Create(ctx, keep))

	removed, err := enforcer.OnCategoryDeleted(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	remaining, err := notes.FindByCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	still, err := notes.GetByID(ctx, keep.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
}

func TestOnNoteDeleted(t *testing.T) {
	ctx := context.Background()

	t.Run("DetachesNoteFromUser", func(t *testing.T) {
		notes := mocks.NewMockNoteRepository()
		users := mocks.NewMockUserRepository()
		enforcer := NewCascadeEnforcer(notes, users, zap.NewNop())

		user := domain.NewUser("a@b.c", "alex", "hash")
		user.AddNote("note-1")
		user.AddNote("note-2")
		require.NoError(t, users.Create(ctx, user))

		require.NoError(t, enforcer.OnNoteDeleted(ctx, "note-1", user.ID))

		updated, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"note-2"}, updated.Notes)
	})

	t.Run("UnresolvableUserIsNotFound", func(t *testing.T) {
		notes := mocks.NewMockNoteRepository()
		users := mocks.NewMockUserRepository()
		enforcer := NewCascadeEnforcer(notes, users, zap.NewNop())

		err := enforcer.OnNoteDeleted(ctx, "note-1", "ghost")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("AbsentNoteIdIsTolerated", func(t *testing.T) {
		notes := mocks.NewMockNoteRepository()
		users := mocks.NewMockUserRepository()
		enforcer := NewCascadeEnforcer(notes, users, zap.NewNop())

		user := domain.NewUser("a@b.c", "alex", "hash")
		require.NoError(t, users.Create(ctx, user))

		require.NoError(t, enforcer.OnNoteDeleted(ctx, "never-attached", user.ID))
	})
}
