package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notekeeper/internal/repository/mocks"
	"notekeeper/pkg/auth"
	apperrors "notekeeper/pkg/errors"
)

func newService(t *testing.T) (Service, *mocks.MockUserRepository, *auth.Validator) {
	t.Helper()
	users := mocks.NewMockUserRepository()
	cfg := auth.Config{SecretKey: "test-secret", Issuer: "notekeeper", TokenTTL: time.Hour}
	generator, err := auth.NewGenerator(cfg)
	require.NoError(t, err)
	validator, err := auth.NewValidator(cfg)
	require.NoError(t, err)
	return NewService(users, generator, zap.NewNop()), users, validator
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("RegistersWithHashedPassword", func(t *testing.T) {
		svc, users, _ := newService(t)

		user, err := svc.Signup(ctx, "Alex@Example.com", "alex", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "alex@example.com", user.Email)
		assert.NotEqual(t, "s3cret", user.PasswordHash)
		assert.Empty(t, user.Notes)

		stored, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
	})

	t.Run("DuplicateEmailIsConflict", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Signup(ctx, "a@b.c", "alex", "pw")
		require.NoError(t, err)

		_, err = svc.Signup(ctx, "a@b.c", "other", "pw")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("DuplicateUsernameIsConflict", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Signup(ctx, "a@b.c", "alex", "pw")
		require.NoError(t, err)

		_, err = svc.Signup(ctx, "z@b.c", "alex", "pw")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("EmptyFieldsAreRejected", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Signup(ctx, "", "alex", "pw")
		assert.True(t, apperrors.IsValidation(err))
		_, err = svc.Signup(ctx, "a@b.c", "alex", "")
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("IssuesVerifiableToken", func(t *testing.T) {
		svc, _, validator := newService(t)
		user, err := svc.Signup(ctx, "a@b.c", "alex", "s3cret")
		require.NoError(t, err)

		session, err := svc.Login(ctx, "a@b.c", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.UserID)

		claims, err := validator.ValidateToken(session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "a@b.c", claims.Email)
	})

	t.Run("EmailIsCaseInsensitive", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Signup(ctx, "a@b.c", "alex", "s3cret")
		require.NoError(t, err)

		_, err = svc.Login(ctx, "A@B.C", "s3cret")
		assert.NoError(t, err)
	})

	t.Run("WrongPasswordIsUnauthorized", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Signup(ctx, "a@b.c", "alex", "s3cret")
		require.NoError(t, err)

		_, err = svc.Login(ctx, "a@b.c", "wrong")
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("UnknownEmailIsUnauthorized", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Login(ctx, "ghost@b.c", "pw")
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}
