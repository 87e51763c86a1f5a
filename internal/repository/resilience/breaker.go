// Package resilience decorates the storage repositories with circuit
// breakers so a struggling storage backend fails fast instead of piling up
// in-flight requests.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
	apperrors "notekeeper/pkg/errors"
)

func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
		// Only storage failures trip the breaker; semantic outcomes such as
		// NotFound or Conflict are healthy responses.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if appErr := apperrors.GetAppError(err); appErr != nil {
				return appErr.Type != apperrors.ErrorTypeInternal
			}
			return false
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, apperrors.NewInternal("storage circuit open", err)
		}
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}

func executeVoid(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := execute(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// CategoryRepository wraps a repository.CategoryRepository with a breaker.
type CategoryRepository struct {
	inner repository.CategoryRepository
	cb    *gobreaker.CircuitBreaker
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository decorates inner with a circuit breaker.
func NewCategoryRepository(inner repository.CategoryRepository, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{inner: inner, cb: newBreaker("category-repository", logger)}
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	return execute(r.cb, func() ([]domain.Category, error) { return r.inner.ListAll(ctx) })
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return execute(r.cb, func() (*domain.Category, error) { return r.inner.GetByID(ctx, id) })
}

func (r *CategoryRepository) GetByTitle(ctx context.Context, title string) (*domain.Category, error) {
	return execute(r.cb, func() (*domain.Category, error) { return r.inner.GetByTitle(ctx, title) })
}

func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) error {
	return executeVoid(r.cb, func() error { return r.inner.Create(ctx, category) })
}

func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	return executeVoid(r.cb, func() error { return r.inner.Update(ctx, category) })
}

func (r *CategoryRepository) Remove(ctx context.Context, id string) error {
	return executeVoid(r.cb, func() error { return r.inner.Remove(ctx, id) })
}

// NoteRepository wraps a repository.NoteRepository with a breaker.
type NoteRepository struct {
	inner repository.NoteRepository
	cb    *gobreaker.CircuitBreaker
}

var _ repository.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository decorates inner with a circuit breaker.
func NewNoteRepository(inner repository.NoteRepository, logger *zap.Logger) *NoteRepository {
	return &NoteRepository{inner: inner, cb: newBreaker("note-repository", logger)}
}

func (r *NoteRepository) ListPage(ctx context.Context, skip, limit int) ([]domain.Note, error) {
	return execute(r.cb, func() ([]domain.Note, error) { return r.inner.ListPage(ctx, skip, limit) })
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	return execute(r.cb, func() (*domain.Note, error) { return r.inner.GetByID(ctx, id) })
}

func (r *NoteRepository) FindByCategory(ctx context.Context, categoryID string) ([]domain.Note, error) {
	return execute(r.cb, func() ([]domain.Note, error) { return r.inner.FindByCategory(ctx, categoryID) })
}

func (r *NoteRepository) Create(ctx context.Context, note domain.Note) error {
	return executeVoid(r.cb, func() error { return r.inner.Create(ctx, note) })
}

func (r *NoteRepository) Update(ctx context.Context, note domain.Note) error {
	return executeVoid(r.cb, func() error { return r.inner.Update(ctx, note) })
}

func (r *NoteRepository) RemoveByID(ctx context.Context, id string) error {
	return executeVoid(r.cb, func() error { return r.inner.RemoveByID(ctx, id) })
}

func (r *NoteRepository) RemoveAllByCategory(ctx context.Context, categoryID string) (int, error) {
	return execute(r.cb, func() (int, error) { return r.inner.RemoveAllByCategory(ctx, categoryID) })
}

func (r *NoteRepository) RunPipeline(ctx context.Context, pipeline repository.NotePipeline) ([]domain.Note, error) {
	return execute(r.cb, func() ([]domain.Note, error) { return r.inner.RunPipeline(ctx, pipeline) })
}

func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	return execute(r.cb, func() (int, error) { return r.inner.Count(ctx) })
}

// UserRepository wraps a repository.UserRepository with a breaker.
type UserRepository struct {
	inner repository.UserRepository
	cb    *gobreaker.CircuitBreaker
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository decorates inner with a circuit breaker.
func NewUserRepository(inner repository.UserRepository, logger *zap.Logger) *UserRepository {
	return &UserRepository{inner: inner, cb: newBreaker("user-repository", logger)}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return execute(r.cb, func() (*domain.User, error) { return r.inner.GetByID(ctx, id) })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return execute(r.cb, func() (*domain.User, error) { return r.inner.GetByEmail(ctx, email) })
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return execute(r.cb, func() (*domain.User, error) { return r.inner.GetByUsername(ctx, username) })
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	return executeVoid(r.cb, func() error { return r.inner.Create(ctx, user) })
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	return executeVoid(r.cb, func() error { return r.inner.Update(ctx, user) })
}
