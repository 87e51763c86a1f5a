// Package repository defines the storage contracts consumed by the content
// core. Implementations guarantee single-document atomicity only; multi-step
// sequences are the service's responsibility and are not transactional.
package repository

import (
	"context"

	"notekeeper/internal/domain"
)

// CategoryRepository provides durable storage access for categories.
// A missing document is reported as (nil, nil); the service layer decides
// whether that is a NotFound condition.
type CategoryRepository interface {
	ListAll(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByTitle(ctx context.Context, title string) (*domain.Category, error)

	// Create fails with a conflict error when the title already exists.
	Create(ctx context.Context, category domain.Category) error
	Update(ctx context.Context, category domain.Category) error
	Remove(ctx context.Context, id string) error
}

// NoteRepository provides durable storage access for notes, including
// count/skip/limit access and match/sort pipeline execution.
type NoteRepository interface {
	ListPage(ctx context.Context, skip, limit int) ([]domain.Note, error)
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	FindByCategory(ctx context.Context, categoryID string) ([]domain.Note, error)
	Create(ctx context.Context, note domain.Note) error
	Update(ctx context.Context, note domain.Note) error
	RemoveByID(ctx context.Context, id string) error

	// RemoveAllByCategory deletes every note referencing the category and
	// returns how many were removed.
	RemoveAllByCategory(ctx context.Context, categoryID string) (int, error)

	// RunPipeline executes a match/sort/paginate pipeline and returns an
	// ordered sequence of notes.
	RunPipeline(ctx context.Context, pipeline NotePipeline) ([]domain.Note, error)

	Count(ctx context.Context) (int, error)
}

// UserRepository provides storage access for the external user entity.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) error
	Update(ctx context.Context, user domain.User) error
}
