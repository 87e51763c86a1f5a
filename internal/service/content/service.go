// Package content implements the content lifecycle core: category and note
// operations, the list-query pipeline builder, and the cascade consistency
// enforcer.
package content

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
	apperrors "notekeeper/pkg/errors"
	"notekeeper/pkg/observability"
)

// ListNotesQuery carries the request-level list parameters. Page defaults
// to 1; Sort, Order and Tags are the raw query values.
type ListNotesQuery struct {
	Page  int
	Sort  string
	Order string
	Tags  string
}

// CategoryWithNotes pairs a category id with the notes referencing it. An
// existing category with zero notes is a valid result, not a NotFound.
type CategoryWithNotes struct {
	CategoryID string
	Notes      []domain.Note
}

// Service defines the content lifecycle operations.
type Service interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, title, description string) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*CategoryWithNotes, error)
	EditCategory(ctx context.Context, id, title, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListNotes(ctx context.Context, query ListNotesQuery) ([]domain.Note, error)
	CreateNote(ctx context.Context, title, text, categoryTitle string, tags []string, creatorID string) (*domain.Note, error)
	GetNote(ctx context.Context, id string) (*domain.Note, error)
	EditNote(ctx context.Context, id, title, text string, tags []string) (*domain.Note, error)
	DeleteNote(ctx context.Context, id, requesterID string) error
}

type service struct {
	categories repository.CategoryRepository
	notes      repository.NoteRepository
	cascade    *CascadeEnforcer
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewService creates the content service. metrics may be nil.
func NewService(
	categories repository.CategoryRepository,
	notes repository.NoteRepository,
	cascade *CascadeEnforcer,
	metrics *observability.Collector,
	logger *zap.Logger,
) Service {
	return &service{
		categories: categories,
		notes:      notes,
		cascade:    cascade,
		metrics:    metrics,
		logger:     logger,
	}
}

// ListCategories returns all categories, no filtering.
func (s *service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListAll(ctx)
}

// CreateCategory validates the input, re-checks title uniqueness right
// before insertion and persists the category. The repository enforces the
// same invariant under a conditional write, so a concurrent duplicate create
// surfaces as Conflict rather than a second category.
func (s *service) CreateCategory(ctx context.Context, title, description string) (*domain.Category, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidation("title and description must not be empty")
	}

	existing, err := s.categories.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("category already exists")
	}

	category := domain.NewCategory(title, description)
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CategoriesCreated.Inc()
	}
	s.logger.Info("category created",
		zap.String("categoryId", category.ID),
		zap.String("title", category.Title),
	)
	return &category, nil
}

// GetCategory returns the category id paired with all notes referencing it.
func (s *service) GetCategory(ctx context.Context, id string) (*CategoryWithNotes, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperrors.NewNotFound("category")
	}

	notes, err := s.notes.FindByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return &CategoryWithNotes{CategoryID: category.ID, Notes: notes}, nil
}

// EditCategory persists a new title/description, then propagates the title
// to the denormalized references held by the category's notes. The two steps
// are not atomic: a propagation failure after the category update committed
// surfaces as a cascade failure, not as total failure.
func (s *service) EditCategory(ctx context.Context, id, title, description string) (*domain.Category, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidation("title and description must not be empty")
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperrors.NewNotFound("category")
	}

	if title != category.Title {
		other, err := s.categories.GetByTitle(ctx, title)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, apperrors.NewConflict("category already exists")
		}
	}

	category.Title = title
	category.Description = description
	category.UpdatedAt = now()
	if err := s.categories.Update(ctx, *category); err != nil {
		return nil, err
	}

	if err := s.cascade.OnCategoryRenamed(ctx, id, title); err != nil {
		s.recordCascadeFailure()
		return category, apperrors.NewCascadeFailure("category updated", "note title propagation", err)
	}
	return category, nil
}

// DeleteCategory removes the category, then cascade-removes every note
// referencing it. A cascade failure after the category removal committed
// leaves orphaned notes and is reported as such.
func (s *service) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperrors.NewNotFound("category")
	}

	if err := s.categories.Remove(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.CategoriesDeleted.Inc()
	}

	removed, err := s.cascade.OnCategoryDeleted(ctx, id)
	if err != nil {
		s.recordCascadeFailure()
		return apperrors.NewCascadeFailure("category removed", "cascade note deletion", err)
	}
	s.logger.Info("category deleted",
		zap.String("categoryId", id),
		zap.Int("notesRemoved", removed),
	)
	return nil
}

// ListNotes delegates to the pipeline builder and executes the plan.
func (s *service) ListNotes(ctx context.Context, query ListNotesQuery) ([]domain.Note, error) {
	pipeline := BuildNotePipeline(query.Page, query.Sort, query.Order, query.Tags)
	notes, err := s.notes.RunPipeline(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

// CreateNote resolves the owning category by title and persists a note
// referencing the resolved category id, the creator and the tag set.
func (s *service) CreateNote(ctx context.Context, title, text, categoryTitle string, tags []string, creatorID string) (*domain.Note, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if title == "" || text == "" {
		return nil, apperrors.NewValidation("title and text must not be empty")
	}

	category, err := s.categories.GetByTitle(ctx, categoryTitle)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperrors.NewNotFound("category")
	}

	note := domain.NewNote(title, text, *category, creatorID, tags)
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.NotesCreated.Inc()
	}
	s.logger.Info("note created",
		zap.String("noteId", note.ID),
		zap.String("categoryId", note.CategoryID),
	)
	return &note, nil
}

// GetNote returns the note or NotFound.
func (s *service) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperrors.NewNotFound("note")
	}
	return note, nil
}

// EditNote persists new title/text/tags with a fresh update timestamp.
func (s *service) EditNote(ctx context.Context, id, title, text string, tags []string) (*domain.Note, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if title == "" || text == "" {
		return nil, apperrors.NewValidation("title and text must not be empty")
	}

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperrors.NewNotFound("note")
	}

	note.Title = title
	note.Text = text
	if tags == nil {
		tags = []string{}
	}
	note.Tags = tags
	note.UpdatedAt = now()

	if err := s.notes.Update(ctx, *note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes the note, then detaches its id from the owning user's
// note list. The note's own creator reference is authoritative; the
// requester's id is only a fallback when no creator was recorded. The two
// steps are not atomic: a detach failure after the removal committed is
// reported as a cascade failure.
func (s *service) DeleteNote(ctx context.Context, id, requesterID string) error {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return apperrors.NewNotFound("note")
	}

	ownerID := note.Creator
	if ownerID == "" {
		ownerID = requesterID
	} else if requesterID != "" && requesterID != ownerID {
		s.logger.Warn("note deleted by a user other than its creator",
			zap.String("noteId", id),
			zap.String("creator", ownerID),
			zap.String("requester", requesterID),
		)
	}

	if err := s.notes.RemoveByID(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.NotesDeleted.Inc()
	}

	if ownerID == "" {
		// Nothing to detach: no creator recorded and no requester identity.
		return nil
	}
	if err := s.cascade.OnNoteDeleted(ctx, id, ownerID); err != nil {
		s.recordCascadeFailure()
		return apperrors.NewCascadeFailure("note removed", "creator note-list detachment", err)
	}
	return nil
}

func (s *service) recordCascadeFailure() {
	if s.metrics != nil {
		s.metrics.CascadeFailures.Inc()
	}
}

func now() time.Time {
	return time.Now().UTC()
}
