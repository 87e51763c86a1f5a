// Package mocks provides in-memory repository implementations for tests.
// They keep insertion order so paginated listings are deterministic, and
// support per-operation error injection for failure-path tests.
package mocks

import (
	"context"
	"sync"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
	apperrors "notekeeper/pkg/errors"
)

// MockCategoryRepository is an in-memory repository.CategoryRepository.
type MockCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
	order      []string
	errs       map[string]error
}

// NewMockCategoryRepository creates an empty category store.
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[string]domain.Category),
		errs:       make(map[string]error),
	}
}

// SetError makes the named operation fail with err until cleared with nil.
func (m *MockCategoryRepository) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

func (m *MockCategoryRepository) injectedError(op string) error {
	return m.errs[op]
}

func (m *MockCategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("ListAll"); err != nil {
		return nil, err
	}
	result := make([]domain.Category, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.categories[id])
	}
	return result, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("GetByID"); err != nil {
		return nil, err
	}
	category, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	return &category, nil
}

func (m *MockCategoryRepository) GetByTitle(ctx context.Context, title string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("GetByTitle"); err != nil {
		return nil, err
	}
	for _, id := range m.order {
		if m.categories[id].Title == title {
			category := m.categories[id]
			return &category, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("Create"); err != nil {
		return err
	}
	for _, id := range m.order {
		if m.categories[id].Title == category.Title {
			return apperrors.NewConflict("category already exists")
		}
	}
	m.categories[category.ID] = category
	m.order = append(m.order, category.ID)
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("Update"); err != nil {
		return err
	}
	if _, ok := m.categories[category.ID]; !ok {
		return apperrors.NewNotFound("category")
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("Remove"); err != nil {
		return err
	}
	delete(m.categories, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

// MockNoteRepository is an in-memory repository.NoteRepository.
type MockNoteRepository struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
	order []string
	errs  map[string]error
}

// NewMockNoteRepository creates an empty note store.
func NewMockNoteRepository() *MockNoteRepository {
	return &MockNoteRepository{
		notes: make(map[string]domain.Note),
		errs:  make(map[string]error),
	}
}

// SetError makes the named operation fail with err until cleared with nil.
func (m *MockNoteRepository) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

func (m *MockNoteRepository) injectedError(op string) error {
	return m.errs[op]
}

func (m *MockNoteRepository) ordered() []domain.Note {
	result := make([]domain.Note, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.notes[id])
	}
	return result
}

func (m *MockNoteRepository) ListPage(ctx context.Context, skip, limit int) ([]domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("ListPage"); err != nil {
		return nil, err
	}
	pipeline := repository.NotePipeline{Page: repository.PageStage{Skip: skip, Limit: limit}}
	return pipeline.Apply(m.ordered()), nil
}

func (m *MockNoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("GetByID"); err != nil {
		return nil, err
	}
	note, ok := m.notes[id]
	if !ok {
		return nil, nil
	}
	return &note, nil
}

func (m *MockNoteRepository) FindByCategory(ctx context.Context, categoryID string) ([]domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("FindByCategory"); err != nil {
		return nil, err
	}
	result := make([]domain.Note, 0)
	for _, note := range m.ordered() {
		if note.CategoryID == categoryID {
			result = append(result, note)
		}
	}
	return result, nil
}

func (m *MockNoteRepository) Create(ctx context.Context, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("Create"); err != nil {
		return err
	}
	m.notes[note.ID] = note
	m.order = append(m.order, note.ID)
	return nil
}

func (m *MockNoteRepository) Update(ctx context.Context, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("Update"); err != nil {
		return err
	}
	if _, ok := m.notes[note.ID]; !ok {
		return apperrors.NewNotFound("note")
	}
	m.notes[note.ID] = note
	return nil
}

func (m *MockNoteRepository) RemoveByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("RemoveByID"); err != nil {
		return err
	}
	delete(m.notes, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockNoteRepository) RemoveAllByCategory(ctx context.Context, categoryID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("RemoveAllByCategory"); err != nil {
		return 0, err
	}
	removed := 0
	remaining := m.order[:0]
	for _, id := range m.order {
		if m.notes[id].CategoryID == categoryID {
			delete(m.notes, id)
			removed++
			continue
		}
		remaining = append(remaining, id)
	}
	m.order = remaining
	return removed, nil
}

func (m *MockNoteRepository) RunPipeline(ctx context.Context, pipeline repository.NotePipeline) ([]domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("RunPipeline"); err != nil {
		return nil, err
	}
	return pipeline.Apply(m.ordered()), nil
}

func (m *MockNoteRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("Count"); err != nil {
		return 0, err
	}
	return len(m.notes), nil
}

var _ repository.NoteRepository = (*MockNoteRepository)(nil)

// MockUserRepository is an in-memory repository.UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	errs  map[string]error
}

// NewMockUserRepository creates an empty user store.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]domain.User),
		errs:  make(map[string]error),
	}
}

// SetError makes the named operation fail with err until cleared with nil.
func (m *MockUserRepository) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

func (m *MockUserRepository) injectedError(op string) error {
	return m.errs[op]
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("GetByID"); err != nil {
		return nil, err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("GetByEmail"); err != nil {
		return nil, err
	}
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injectedError("GetByUsername"); err != nil {
		return nil, err
	}
	for _, user := range m.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("Create"); err != nil {
		return err
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injectedError("Update"); err != nil {
		return err
	}
	if _, ok := m.users[user.ID]; !ok {
		return apperrors.NewNotFound("user")
	}
	m.users[user.ID] = user
	return nil
}

var _ repository.UserRepository = (*MockUserRepository)(nil)
