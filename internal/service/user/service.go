// Package user implements account registration and credential login.
package user

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
	"notekeeper/pkg/auth"
	apperrors "notekeeper/pkg/errors"
)

// Session is the result of a successful login.
type Session struct {
	Token  string
	UserID string
}

// Service defines the account operations.
type Service interface {
	Signup(ctx context.Context, email, username, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
}

type service struct {
	users     repository.UserRepository
	generator *auth.Generator
	logger    *zap.Logger
}

// NewService creates the user service.
func NewService(users repository.UserRepository, generator *auth.Generator, logger *zap.Logger) Service {
	return &service{users: users, generator: generator, logger: logger}
}

// Signup registers a new account. Email and username must both be unused.
func (s *service) Signup(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, apperrors.NewValidation("email, username and password must not be empty")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("email already registered")
	}

	existing, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternal("failed to hash password", err)
	}

	user := domain.NewUser(email, username, string(hash))
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("userId", user.ID),
		zap.String("username", user.Username),
	)
	return &user, nil
}

// Login verifies the credentials and issues a signed token. A wrong password
// and an unknown email produce the same Unauthorized answer.
func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidation("email and password must not be empty")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, err := s.generator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.NewInternal("failed to issue token", err)
	}
	return &Session{Token: token, UserID: user.ID}, nil
}
