// Package users handles registration, login, and profile management.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecotrackhq/carbon-tracker/internal/auth"
	prommetrics "github.com/ecotrackhq/carbon-tracker/internal/metrics"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

const minPasswordLength = 6

var (
	// ErrEmailTaken is returned when registering with an email that
	// already has an account.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials is returned on login failure. Deliberately
	// the same for unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
)

// UserRepository interface for user persistence.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// Service manages user accounts.
type Service struct {
	userRepo UserRepository
	tokens   *auth.TokenManager
	log      *logger.Logger
}

// NewService creates a new users service.
func NewService(userRepo *repository.UserRepository, tokens *auth.TokenManager, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, tokens: tokens, log: log}
}

// NewServiceWithInterfaces creates a new users service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, tokens *auth.TokenManager, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, tokens: tokens, log: log}
}

// Register creates an account and returns the user with a fresh token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	prommetrics.RegistrationsTotal.Inc()
	s.log.Info().Uint("user_id", user.ID).Msg("User registered")

	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("User logged in")

	return user, token, nil
}

// GetProfile loads a user by id.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile changes the display name and, when newPassword is
// non-empty, the password.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, name, newPassword string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.Name = name
	if newPassword != "" {
		if len(newPassword) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
		}
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("Profile updated")

	return user, nil
}
