package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ecotrackhq/carbon-tracker/internal/auth"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

type mockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func (m *mockUserRepository) Create(user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(id uint) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) Update(user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func newTestService() (*Service, *mockUserRepository) {
	repo := newMockUserRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewServiceWithInterfaces(repo, tokens, logger.New("error", "json", "stdout"))
	return svc, repo
}

func TestService_Register(t *testing.T) {
	svc, repo := newTestService()

	user, token, err := svc.Register(context.Background(), "  Alice ", "Alice@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Name != "Alice" {
		t.Errorf("Name = %q, want trimmed %q", user.Name, "Alice")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if user.PasswordHash == "hunter22" {
		t.Error("password stored in plaintext")
	}
	if len(repo.users) != 1 {
		t.Errorf("stored users = %d, want 1", len(repo.users))
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"missing name", "", "a@b.com", "hunter22"},
		{"missing email", "Alice", "", "hunter22"},
		{"missing password", "Alice", "a@b.com", ""},
		{"short password", "Alice", "a@b.com", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "a@b.com", "hunter22"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, _, err := svc.Register(ctx, "Alice Again", "a@b.com", "hunter23")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "Alice", "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, token, err := svc.Login(ctx, "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("user ID = %d, want %d", user.ID, registered.ID)
	}
	if token == "" {
		t.Error("expected a token")
	}
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Alice", "a@b.com", "hunter22"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Wrong password and unknown email yield the same error.
	_, _, wrongPass := svc.Login(ctx, "a@b.com", "nope")
	_, _, unknown := svc.Login(ctx, "nobody@b.com", "hunter22")
	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongPass)
	}
	if !errors.Is(unknown, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", unknown)
	}
}

func TestService_UpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Alice", "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, user.ID, "Alice Cooper", "")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Alice Cooper" {
		t.Errorf("Name = %q, want %q", updated.Name, "Alice Cooper")
	}

	// Old password still works when no new password was given.
	if _, _, err := svc.Login(ctx, "a@b.com", "hunter22"); err != nil {
		t.Errorf("Login() after name change error = %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, user.ID, "Alice Cooper", "newpass99"); err != nil {
		t.Fatalf("UpdateProfile() with password error = %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@b.com", "newpass99"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@b.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with old password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_UpdateProfile_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Alice", "a@b.com", "hunter22")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, user.ID, "   ", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name error = %v, want ErrValidation", err)
	}
	if _, err := svc.UpdateProfile(ctx, user.ID, "Alice", "abc"); !errors.Is(err, ErrValidation) {
		t.Errorf("short password error = %v, want ErrValidation", err)
	}
}
