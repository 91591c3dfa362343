package mocks

import (
	"context"
	"time"

	"github.com/you/emrsvc/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc            func(ctx context.Context, user *domain.User) error
	FindByEmailFunc       func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc          func(ctx context.Context, id string) (*domain.User, error)
	UpdateFunc            func(ctx context.Context, user *domain.User) error
	DeleteFunc            func(ctx context.Context, id string) error
	ListFunc              func(ctx context.Context, q domain.UserQuery) ([]*domain.User, int64, error)
	CountActiveAdminsFunc func(ctx context.Context) (int64, error)
	TouchLastLoginFunc    func(ctx context.Context, id string, at time.Time) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success with a fixed id
	if user.ID == "" {
		user.ID = "user-1"
	}
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// Update updates an existing user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

// Delete removes a user
func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// List returns a page of users
func (m *MockUserRepository) List(ctx context.Context, q domain.UserQuery) ([]*domain.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return nil, 0, nil
}

// CountActiveAdmins counts active admins
func (m *MockUserRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	if m.CountActiveAdminsFunc != nil {
		return m.CountActiveAdminsFunc(ctx)
	}
	// Default behavior: one admin exists
	return 1, nil
}

// TouchLastLogin records a login time
func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id, at)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
