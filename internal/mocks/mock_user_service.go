package mocks

import (
	"context"

	"github.com/you/emrsvc/domain"
)

// MockUserService implements domain.UserService interface for testing
type MockUserService struct {
	GetProfileFunc    func(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfileFunc func(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error)
	SetAvatarFunc     func(ctx context.Context, userID, url string) (*domain.User, error)
	ListUsersFunc     func(ctx context.Context, q domain.UserQuery) (*domain.UserPage, error)
	GetUserFunc       func(ctx context.Context, userID string) (*domain.User, error)
	DeleteUserFunc    func(ctx context.Context, userID string) error
}

// NewMockUserService creates a new MockUserService
func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return &domain.User{ID: userID, Email: "test@example.com", Role: domain.RoleUser, IsActive: true}, nil
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, upd)
	}
	u := &domain.User{ID: userID, Email: "test@example.com", Role: domain.RoleUser}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	return u, nil
}

func (m *MockUserService) SetAvatar(ctx context.Context, userID, url string) (*domain.User, error) {
	if m.SetAvatarFunc != nil {
		return m.SetAvatarFunc(ctx, userID, url)
	}
	return &domain.User{ID: userID, Avatar: url, Role: domain.RoleUser}, nil
}

func (m *MockUserService) ListUsers(ctx context.Context, q domain.UserQuery) (*domain.UserPage, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, q)
	}
	return &domain.UserPage{Users: []*domain.User{}, Pagination: domain.Pagination{Page: q.Page, Limit: q.Limit}}, nil
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, userID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserService = (*MockUserService)(nil)
