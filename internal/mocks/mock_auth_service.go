package mocks

import (
	"context"
	"time"

	"github.com/you/emrsvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error)
	LoginFunc          func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	AuthenticateFunc   func(ctx context.Context, token string) (*domain.User, *domain.TokenClaims, error)
	RefreshFunc        func(ctx context.Context, claims *domain.TokenClaims) (*domain.AuthResult, error)
	LogoutFunc         func(ctx context.Context, sessionID string) error
	ForgotPasswordFunc func(ctx context.Context, email string) error
	ResetPasswordFunc  func(ctx context.Context, token, password string) error
	SeedAdminFunc      func(ctx context.Context, email, password string) (bool, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func mockResult(email, firstName, lastName, role string) *domain.AuthResult {
	now := time.Now()
	return &domain.AuthResult{
		User: &domain.User{
			ID:        "user-1",
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Token:     "mock_token",
		SessionID: "sess-1",
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

// Register registers a new user
func (m *MockAuthService) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return mockResult(in.Email, in.FirstName, in.LastName, domain.RoleUser), nil
}

// Login authenticates a user
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return mockResult(email, "Test", "User", domain.RoleUser), nil
}

// Authenticate resolves a token to its user and claims
func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*domain.User, *domain.TokenClaims, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	// Default behavior: every token is rejected
	return nil, nil, domain.ErrTokenInvalid
}

// Refresh issues a new token for the session in claims
func (m *MockAuthService) Refresh(ctx context.Context, claims *domain.TokenClaims) (*domain.AuthResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, claims)
	}
	res := mockResult("test@example.com", "Test", "User", claims.Role)
	res.User.ID = claims.UserID
	res.SessionID = claims.SessionID
	return res, nil
}

// Logout ends a session
func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

// ForgotPassword starts a password reset
func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

// ResetPassword completes a password reset
func (m *MockAuthService) ResetPassword(ctx context.Context, token, password string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, password)
	}
	return nil
}

// SeedAdmin creates the bootstrap admin
func (m *MockAuthService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	if m.SeedAdminFunc != nil {
		return m.SeedAdminFunc(ctx, email, password)
	}
	return false, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
