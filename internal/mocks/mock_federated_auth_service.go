package mocks

import (
	"context"
	"time"

	"github.com/you/emrsvc/domain"
)

// MockFederatedAuthService implements domain.FederatedAuthService interface for testing
type MockFederatedAuthService struct {
	StartGoogleSignInFunc       func(ctx context.Context, redirect string) (string, error)
	CompleteGoogleSignInFunc    func(ctx context.Context, state, code, providerErr string) (*domain.FederatedUser, *domain.Session, string, error)
	SendPhoneVerificationFunc   func(ctx context.Context, phone string) (*domain.PhoneChallenge, error)
	VerifyPhoneCodeFunc         func(ctx context.Context, verificationID, code string) (*domain.FederatedUser, *domain.Session, error)
	ResendPhoneVerificationFunc func(ctx context.Context, verificationID string) (*domain.PhoneChallenge, error)
	CurrentUserFunc             func(ctx context.Context, sessionID string) (*domain.FederatedUser, error)
	SignOutFunc                 func(ctx context.Context, sessionID string) error
}

// NewMockFederatedAuthService creates a new MockFederatedAuthService
func NewMockFederatedAuthService() *MockFederatedAuthService {
	return &MockFederatedAuthService{}
}

func (m *MockFederatedAuthService) StartGoogleSignIn(ctx context.Context, redirect string) (string, error) {
	if m.StartGoogleSignInFunc != nil {
		return m.StartGoogleSignInFunc(ctx, redirect)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=mock", nil
}

func (m *MockFederatedAuthService) CompleteGoogleSignIn(ctx context.Context, state, code, providerErr string) (*domain.FederatedUser, *domain.Session, string, error) {
	if m.CompleteGoogleSignInFunc != nil {
		return m.CompleteGoogleSignInFunc(ctx, state, code, providerErr)
	}
	return nil, nil, "", domain.NewProviderError(domain.CodeCancelledPopupRequest, nil)
}

func (m *MockFederatedAuthService) SendPhoneVerification(ctx context.Context, phone string) (*domain.PhoneChallenge, error) {
	if m.SendPhoneVerificationFunc != nil {
		return m.SendPhoneVerificationFunc(ctx, phone)
	}
	return &domain.PhoneChallenge{VerificationID: "ver-1", Phone: phone, ExpiresAt: time.Now().Add(5 * time.Minute)}, nil
}

func (m *MockFederatedAuthService) VerifyPhoneCode(ctx context.Context, verificationID, code string) (*domain.FederatedUser, *domain.Session, error) {
	if m.VerifyPhoneCodeFunc != nil {
		return m.VerifyPhoneCodeFunc(ctx, verificationID, code)
	}
	return nil, nil, domain.NewProviderError(domain.CodeInvalidVerificationCode, nil)
}

func (m *MockFederatedAuthService) ResendPhoneVerification(ctx context.Context, verificationID string) (*domain.PhoneChallenge, error) {
	if m.ResendPhoneVerificationFunc != nil {
		return m.ResendPhoneVerificationFunc(ctx, verificationID)
	}
	return &domain.PhoneChallenge{VerificationID: "ver-2", ExpiresAt: time.Now().Add(5 * time.Minute)}, nil
}

func (m *MockFederatedAuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.FederatedUser, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, sessionID)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockFederatedAuthService) SignOut(ctx context.Context, sessionID string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, sessionID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.FederatedAuthService = (*MockFederatedAuthService)(nil)
