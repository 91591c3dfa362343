package mocks

import (
	"context"
	"time"

	"github.com/you/emrsvc/domain"
)

// MockFederatedUserRepository implements domain.FederatedUserRepository for testing
type MockFederatedUserRepository struct {
	UpsertFunc    func(ctx context.Context, u *domain.FederatedUser) error
	FindByUIDFunc func(ctx context.Context, uid string) (*domain.FederatedUser, error)
}

// NewMockFederatedUserRepository creates a new MockFederatedUserRepository
func NewMockFederatedUserRepository() *MockFederatedUserRepository {
	return &MockFederatedUserRepository{}
}

// Upsert stores a federated identity
func (m *MockFederatedUserRepository) Upsert(ctx context.Context, u *domain.FederatedUser) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, u)
	}
	// Default behavior: uid derived from the subject
	if u.UID == "" {
		u.UID = "fed-" + u.ProviderSubject
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.LastLoginAt = now
	return nil
}

// FindByUID finds a federated identity
func (m *MockFederatedUserRepository) FindByUID(ctx context.Context, uid string) (*domain.FederatedUser, error) {
	if m.FindByUIDFunc != nil {
		return m.FindByUIDFunc(ctx, uid)
	}
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.FederatedUserRepository = (*MockFederatedUserRepository)(nil)
