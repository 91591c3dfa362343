package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/mocks"
)

// setupTestRedis starts an in-process Redis for the duration of the test
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// authDeps bundles the collaborators of AuthServiceImpl so tests can adjust them
type authDeps struct {
	userRepo    *mocks.MockUserRepository
	sessionRepo *mocks.MockSessionRepository
	passwordSvc *mocks.MockPasswordService
	tokenSvc    *mocks.MockTokenService
	notifier    *mocks.MockNotificationService
	audit       *mocks.MockAuditLogger
	redis       *redis.Client
	mr          *miniredis.Miniredis
}

func newAuthDeps(t *testing.T) *authDeps {
	t.Helper()

	client, mr := setupTestRedis(t)
	return &authDeps{
		userRepo:    mocks.NewMockUserRepository(),
		sessionRepo: mocks.NewMockSessionRepository(),
		passwordSvc: mocks.NewMockPasswordService(),
		tokenSvc:    mocks.NewMockTokenService(),
		notifier:    mocks.NewMockNotificationService(),
		audit:       mocks.NewMockAuditLogger(),
		redis:       client,
		mr:          mr,
	}
}

// createAuthServiceForTest creates an AuthService over the given mock dependencies
func createAuthServiceForTest(t *testing.T, d *authDeps) domain.AuthService {
	t.Helper()

	return NewAuthService(d.userRepo, d.sessionRepo, d.passwordSvc, d.tokenSvc, d.notifier, d.redis, d.audit, AuthConfig{
		SessionTTL: 7 * 24 * time.Hour,
		ResetTTL:   time.Hour,
		ResetURL:   "http://localhost:3000/reset-password",
	})
}

// createValidUser creates a valid user entity for testing
func createValidUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:           "user-1",
		Email:        "test@example.com",
		PasswordHash: "hashed_password123",
		FirstName:    "Test",
		LastName:     "User",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now().Add(-24 * time.Hour),
		UpdatedAt:    time.Now().Add(-1 * time.Hour),
	}
}

// createInactiveUser creates an inactive user entity for testing
func createInactiveUser(t *testing.T) *domain.User {
	t.Helper()

	user := createValidUser(t)
	user.IsActive = false
	return user
}

// createAdminUser creates an admin user entity for testing
func createAdminUser(t *testing.T) *domain.User {
	t.Helper()

	user := createValidUser(t)
	user.ID = "admin-1"
	user.Email = "admin@example.com"
	user.Role = domain.RoleAdmin
	return user
}

// createValidSession creates a valid session entity for testing
func createValidSession(t *testing.T, userID string) *domain.Session {
	t.Helper()

	return &domain.Session{
		ID:        "sess-1",
		UserID:    userID,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}
}

// createValidTokenClaims creates valid token claims for testing
func createValidTokenClaims(t *testing.T, userID, role, sessionID string) *domain.TokenClaims {
	t.Helper()

	now := time.Now().Unix()
	return &domain.TokenClaims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		IssuedAt:  now,
		ExpiresAt: now + 604800,
	}
}

// userStore backs a MockUserRepository with a map keyed by id
func userStore(t *testing.T, repo *mocks.MockUserRepository, users ...*domain.User) map[string]*domain.User {
	t.Helper()

	byID := map[string]*domain.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
		if u, ok := byID[id]; ok {
			return u, nil
		}
		return nil, domain.ErrUserNotFound
	}
	repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		for _, u := range byID {
			if u.Email == email {
				return u, nil
			}
		}
		return nil, domain.ErrUserNotFound
	}
	repo.UpdateFunc = func(ctx context.Context, user *domain.User) error {
		if _, ok := byID[user.ID]; !ok {
			return domain.ErrUserNotFound
		}
		byID[user.ID] = user
		return nil
	}
	repo.DeleteFunc = func(ctx context.Context, id string) error {
		if _, ok := byID[id]; !ok {
			return domain.ErrUserNotFound
		}
		delete(byID, id)
		return nil
	}
	return byID
}

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
