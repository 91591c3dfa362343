package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/you/emrsvc/domain"
)

// MinPasswordLength is the shortest password accepted on register and reset
const MinPasswordLength = 8

const resetKeyPrefix = "pwreset:"

// AuthConfig holds the cookie/JWT flow settings
type AuthConfig struct {
	SessionTTL time.Duration
	ResetTTL   time.Duration
	// ResetURL, when set, is linked in reset emails with ?token=<token>
	ResetURL string
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	notifier    domain.NotificationService
	redisClient *redis.Client
	audit       domain.AuditLogger
	config      AuthConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	notifier domain.NotificationService,
	redisClient *redis.Client,
	audit domain.AuditLogger,
	config AuthConfig,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		notifier:    notifier,
		redisClient: redisClient,
		audit:       audit,
		config:      config,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	required := []struct{ name, value string }{
		{"email", in.Email},
		{"password", in.Password},
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, &domain.RequiredFieldError{Field: f.name}
		}
	}

	email := normalizeEmail(in.Email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if len(in.Password) < MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	hashedPassword, err := s.passwordSvc.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent, user.ID).
		WithEmail(user.Email).
		WithSession(result.SessionID))
	return result, nil
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		s.loginFailed(ctx, "", email, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		s.loginFailed(ctx, user.ID, email, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.loginFailed(ctx, user.ID, email, domain.ErrUserInactive)
		return nil, domain.ErrUserInactive
	}

	now := time.Now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).
		WithEmail(user.Email).
		WithSession(result.SessionID))
	return result, nil
}

func (s *AuthServiceImpl) loginFailed(ctx context.Context, userID, email string, cause error) {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, userID).
		WithEmail(email).
		WithError(cause))
}

// issue creates a session and signs a token bound to it
func (s *AuthServiceImpl) issue(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, expiresAt, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:      user,
		Token:     token,
		SessionID: session.ID,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate implements domain.AuthService. A token is only good while its
// session exists and its user is still active.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, *domain.TokenClaims, error) {
	claims, err := s.tokenSvc.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, domain.ErrUserInactive
	}
	return user, claims, nil
}

// Refresh implements domain.AuthService: the current session is replaced by a new one
func (s *AuthServiceImpl) Refresh(ctx context.Context, claims *domain.TokenClaims) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := s.sessionRepo.Delete(ctx, claims.SessionID); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}
	return s.issue(ctx, user)
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	session, _ := s.sessionRepo.FindByID(ctx, sessionID)
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	userID := ""
	if session != nil {
		userID = session.UserID
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, userID).WithSession(sessionID))
	return nil
}

// ForgotPassword implements domain.AuthService. Unknown or inactive
// accounts are not reported so the endpoint cannot enumerate users.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &domain.RequiredFieldError{Field: "email"}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil
	}

	token, err := randomToken(32)
	if err != nil {
		return err
	}
	if err := s.redisClient.Set(ctx, resetKeyPrefix+token, user.ID, s.config.ResetTTL).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	body := fmt.Sprintf("Your password reset token is: %s. It is valid for %d minutes.", token, int(s.config.ResetTTL.Minutes()))
	if s.config.ResetURL != "" {
		body += fmt.Sprintf("\nReset your password at %s?token=%s", s.config.ResetURL, token)
	}
	if err := s.notifier.SendEmail(user.Email, "Password reset", body); err != nil {
		s.redisClient.Del(ctx, resetKeyPrefix+token)
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword implements domain.AuthService
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &domain.RequiredFieldError{Field: "token"}
	}
	if len(password) < MinPasswordLength {
		return domain.ErrWeakPassword
	}

	userID, err := s.redisClient.GetDel(ctx, resetKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashed
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessionRepo.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PasswordResetEvent, user.ID).WithEmail(user.Email))
	return nil
}

// SeedAdmin implements domain.AuthService. It reports whether an admin was created or promoted.
func (s *AuthServiceImpl) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	admins, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return false, nil
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, errors.New("no admin exists and no bootstrap admin credentials are configured")
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = domain.RoleAdmin
		existing.IsActive = true
		existing.UpdatedAt = now
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("failed to promote admin: %w", err)
		}
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AdminBootstrappedEvent, existing.ID).
			WithEmail(email).
			WithMetadata("promoted", true))
		return true, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	admin := &domain.User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AdminBootstrappedEvent, admin.ID).WithEmail(email))
	return true, nil
}

// randomToken returns n random bytes hex encoded
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
