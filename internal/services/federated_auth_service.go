package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/redis/go-redis/v9"
	"github.com/you/emrsvc/domain"
	"golang.org/x/oauth2"
)

// FederatedConfig holds the provider-federated flow settings
type FederatedConfig struct {
	SessionTTL      time.Duration
	PhoneTTL        time.Duration
	CodeLength      int
	MaxAttempts     int
	ResendWindow    time.Duration
	StateTTL        time.Duration
	SuccessRedirect string
}

// pendingSignIn is the single-use record behind an OAuth state value
type pendingSignIn struct {
	Verifier string    `json:"verifier"`
	Redirect string    `json:"redirect"`
	Expires  time.Time `json:"expires_at"`
}

// FederatedAuthServiceImpl implements domain.FederatedAuthService
type FederatedAuthServiceImpl struct {
	userRepo    domain.FederatedUserRepository
	sessionRepo domain.SessionRepository
	google      domain.IdentityProvider
	notifier    domain.NotificationService
	codeHasher  domain.PasswordService
	redisClient *redis.Client
	audit       domain.AuditLogger
	config      FederatedConfig
}

// NewFederatedAuthService creates a new federated auth service.
// google may be nil when Google sign-in is not configured.
func NewFederatedAuthService(
	userRepo domain.FederatedUserRepository,
	sessionRepo domain.SessionRepository,
	google domain.IdentityProvider,
	notifier domain.NotificationService,
	codeHasher domain.PasswordService,
	redisClient *redis.Client,
	audit domain.AuditLogger,
	config FederatedConfig,
) domain.FederatedAuthService {
	return &FederatedAuthServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		google:      google,
		notifier:    notifier,
		codeHasher:  codeHasher,
		redisClient: redisClient,
		audit:       audit,
		config:      config,
	}
}

func stateKey(state string) string { return fmt.Sprintf("oauth:state:%s", state) }
func ticketKey(id string) string { return fmt.Sprintf("phone:ticket:%s", id) }
func attemptsKey(id string) string { return fmt.Sprintf("phone:attempts:%s", id) }
func resendKey(phone string) string { return fmt.Sprintf("phone:resend:%s", phone) }

// StartGoogleSignIn implements domain.FederatedAuthService
func (s *FederatedAuthServiceImpl) StartGoogleSignIn(ctx context.Context, redirect string) (string, error) {
	if s.google == nil {
		return "", domain.NewProviderError(domain.CodeOperationNotAllowed, nil)
	}

	state, err := randomToken(16)
	if err != nil {
		return "", err
	}
	pending := pendingSignIn{
		Verifier: oauth2.GenerateVerifier(),
		Redirect: safeRedirect(redirect, s.config.SuccessRedirect),
		Expires:  time.Now().UTC().Add(s.config.StateTTL),
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return "", fmt.Errorf("failed to encode sign-in state: %w", err)
	}
	if err := s.redisClient.Set(ctx, stateKey(state), data, s.config.StateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store sign-in state: %w", err)
	}

	return s.google.AuthCodeURL(state, pending.Verifier), nil
}

// safeRedirect keeps post-login redirects on this site
func safeRedirect(redirect, fallback string) string {
	if strings.HasPrefix(redirect, "/") && !strings.HasPrefix(redirect, "//") && !strings.Contains(redirect, `\`) {
		return redirect
	}
	return fallback
}

// CompleteGoogleSignIn implements domain.FederatedAuthService
func (s *FederatedAuthServiceImpl) CompleteGoogleSignIn(ctx context.Context, state, code, providerErr string) (*domain.FederatedUser, *domain.Session, string, error) {
	if s.google == nil {
		return nil, nil, "", domain.NewProviderError(domain.CodeOperationNotAllowed, nil)
	}

	var pending *pendingSignIn
	if state != "" {
		raw, err := s.redisClient.GetDel(ctx, stateKey(state)).Bytes()
		switch {
		case err == nil:
			pending = &pendingSignIn{}
			if err := json.Unmarshal(raw, pending); err != nil {
				return nil, nil, "", fmt.Errorf("failed to decode sign-in state: %w", err)
			}
		case !errors.Is(err, redis.Nil):
			return nil, nil, "", fmt.Errorf("failed to load sign-in state: %w", err)
		}
	}

	if providerErr != "" {
		providerCode := domain.CodeOperationNotAllowed
		if providerErr == "access_denied" {
			providerCode = domain.CodePopupClosedByUser
		}
		return nil, nil, "", s.providerFailure(ctx, domain.ProviderGoogle, providerCode, errors.New(providerErr))
	}
	if pending == nil || code == "" {
		return nil, nil, "", s.providerFailure(ctx, domain.ProviderGoogle, domain.CodeCancelledPopupRequest, nil)
	}

	profile, err := s.google.Exchange(ctx, code, pending.Verifier)
	if err != nil {
		return nil, nil, "", s.providerFailure(ctx, domain.ProviderGoogle, domain.CodeNetworkRequestFailed, err)
	}

	user := &domain.FederatedUser{
		Email:           strings.ToLower(profile.Email),
		DisplayName:     profile.Name,
		PhotoURL:        profile.Picture,
		EmailVerified:   profile.EmailVerified,
		AuthProvider:    domain.ProviderGoogle,
		ProviderSubject: profile.Subject,
	}
	session, err := s.signIn(ctx, user)
	if err != nil {
		return nil, nil, "", err
	}

	redirect := pending.Redirect
	if redirect == "" {
		redirect = s.config.SuccessRedirect
	}
	return user, session, redirect, nil
}

// SendPhoneVerification implements domain.FederatedAuthService
func (s *FederatedAuthServiceImpl) SendPhoneVerification(ctx context.Context, phone string) (*domain.PhoneChallenge, error) {
	e164, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	return s.issueTicket(ctx, e164)
}

// NormalizePhone parses an international number and returns its E.164 form
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.NewProviderError(domain.CodeMissingPhoneNumber, nil)
	}
	num, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return "", domain.NewProviderError(domain.CodeInvalidPhoneNumber, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", domain.NewProviderError(domain.CodeInvalidPhoneNumber, nil)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// issueTicket throttles, creates a ticket and texts its code
func (s *FederatedAuthServiceImpl) issueTicket(ctx context.Context, phone string) (*domain.PhoneChallenge, error) {
	allowed, err := s.redisClient.SetNX(ctx, resendKey(phone), 1, s.config.ResendWindow).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to set resend throttle: %w", err)
	}
	if !allowed {
		return nil, domain.NewProviderError(domain.CodeTooManyRequests, nil)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		s.redisClient.Del(ctx, resendKey(phone))
		return nil, err
	}
	codeHash, err := s.codeHasher.Hash(code)
	if err != nil {
		s.redisClient.Del(ctx, resendKey(phone))
		return nil, fmt.Errorf("failed to hash verification code: %w", err)
	}

	ticket := domain.VerificationTicket{
		ID:        uuid.NewString(),
		Phone:     phone,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().UTC().Add(s.config.PhoneTTL),
	}
	data, err := json.Marshal(ticket)
	if err != nil {
		s.redisClient.Del(ctx, resendKey(phone))
		return nil, fmt.Errorf("failed to encode verification ticket: %w", err)
	}
	if err := s.redisClient.Set(ctx, ticketKey(ticket.ID), data, s.config.PhoneTTL).Err(); err != nil {
		s.redisClient.Del(ctx, resendKey(phone))
		return nil, fmt.Errorf("failed to store verification ticket: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.config.PhoneTTL.Minutes()))
	if err := s.notifier.SendSMS(phone, message); err != nil {
		// Clean up Redis entries if SMS fails
		s.redisClient.Del(ctx, ticketKey(ticket.ID), resendKey(phone))

		providerCode := domain.CodeNetworkRequestFailed
		if errors.Is(err, domain.ErrSMSQuotaExceeded) {
			providerCode = domain.CodeQuotaExceeded
		}
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PhoneCodeRequestEvent, "").
			WithPhone(phone).
			WithError(err))
		return nil, domain.NewProviderError(providerCode, err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PhoneCodeRequestEvent, "").
		WithPhone(phone).
		WithMetadata("verification_id", ticket.ID))

	return &domain.PhoneChallenge{
		VerificationID: ticket.ID,
		Phone:          phone,
		ExpiresAt:      ticket.ExpiresAt,
	}, nil
}

func (s *FederatedAuthServiceImpl) loadTicket(ctx context.Context, id string) (*domain.VerificationTicket, error) {
	raw, err := s.redisClient.Get(ctx, ticketKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewProviderError(domain.CodeCodeExpired, nil)
		}
		return nil, fmt.Errorf("failed to load verification ticket: %w", err)
	}
	var ticket domain.VerificationTicket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return nil, fmt.Errorf("failed to decode verification ticket: %w", err)
	}
	return &ticket, nil
}

// VerifyPhoneCode implements domain.FederatedAuthService
func (s *FederatedAuthServiceImpl) VerifyPhoneCode(ctx context.Context, verificationID, code string) (*domain.FederatedUser, *domain.Session, error) {
	verificationID = strings.TrimSpace(verificationID)
	if verificationID == "" {
		return nil, nil, domain.NewProviderError(domain.CodeInvalidVerificationID, nil)
	}
	code = strings.TrimSpace(code)
	if !s.wellFormedCode(code) {
		return nil, nil, domain.NewProviderError(domain.CodeInvalidVerificationCode, nil)
	}

	ticket, err := s.loadTicket(ctx, verificationID)
	if err != nil {
		return nil, nil, err
	}

	// Increment attempts counter atomically
	attempts, err := s.redisClient.Incr(ctx, attemptsKey(verificationID)).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to increment attempts: %w", err)
	}
	if attempts == 1 {
		s.redisClient.ExpireAt(ctx, attemptsKey(verificationID), ticket.ExpiresAt)
	}
	if attempts > int64(s.config.MaxAttempts) {
		s.redisClient.Del(ctx, ticketKey(verificationID), attemptsKey(verificationID))
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PhoneCodeFailureEvent, "").
			WithPhone(ticket.Phone).
			WithError(errors.New("too many attempts")))
		return nil, nil, domain.NewProviderError(domain.CodeTooManyRequests, nil)
	}

	if !s.codeHasher.Verify(ticket.CodeHash, code) {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PhoneCodeFailureEvent, "").
			WithPhone(ticket.Phone).
			WithMetadata("attempt", attempts).
			WithError(errors.New("code mismatch")))
		return nil, nil, domain.NewProviderError(domain.CodeInvalidVerificationCode, nil)
	}

	// Only the caller whose DEL removed the ticket may sign in
	removed, err := s.redisClient.Del(ctx, ticketKey(verificationID)).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to consume verification ticket: %w", err)
	}
	if removed == 0 {
		return nil, nil, domain.NewProviderError(domain.CodeCodeExpired, nil)
	}
	s.redisClient.Del(ctx, attemptsKey(verificationID))

	user := &domain.FederatedUser{
		PhoneNumber:     ticket.Phone,
		AuthProvider:    domain.ProviderPhone,
		ProviderSubject: ticket.Phone,
	}
	session, err := s.signIn(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PhoneCodeVerifyEvent, user.UID).WithPhone(ticket.Phone))
	return user, session, nil
}

func (s *FederatedAuthServiceImpl) wellFormedCode(code string) bool {
	if len(code) != s.config.CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResendPhoneVerification implements domain.FederatedAuthService
func (s *FederatedAuthServiceImpl) ResendPhoneVerification(ctx context.Context, verificationID string) (*domain.PhoneChallenge, error) {
	verificationID = strings.TrimSpace(verificationID)
	if verificationID == "" {
		return nil, domain.NewProviderError(domain.CodeInvalidVerificationID, nil)
	}

	ticket, err := s.loadTicket(ctx, verificationID)
	if err != nil {
		return nil, err
	}

	challenge, err := s.issueTicket(ctx, ticket.Phone)
	if err != nil {
		return nil, err
	}
	s.redisClient.Del(ctx, ticketKey(verificationID), attemptsKey(verificationID))
	return challenge, nil
}

// signIn upserts the identity and opens a federated session
func (s *FederatedAuthServiceImpl) signIn(ctx context.Context, user *domain.FederatedUser) (*domain.Session, error) {
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store federated user: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.UID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.FederatedSignInEvent, user.UID).
		WithEmail(user.Email).
		WithPhone(user.PhoneNumber).
		WithSession(session.ID).
		WithMetadata("provider", user.AuthProvider))
	return session, nil
}

func (s *FederatedAuthServiceImpl) providerFailure(ctx context.Context, provider, code string, cause error) error {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.ProviderSignInFailureEvt, "").
		WithMetadata("provider", provider).
		WithMetadata("code", code).
		WithError(cause))
	return domain.NewProviderError(code, cause)
}

// CurrentUser implements domain.FederatedAuthService
func (s *FederatedAuthServiceImpl) CurrentUser(ctx context.Context, sessionID string) (*domain.FederatedUser, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.FindByUID(ctx, session.UserID)
}

// SignOut implements domain.FederatedAuthService
func (s *FederatedAuthServiceImpl) SignOut(ctx context.Context, sessionID string) error {
	session, _ := s.sessionRepo.FindByID(ctx, sessionID)
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	uid := ""
	if session != nil {
		uid = session.UserID
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.FederatedSignOutEvent, uid).WithSession(sessionID))
	return nil
}

// generateSecureCode generates a cryptographically secure numeric code
func (s *FederatedAuthServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.CodeLength)
	for i := range digits {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}
