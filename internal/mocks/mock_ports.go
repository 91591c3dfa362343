package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/you/emrsvc/domain"
)

// MockTextGenerator implements domain.TextGenerator and records requests
type MockTextGenerator struct {
	GenerateFunc func(ctx context.Context, req domain.GenerationRequest) (string, error)

	mu       sync.Mutex
	Requests []domain.GenerationRequest
}

func NewMockTextGenerator() *MockTextGenerator {
	return &MockTextGenerator{}
}

func (m *MockTextGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", domain.ErrGeneratorUnavailable
}

// MockIdentityProvider implements domain.IdentityProvider
type MockIdentityProvider struct {
	AuthCodeURLFunc func(state, verifier string) string
	ExchangeFunc    func(ctx context.Context, code, verifier string) (*domain.ProviderProfile, error)
}

func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{}
}

func (m *MockIdentityProvider) AuthCodeURL(state, verifier string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state, verifier)
	}
	return "https://idp.example.com/auth?state=" + state
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, code, verifier string) (*domain.ProviderProfile, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code, verifier)
	}
	return &domain.ProviderProfile{Subject: "sub-" + code, Email: "fed@example.com", EmailVerified: true, Name: "Fed User"}, nil
}

// MockFileStore implements domain.FileStore
type MockFileStore struct {
	SaveFunc    func(folder, originalName string, r io.Reader) (*domain.StoredFile, error)
	ResolveFunc func(relPath string) (string, error)
	DeleteFunc  func(relPath string) error
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{}
}

func (m *MockFileStore) Save(folder, originalName string, r io.Reader) (*domain.StoredFile, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(folder, originalName, r)
	}
	n, _ := io.Copy(io.Discard, r)
	return &domain.StoredFile{
		URL:          "/api/files/" + folder + "/mock_" + originalName,
		Filename:     "mock_" + originalName,
		OriginalName: originalName,
		Size:         n,
	}, nil
}

func (m *MockFileStore) Resolve(relPath string) (string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(relPath)
	}
	return "", domain.ErrFileNotFound
}

func (m *MockFileStore) Delete(relPath string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(relPath)
	}
	return domain.ErrFileNotFound
}

// MockAuditLogger implements domain.AuditLogger and keeps every event
type MockAuditLogger struct {
	mu     sync.Mutex
	Events []*domain.AuditEvent
}

func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

func (m *MockAuditLogger) LogEvent(_ context.Context, e *domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, e)
}

// Types returns the recorded event types in order
func (m *MockAuditLogger) Types() []domain.AuditEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEventType, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.EventType)
	}
	return out
}

// Compile-time interface compliance verification
var (
	_ domain.TextGenerator    = (*MockTextGenerator)(nil)
	_ domain.IdentityProvider = (*MockIdentityProvider)(nil)
	_ domain.FileStore        = (*MockFileStore)(nil)
	_ domain.AuditLogger      = (*MockAuditLogger)(nil)

	_ domain.NotificationService = (*MockNotificationService)(nil)
	_ domain.PasswordService     = (*MockPasswordService)(nil)
)

// SentMessage is one outbound SMS or email captured by MockNotificationService
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// MockNotificationService implements domain.NotificationService and keeps an outbox.
// Messages are recorded before the optional Send*Func hooks run.
type MockNotificationService struct {
	SendSMSFunc   func(to, message string) error
	SendEmailFunc func(to, subject, body string) error

	mu     sync.Mutex
	SMS    []SentMessage
	Emails []SentMessage
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendSMS(to, message string) error {
	m.mu.Lock()
	m.SMS = append(m.SMS, SentMessage{To: to, Body: message})
	m.mu.Unlock()
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(to, message)
	}
	return nil
}

func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	m.Emails = append(m.Emails, SentMessage{To: to, Subject: subject, Body: body})
	m.mu.Unlock()
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(to, subject, body)
	}
	return nil
}

// LastSMS returns the most recent SMS, if any
func (m *MockNotificationService) LastSMS() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SMS) == 0 {
		return SentMessage{}, false
	}
	return m.SMS[len(m.SMS)-1], true
}

// MockPasswordService implements domain.PasswordService with a reversible
// "hashed_" prefix so tests can assert stored hashes.
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return mockHashPrefix + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == mockHashPrefix+password
}

const mockHashPrefix = "hashed_"
