package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Cookie/JWT context
	UserRegistrationEvent  AuditEventType = "USER_REGISTERED"
	UserLoginEvent         AuditEventType = "USER_LOGIN"
	UserLoginFailureEvent  AuditEventType = "USER_LOGIN_FAILED"
	UserLogoutEvent        AuditEventType = "USER_LOGOUT"
	PasswordResetEvent     AuditEventType = "PASSWORD_RESET"
	UserDeletedEvent       AuditEventType = "USER_DELETED"
	ProfileUpdatedEvent    AuditEventType = "PROFILE_UPDATED"
	AdminBootstrappedEvent AuditEventType = "ADMIN_BOOTSTRAPPED"

	// Federated context
	FederatedSignInEvent     AuditEventType = "FEDERATED_SIGN_IN"
	FederatedSignOutEvent    AuditEventType = "FEDERATED_SIGN_OUT"
	PhoneCodeRequestEvent    AuditEventType = "PHONE_CODE_REQUESTED"
	PhoneCodeVerifyEvent     AuditEventType = "PHONE_CODE_VERIFIED"
	PhoneCodeFailureEvent    AuditEventType = "PHONE_CODE_VERIFICATION_FAILED"
	ProviderSignInFailureEvt AuditEventType = "PROVIDER_SIGN_IN_FAILED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    string                 `json:"user_id,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger records audit events
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, userID string) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithPhone sets the phone field
func (e *AuditEvent) WithPhone(phone string) *AuditEvent {
	e.Phone = phone
	return e
}

// WithSession sets the session ID
func (e *AuditEvent) WithSession(sessionID string) *AuditEvent {
	e.SessionID = sessionID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
