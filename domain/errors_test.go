package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors_Wrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"user not found", ErrUserNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"token invalid", ErrTokenInvalid},
		{"session not found", ErrSessionNotFound},
		{"file not found", ErrFileNotFound},
		{"generator unavailable", ErrGeneratorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("operation failed: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.err))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestRequiredFieldError(t *testing.T) {
	err := error(&RequiredFieldError{Field: "firstName"})
	assert.Equal(t, "firstName is required", err.Error())

	var rf *RequiredFieldError
	assert.True(t, errors.As(fmt.Errorf("register: %w", err), &rf))
	assert.Equal(t, "firstName", rf.Field)
}

func TestProviderError_Message(t *testing.T) {
	tests := []struct {
		code     string
		cause    error
		expected string
	}{
		{CodeInvalidPhoneNumber, nil, "Invalid phone number format"},
		{CodeMissingPhoneNumber, nil, "Phone number is required"},
		{CodeQuotaExceeded, errors.New("twilio 429"), "SMS quota exceeded. Please try again later"},
		{CodeInvalidVerificationCode, nil, "Invalid verification code"},
		{CodeInvalidVerificationID, nil, "Invalid verification ID"},
		{CodeCodeExpired, nil, "Verification code has expired"},
		{CodeTooManyRequests, nil, "Too many requests. Please try again later"},
		{CodePopupClosedByUser, nil, "Sign-in popup was closed before completion"},
		{CodePopupBlocked, nil, "Sign-in popup was blocked by the browser"},
		{CodeCancelledPopupRequest, nil, "Sign-in request was cancelled"},
		{CodeNetworkRequestFailed, errors.New("dial tcp: timeout"), "Network error. Please check your connection"},
		{CodeAccountExistsDifferentCrd, nil, "An account already exists with the same email but different sign-in credentials"},
		{"auth/something-new", errors.New("provider said no"), "provider said no"},
		{"auth/something-new", nil, "Authentication failed"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			pe := NewProviderError(tt.code, tt.cause)
			assert.Equal(t, tt.expected, pe.Message())
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("send code: %w", NewProviderError(CodeNetworkRequestFailed, cause))

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsProviderCode(err, CodeNetworkRequestFailed))
	assert.False(t, IsProviderCode(err, CodeCodeExpired))
	assert.Equal(t, "Network error. Please check your connection", ProviderMessage(err))
}

func TestProviderMessage_NonProviderErrors(t *testing.T) {
	assert.Equal(t, "boom", ProviderMessage(errors.New("boom")))
	assert.Equal(t, "An authentication error occurred", ProviderMessage(nil))
}

func TestIsCredentialError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"expired token", ErrTokenExpired, true},
		{"malformed token", ErrTokenMalformed, true},
		{"revoked session", ErrSessionNotFound, true},
		{"wrapped inactive user", fmt.Errorf("authenticate: %w", ErrUserInactive), true},
		{"redis outage", fmt.Errorf("failed to load session: %w", errors.New("dial tcp: connection refused")), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCredentialError(tt.err))
		})
	}
}
