package domain

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password must be at least 8 characters long")
	ErrLastAdmin          = errors.New("cannot delete the last admin user")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// Policy errors
var (
	ErrInvalidPolicy = errors.New("policy needs a known role, an absolute resource and an action")
)

// Notification errors
var (
	ErrSMSQuotaExceeded = errors.New("sms quota exceeded")
)

// File errors
var (
	ErrNoFile          = errors.New("no file selected")
	ErrFileType        = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileNotFound    = errors.New("file not found")
	ErrFilePathInvalid = errors.New("invalid file path")
)

// Insight errors
var (
	ErrGeneratorUnavailable = errors.New("text generator not configured")
	ErrInvalidImageType     = errors.New("unsupported image type")
	ErrEmptyImage           = errors.New("image data is required")
	ErrInvalidUrgency       = errors.New("urgency must be one of low, medium, high, critical")
)

// RequiredFieldError reports a missing request field by its client-side name
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsCredentialError reports whether err means the presented token or session
// is no good, as opposed to the stores behind it being unavailable.
func IsCredentialError(err error) bool {
	for _, target := range []error{
		ErrTokenInvalid, ErrTokenExpired, ErrTokenMalformed,
		ErrSessionNotFound, ErrSessionExpired,
		ErrUserNotFound, ErrUserInactive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
