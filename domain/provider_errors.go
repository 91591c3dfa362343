package domain

import "errors"

// Provider error codes of the federated auth context
const (
	CodeUserDisabled              = "auth/user-disabled"
	CodeUserNotFound              = "auth/user-not-found"
	CodeWrongPassword             = "auth/wrong-password"
	CodeEmailAlreadyInUse         = "auth/email-already-in-use"
	CodeWeakPassword              = "auth/weak-password"
	CodeInvalidEmail              = "auth/invalid-email"
	CodeOperationNotAllowed       = "auth/operation-not-allowed"
	CodeAccountExistsDifferentCrd = "auth/account-exists-with-different-credential"
	CodeInvalidPhoneNumber        = "auth/invalid-phone-number"
	CodeMissingPhoneNumber        = "auth/missing-phone-number"
	CodeQuotaExceeded             = "auth/quota-exceeded"
	CodeInvalidVerificationCode   = "auth/invalid-verification-code"
	CodeInvalidVerificationID     = "auth/invalid-verification-id"
	CodeCodeExpired               = "auth/code-expired"
	CodeTooManyRequests           = "auth/too-many-requests"
	CodePopupClosedByUser         = "auth/popup-closed-by-user"
	CodePopupBlocked              = "auth/popup-blocked"
	CodeCancelledPopupRequest     = "auth/cancelled-popup-request"
	CodeNetworkRequestFailed      = "auth/network-request-failed"
)

var providerMessages = map[string]string{
	CodeUserDisabled:              "This account has been disabled",
	CodeUserNotFound:              "No account found with this information",
	CodeWrongPassword:             "Incorrect password",
	CodeEmailAlreadyInUse:         "An account with this email already exists",
	CodeWeakPassword:              "Password is too weak",
	CodeInvalidEmail:              "Invalid email address",
	CodeOperationNotAllowed:       "This sign-in method is not enabled",
	CodeAccountExistsDifferentCrd: "An account already exists with the same email but different sign-in credentials",
	CodeInvalidPhoneNumber:        "Invalid phone number format",
	CodeMissingPhoneNumber:        "Phone number is required",
	CodeQuotaExceeded:             "SMS quota exceeded. Please try again later",
	CodeInvalidVerificationCode:   "Invalid verification code",
	CodeInvalidVerificationID:     "Invalid verification ID",
	CodeCodeExpired:               "Verification code has expired",
	CodeTooManyRequests:           "Too many requests. Please try again later",
	CodePopupClosedByUser:         "Sign-in popup was closed before completion",
	CodePopupBlocked:              "Sign-in popup was blocked by the browser",
	CodeCancelledPopupRequest:     "Sign-in request was cancelled",
	CodeNetworkRequestFailed:      "Network error. Please check your connection",
}

// ProviderError is a federated-auth failure identified by a provider code.
// Err keeps the underlying cause for logging; it is never shown to clients.
type ProviderError struct {
	Code string
	Err  error
}

// NewProviderError creates a provider error with an optional cause
func NewProviderError(code string, cause error) *ProviderError {
	return &ProviderError{Code: code, Err: cause}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Message maps the code to the human-readable text shown to users
func (e *ProviderError) Message() string {
	if msg, ok := providerMessages[e.Code]; ok {
		return msg
	}
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return "Authentication failed"
}

// ProviderMessage resolves the user-facing message for any error
func ProviderMessage(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message()
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "An authentication error occurred"
}

// IsProviderCode reports whether err carries the given provider code
func IsProviderCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}
