package domain

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account of the cookie/JWT context
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         string     `json:"role"`
	Avatar       string     `json:"avatar,omitempty"`
	IsActive     bool       `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin"`
}

// RegisterInput carries registration fields as the client sends them
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ProfileUpdate carries the editable profile fields; nil means untouched
type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

// UserQuery is a paginated, optionally filtered user listing request
type UserQuery struct {
	Page   int
	Limit  int
	Search string
}

// Pagination describes a page of results
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// UserPage is one page of users
type UserPage struct {
	Users      []*User
	Pagination Pagination
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User      *User
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// Session represents a server-side session of either auth context
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Federated auth providers
const (
	ProviderGoogle = "google"
	ProviderPhone  = "phone"
)

// FederatedUser is an identity of the federated context
type FederatedUser struct {
	UID             string    `json:"uid"`
	Email           string    `json:"email,omitempty"`
	DisplayName     string    `json:"displayName,omitempty"`
	PhoneNumber     string    `json:"phoneNumber,omitempty"`
	PhotoURL        string    `json:"photoURL,omitempty"`
	EmailVerified   bool      `json:"emailVerified"`
	AuthProvider    string    `json:"authProvider"`
	ProviderSubject string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	LastLoginAt     time.Time `json:"lastLoginAt"`
}

// ProviderProfile is what an external identity provider tells us about a user
type ProviderProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// VerificationTicket correlates an SMS code request with its verification attempts.
// ID is the confirmation handle given to the client.
type VerificationTicket struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PhoneChallenge is returned to the client after an SMS code was sent
type PhoneChallenge struct {
	VerificationID string    `json:"verificationId"`
	Phone          string    `json:"phoneNumber"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// AuthState is the consumer contract shared by both auth contexts
type AuthState struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            any    `json:"user"`
	Error           string `json:"error,omitempty"`
}

// StoredFile describes an uploaded file
type StoredFile struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
}
