package domain

import (
	"context"
	"io"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q UserQuery) ([]*User, int64, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// FederatedUserRepository stores identities of the federated context
type FederatedUserRepository interface {
	// Upsert merges profile fields into an existing identity (matched by
	// provider + subject) or creates it. The stored record is written back into u.
	Upsert(ctx context.Context, u *FederatedUser) error
	FindByUID(ctx context.Context, uid string) (*FederatedUser, error)
}

// AuthService defines the cookie/JWT authentication flow
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*User, *TokenClaims, error)
	Refresh(ctx context.Context, claims *TokenClaims) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	SeedAdmin(ctx context.Context, email, password string) (bool, error)
}

// UserService defines profile and user administration operations
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error)
	SetAvatar(ctx context.Context, userID, url string) (*User, error)
	ListUsers(ctx context.Context, q UserQuery) (*UserPage, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// FederatedAuthService defines the provider-federated flow
type FederatedAuthService interface {
	StartGoogleSignIn(ctx context.Context, redirect string) (string, error)
	CompleteGoogleSignIn(ctx context.Context, state, code, providerErr string) (*FederatedUser, *Session, string, error)
	SendPhoneVerification(ctx context.Context, phone string) (*PhoneChallenge, error)
	VerifyPhoneCode(ctx context.Context, verificationID, code string) (*FederatedUser, *Session, error)
	ResendPhoneVerification(ctx context.Context, verificationID string) (*PhoneChallenge, error)
	CurrentUser(ctx context.Context, sessionID string) (*FederatedUser, error)
	SignOut(ctx context.Context, sessionID string) error
}

// InsightService defines the generative-AI insight operations.
// Remote failures never surface as errors; a fallback payload is returned instead.
type InsightService interface {
	AnalyzeMedicalImage(ctx context.Context, req ImageAnalysisRequest) (*ImageAnalysis, error)
	PerformClinicalReasoning(ctx context.Context, req ClinicalReasoningRequest) *ClinicalReasoning
	GenerateResearchInsights(ctx context.Context, req ResearchInsightsRequest) *ResearchInsights
	GeneratePredictiveAnalytics(ctx context.Context, req PredictiveAnalyticsRequest) *PredictiveAnalytics
	OptimizeTreatmentPlan(ctx context.Context, req TreatmentOptimizationRequest) *TreatmentOptimization
	ProvideClinicalDecisionSupport(ctx context.Context, req DecisionSupportRequest) (*DecisionSupport, error)
	GeneratePopulationHealthInsights(ctx context.Context, req PopulationHealthRequest) *PopulationHealth
}

// TextGenerator is the remote generative model
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// IdentityProvider is an external OAuth identity provider
type IdentityProvider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*ProviderProfile, error)
}

// FileStore persists uploaded files
type FileStore interface {
	Save(folder, originalName string, r io.Reader) (*StoredFile, error)
	Resolve(relPath string) (string, error)
	Delete(relPath string) error
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID, role, sessionID string) (string, time.Time, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
	SeedDefaults() (bool, error)
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
