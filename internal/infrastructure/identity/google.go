package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/you/emrsvc/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProvider implements domain.IdentityProvider with the OAuth2
// authorization-code flow plus PKCE.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider creates the Google identity provider
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return newProvider(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}, GoogleUserInfoURL)
}

func newProvider(cfg *oauth2.Config, userInfoURL string) *GoogleProvider {
	return &GoogleProvider{oauthConfig: cfg, userInfoURL: userInfoURL}
}

// AuthCodeURL implements domain.IdentityProvider
func (g *GoogleProvider) AuthCodeURL(state, verifier string) string {
	return g.oauthConfig.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

type userInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange implements domain.IdentityProvider: trades the code for a token
// and reads the OpenID profile with it.
func (g *GoogleProvider) Exchange(ctx context.Context, code, verifier string) (*domain.ProviderProfile, error) {
	token, err := g.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request: status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("userinfo decode: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo: missing subject")
	}

	return &domain.ProviderProfile{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
