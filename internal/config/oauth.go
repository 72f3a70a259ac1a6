package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
)

// UpstreamConfig describes an external identity provider the gateway can
// delegate credential verification to via the authorization-code flow.
// Delegation is enabled only when all endpoint settings are present; the
// local login form remains the default path either way.
type UpstreamConfig struct {
	Enabled     bool
	OAuth       *oauth2.Config
	UserinfoURL string
}

type UpstreamUser struct {
	Sub               string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	Email             string `json:"email"`
}

func LoadUpstreamConfig() UpstreamConfig {
	clientID := os.Getenv("UPSTREAM_CLIENT_ID")
	clientSecret := os.Getenv("UPSTREAM_CLIENT_SECRET")
	authURL := os.Getenv("UPSTREAM_AUTH_URL")
	tokenURL := os.Getenv("UPSTREAM_TOKEN_URL")
	userinfoURL := os.Getenv("UPSTREAM_USERINFO_URL")
	redirectURL := os.Getenv("UPSTREAM_REDIRECT_URL")

	if clientID == "" || authURL == "" || tokenURL == "" || userinfoURL == "" {
		return UpstreamConfig{Enabled: false}
	}

	cfg := &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	return UpstreamConfig{
		Enabled:     true,
		OAuth:       cfg,
		UserinfoURL: userinfoURL,
	}
}

// GetUpstreamUserInfo fetches the authenticated user's profile from the
// provider's userinfo endpoint.
func (u *UpstreamConfig) GetUpstreamUserInfo(accessToken string) (*UpstreamUser, error) {
	req, err := http.NewRequest(http.MethodGet, u.UserinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var user UpstreamUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %v", err)
	}

	return &user, nil
}

// Username picks the identifier the gateway binds the session to.
func (u *UpstreamUser) Username() string {
	if u.PreferredUsername != "" {
		return u.PreferredUsername
	}
	if u.Email != "" {
		return u.Email
	}
	return u.Sub
}
