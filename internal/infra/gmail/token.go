package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenRefreshSkew is how far ahead of expiry a refresh is triggered, per
// spec §4.9 ("refresh the access token if it expires within 5 minutes").
const tokenRefreshSkew = 5 * time.Minute

// googleTokenEndpoint is Google's OAuth2 token endpoint. No Go OAuth2
// client library appears in the example pack's manifests, and a full OAuth
// authorization-code flow is explicitly out of scope (spec.md §1 names
// auth/OAuth as an external collaborator); this is a single refresh-grant
// POST, not a client library's worth of surface, so it stays on net/http
// rather than pulling in a dependency to wrap one request.
const googleTokenEndpoint = "https://oauth2.googleapis.com/token"

// TokenRefresher exchanges a stored refresh token for a fresh access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresAt time.Time, err error)
}

// OAuthTokenRefresher refreshes Gmail OAuth2 access tokens against Google's
// token endpoint using a registered OAuth client's id/secret.
type OAuthTokenRefresher struct {
	ClientID     string
	ClientSecret string
	http         *http.Client
}

func NewOAuthTokenRefresher(clientID, clientSecret string) *OAuthTokenRefresher {
	return &OAuthTokenRefresher{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		http:         &http.Client{Timeout: 15 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (r *OAuthTokenRefresher) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	form := url.Values{
		"client_id":     {r.ClientID},
		"client_secret": {r.ClientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("gmail: build token refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("gmail: token refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("gmail: read token refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("gmail: token refresh returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", time.Time{}, fmt.Errorf("gmail: decode token refresh response: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return parsed.AccessToken, expiresAt, nil
}

// needsRefresh reports whether expiresAt is within tokenRefreshSkew of now.
func needsRefresh(expiresAt time.Time, now time.Time) bool {
	return expiresAt.Before(now.Add(tokenRefreshSkew))
}
