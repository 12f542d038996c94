package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
)

// Google OAuth endpoints used to refresh tokens.
const (
	authURL         = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
)

// Scopes covers reading mail and calendar and sending the fallback email.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailSendScope,
	calendar.CalendarReadonlyScope,
}

// tokenFile is the on-disk token format: an oauth2 token plus the client
// credentials needed to refresh it. Google's authorized_user files fit.
type tokenFile struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TokenURI     string `json:"token_uri"`
	oauth2.Token
}

// LoadTokenSource reads an OAuth token file. Tokens with a refresh token and
// client credentials are refreshed automatically; anything else is used as-is
// until it expires.
func LoadTokenSource(ctx context.Context, path string) (oauth2.TokenSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no token file configured", ErrUnauthorized)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	if f.AccessToken == "" && f.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file %s has no access or refresh token", ErrUnauthorized, path)
	}

	tok := &oauth2.Token{
		AccessToken:  f.AccessToken,
		TokenType:    f.TokenType,
		RefreshToken: f.RefreshToken,
		Expiry:       f.Expiry,
	}
	if f.RefreshToken == "" || f.ClientID == "" {
		return oauth2.StaticTokenSource(tok), nil
	}

	tokenURL := f.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	cfg := &oauth2.Config{
		ClientID:     f.ClientID,
		ClientSecret: f.ClientSecret,
		Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
	}
	return cfg.TokenSource(ctx, tok), nil
}

// OAuthConfig returns the installed-app config for a Google OAuth client.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: defaultTokenURL},
	}
}

// SaveTokenFile writes tok together with cfg's client credentials so that
// LoadTokenSource can refresh it later. The file is created with 0600 perms.
func SaveTokenFile(path string, cfg *oauth2.Config, tok *oauth2.Token) error {
	if tok == nil || (tok.AccessToken == "" && tok.RefreshToken == "") {
		return fmt.Errorf("%w: empty token", ErrUnauthorized)
	}
	data, err := json.MarshalIndent(tokenFile{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURI:     cfg.Endpoint.TokenURL,
		Token:        *tok,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
