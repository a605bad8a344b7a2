package clio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// OAuthEndpoint returns the authorization endpoints for the upstream API.
// The token is obtained out-of-band via the standard authorization-code flow
// (see cmd/oauth-init); this package only consumes the resulting token.
func OAuthEndpoint(baseURL string) oauth2.Endpoint {
	root := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api/v4")
	if root == "" {
		root = "https://app.clio.com"
	}
	return oauth2.Endpoint{
		AuthURL:  root + "/oauth/authorize",
		TokenURL: root + "/oauth/token",
	}
}

// StaticTokenSource wraps a fixed access token (e.g. from CLIO_ACCESS_TOKEN).
// No refresh is possible; a 401 surfaces to the caller as an auth error.
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
}

// FileTokenSource loads a stored token JSON (as written by cmd/oauth-init)
// and returns a refresh-capable source when client credentials are present.
func FileTokenSource(ctx context.Context, path, clientID, clientSecret, baseURL string) (oauth2.TokenSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file %s: %w", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token file has no access_token")
	}

	if clientID == "" || clientSecret == "" {
		// Without credentials the token cannot be refreshed; use as-is.
		return oauth2.StaticTokenSource(&tok), nil
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     OAuthEndpoint(baseURL),
	}
	return cfg.TokenSource(ctx, &tok), nil
}
