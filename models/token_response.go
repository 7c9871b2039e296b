package models

import (
	"maps"
	"slices"
	"time"
)

// IDToken carries a raw ID token and its decoded claims
type IDToken struct {
	Raw       string
	Claims    map[string]any
	ExpiresOn time.Time
}

// AuthResponse is the raw result of any token acquisition against the identity provider
type AuthResponse struct {
	TokenType   TokenType
	Account     *Account
	AccessToken string
	IDToken     IDToken
	Scopes      []string
	ExpiresOn   time.Time
	State       string
}

// AccessTokenResponse is the typed result of an access token request
type AccessTokenResponse struct {
	AccessToken string
	Scopes      []string
	ExpiresOn   time.Time
}

// NewAccessTokenResponse normalizes an AuthResponse. A nil response yields an empty record.
func NewAccessTokenResponse(resp *AuthResponse) *AccessTokenResponse {
	if resp == nil {
		return &AccessTokenResponse{}
	}
	return &AccessTokenResponse{
		AccessToken: resp.AccessToken,
		Scopes:      slices.Clone(resp.Scopes),
		ExpiresOn:   resp.ExpiresOn,
	}
}

// IdTokenResponse is the typed result of an ID token request
type IdTokenResponse struct {
	IDToken   string
	Claims    map[string]any
	ExpiresOn time.Time
}

// NewIdTokenResponse normalizes an AuthResponse. A nil response yields an empty record.
func NewIdTokenResponse(resp *AuthResponse) *IdTokenResponse {
	if resp == nil {
		return &IdTokenResponse{}
	}
	return &IdTokenResponse{
		IDToken:   resp.IDToken.Raw,
		Claims:    maps.Clone(resp.IDToken.Claims),
		ExpiresOn: resp.IDToken.ExpiresOn,
	}
}
