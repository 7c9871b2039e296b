package models

import (
	"testing"
	"time"
)

// Test that Merge only touches the field matching the token type
func TestAccountInfoMerge(t *testing.T) {
	account := &Account{HomeAccountID: "uid.tid", Username: "jane@example.com"}

	// Empty record adopts the response's account
	var empty *AccountInfo
	info := empty.Merge(&AuthResponse{TokenType: TokenTypeAccessToken, Account: account, AccessToken: "at"})
	if info.Account != account {
		t.Errorf("Expected account to be adopted, got %v", info.Account)
	}
	if info.JWTAccessToken != "at" || info.JWTIDToken != "" {
		t.Errorf("Expected only access token set, got %+v", info)
	}

	// ID token response keeps the access token
	next := info.Merge(&AuthResponse{TokenType: TokenTypeIDToken, IDToken: IDToken{Raw: "id"}})
	if next.JWTIDToken != "id" || next.JWTAccessToken != "at" {
		t.Errorf("Expected both tokens, got %+v", next)
	}
	if info.JWTIDToken != "" {
		t.Errorf("Merge must not modify the receiver")
	}

	// Existing record keeps its account
	other := &Account{HomeAccountID: "other"}
	kept := next.Merge(&AuthResponse{TokenType: TokenTypeAccessToken, Account: other, AccessToken: "at2"})
	if kept.Account != account {
		t.Errorf("Expected existing account to be kept")
	}

	// Nil response yields a copy
	same := next.Merge(nil)
	if same == next || *same != *next {
		t.Errorf("Expected an equal copy, got %+v", same)
	}
}

func TestCloneHelpers(t *testing.T) {
	var nilAccount *Account
	if nilAccount.Clone() != nil {
		t.Errorf("Expected nil clone of nil account")
	}
	var nilInfo *AccountInfo
	if nilInfo.Clone() != nil {
		t.Errorf("Expected nil clone of nil account info")
	}

	account := &Account{HomeAccountID: "a", IDTokenClaims: map[string]any{"sub": "a"}}
	c := account.Clone()
	c.IDTokenClaims["sub"] = "changed"
	if account.IDTokenClaims["sub"] != "a" {
		t.Errorf("Account clone shares claims map")
	}

	params := AuthenticationParameters{
		Scopes:               []string{"a"},
		ExtraQueryParameters: map[string]string{"k": "v"},
	}
	pc := params.Clone()
	pc.Scopes[0] = "b"
	pc.ExtraQueryParameters["k"] = "w"
	if params.Scopes[0] != "a" || params.ExtraQueryParameters["k"] != "v" {
		t.Errorf("Parameters clone shares state: %+v", params)
	}
}

func TestWithoutDomainHint(t *testing.T) {
	params := AuthenticationParameters{
		Scopes: []string{"api://x"},
		ExtraQueryParameters: map[string]string{
			DomainHintParam: "contoso.com",
			"other":         "kept",
		},
	}

	stripped := params.WithoutDomainHint()
	if _, ok := stripped.ExtraQueryParameters[DomainHintParam]; ok {
		t.Errorf("Expected domain_hint to be removed")
	}
	if stripped.ExtraQueryParameters["other"] != "kept" {
		t.Errorf("Expected other parameters to be kept")
	}
	if params.ExtraQueryParameters[DomainHintParam] != "contoso.com" {
		t.Errorf("Original parameters must not change")
	}

	// No extra parameters at all
	plain := AuthenticationParameters{Scopes: []string{"a"}}.WithoutDomainHint()
	if len(plain.ExtraQueryParameters) != 0 {
		t.Errorf("Expected no extra parameters, got %v", plain.ExtraQueryParameters)
	}
}

func TestParseLoginType(t *testing.T) {
	tests := []struct {
		input   string
		want    LoginType
		wantErr bool
	}{
		{"", LoginTypePopup, false},
		{"popup", LoginTypePopup, false},
		{" Redirect ", LoginTypeRedirect, false},
		{"iframe", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLoginType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLoginType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLoginType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInitStateString(t *testing.T) {
	if InitCompleted.String() != "Completed" || InitState(9).String() != "Unknown" {
		t.Errorf("Unexpected init state names")
	}
}

// Test the typed token response adapters
func TestTokenResponseAdapters(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	resp := &AuthResponse{
		TokenType:   TokenTypeAccessToken,
		AccessToken: "at",
		Scopes:      []string{"api://x"},
		ExpiresOn:   expires,
		IDToken: IDToken{
			Raw:       "id",
			Claims:    map[string]any{"sub": "u"},
			ExpiresOn: expires,
		},
	}

	at := NewAccessTokenResponse(resp)
	if at.AccessToken != "at" || !at.ExpiresOn.Equal(expires) || len(at.Scopes) != 1 {
		t.Errorf("Unexpected access token response: %+v", at)
	}
	at.Scopes[0] = "changed"
	if resp.Scopes[0] != "api://x" {
		t.Errorf("Access token response shares scopes")
	}

	id := NewIdTokenResponse(resp)
	if id.IDToken != "id" || id.Claims["sub"] != "u" {
		t.Errorf("Unexpected ID token response: %+v", id)
	}

	if r := NewAccessTokenResponse(nil); r == nil || r.AccessToken != "" {
		t.Errorf("Expected empty access token record for nil response")
	}
	if r := NewIdTokenResponse(nil); r == nil || r.IDToken != "" {
		t.Errorf("Expected empty ID token record for nil response")
	}
}
