package models

import (
	"fmt"
	"strings"
)

// AuthenticationState is the provider's single authoritative login state
type AuthenticationState string

const (
	Unauthenticated AuthenticationState = "Unauthenticated"
	InProgress      AuthenticationState = "InProgress"
	Authenticated   AuthenticationState = "Authenticated"
)

// InitState tracks provider initialization. It only ever moves forward.
type InitState int

const (
	InitNotStarted InitState = iota
	InitInProgress
	InitCompleted
)

// String returns a readable name for the init state
func (s InitState) String() string {
	switch s {
	case InitNotStarted:
		return "NotStarted"
	case InitInProgress:
		return "InProgress"
	case InitCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// LoginType selects the interactive flow used for login
type LoginType string

const (
	LoginTypePopup    LoginType = "popup"
	LoginTypeRedirect LoginType = "redirect"
)

// ParseLoginType maps a config value onto a LoginType. Empty means popup.
func ParseLoginType(s string) (LoginType, error) {
	switch LoginType(strings.ToLower(strings.TrimSpace(s))) {
	case "", LoginTypePopup:
		return LoginTypePopup, nil
	case LoginTypeRedirect:
		return LoginTypeRedirect, nil
	}
	return "", fmt.Errorf("unknown login type %q", s)
}

// TokenType identifies which token an AuthResponse carries
type TokenType string

const (
	TokenTypeIDToken     TokenType = "id_token"
	TokenTypeAccessToken TokenType = "access_token"
)
