package authenticator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies identity provider failures
type ErrorKind string

const (
	KindConfiguration       ErrorKind = "configuration"
	KindInteractionRequired ErrorKind = "interaction_required"
	KindClientAuth          ErrorKind = "client_auth"
	KindServer              ErrorKind = "server"
	KindUnknown             ErrorKind = "unknown"
)

// Error codes the session core reacts to
const (
	CodeUserLoginError      = "user_login_error"
	CodeBlockTokenRequests  = "block_token_requests"
	CodeInteractionRequired = "interaction_required"
	CodeNoTokensFound       = "no_tokens_found"
	CodeUnknownError        = "unknown_error"
)

// interactionCodes are OAuth error codes that can only be resolved by the user
var interactionCodes = map[string]bool{
	"invalid_grant":        true,
	"interaction_required": true,
	"login_required":       true,
	"consent_required":     true,
}

var (
	ErrPopupTimeout  = errors.New("interactive login timed out")
	ErrStateMismatch = errors.New("state parameter does not match")
	ErrNoNavigator   = errors.New("no navigator available for redirect")
	ErrNoPendingFlow = errors.New("no interactive login in progress")
)

// AuthError is an error surfaced by the identity client
type AuthError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Clone returns a copy of the error; nil stays nil
func (e *AuthError) Clone() *AuthError {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// NewAuthError builds an AuthError of the given kind
func NewAuthError(kind ErrorKind, code, message string, err error) *AuthError {
	return &AuthError{Kind: kind, Code: code, Message: message, Err: err}
}

// NewInteractionRequiredError builds an error that asks for user interaction
func NewInteractionRequiredError(code, message string, err error) *AuthError {
	return NewAuthError(KindInteractionRequired, code, message, err)
}

// NewUserLoginError is returned by silent calls when no account is cached
func NewUserLoginError() *AuthError {
	return NewAuthError(KindClientAuth, CodeUserLoginError, "user login is required", nil)
}

// AsAuthError returns err as an AuthError, wrapping foreign errors as KindUnknown
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return NewAuthError(KindUnknown, CodeUnknownError, err.Error(), err)
}

// IsInteractionRequired reports whether err can only be resolved interactively
func IsInteractionRequired(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == KindInteractionRequired
}

// IsUserLoginError reports whether err means nobody is signed in
func IsUserLoginError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == KindClientAuth && authErr.Code == CodeUserLoginError
}

// IsInteractionCode reports whether an OAuth error code requires user interaction
func IsInteractionCode(code string) bool {
	return interactionCodes[code]
}
