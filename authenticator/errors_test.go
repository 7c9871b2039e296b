package authenticator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthError_Error(t *testing.T) {
	assert.Equal(t, "user_cancelled", NewAuthError(KindClientAuth, "user_cancelled", "", nil).Error())
	assert.Equal(t, "invalid_grant: token expired", NewAuthError(KindServer, "invalid_grant", "token expired", nil).Error())
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", NewAuthError(KindServer, "network_error", "", cause))

	assert.ErrorIs(t, err, cause)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "network_error", authErr.Code)
}

func TestAuthError_Clone(t *testing.T) {
	var nilErr *AuthError
	assert.Nil(t, nilErr.Clone())

	orig := NewAuthError(KindServer, "a", "b", nil)
	c := orig.Clone()
	c.Code = "changed"
	assert.Equal(t, "a", orig.Code)
}

func TestAsAuthError(t *testing.T) {
	assert.Nil(t, AsAuthError(nil))

	native := NewUserLoginError()
	assert.Same(t, native, AsAuthError(fmt.Errorf("wrapped: %w", native)))

	foreign := errors.New("dial tcp: refused")
	wrapped := AsAuthError(foreign)
	assert.Equal(t, KindUnknown, wrapped.Kind)
	assert.Equal(t, CodeUnknownError, wrapped.Code)
	assert.ErrorIs(t, wrapped, foreign)
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		interaction bool
		userLogin   bool
	}{
		{"nil", nil, false, false},
		{"user login", NewUserLoginError(), false, true},
		{"interaction", NewInteractionRequiredError("login_required", "", nil), true, false},
		{"other client auth", NewAuthError(KindClientAuth, "user_cancelled", "", nil), false, false},
		{"foreign", errors.New("x"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.interaction, IsInteractionRequired(tt.err))
			assert.Equal(t, tt.userLogin, IsUserLoginError(tt.err))
		})
	}
}

func TestClassifyOAuthError(t *testing.T) {
	for _, code := range []string{"invalid_grant", "interaction_required", "login_required", "consent_required"} {
		assert.Equal(t, KindInteractionRequired, classifyOAuthError(code, "", nil).Kind, code)
	}

	err := classifyOAuthError("server_error", "down", nil)
	assert.Equal(t, KindServer, err.Kind)
	assert.Equal(t, "server_error", err.Code)

	assert.Equal(t, CodeUnknownError, classifyOAuthError("", "", nil).Code)

	network := classifyTokenError(errors.New("connection reset"))
	var authErr *AuthError
	require.ErrorAs(t, network, &authErr)
	assert.Equal(t, "network_error", authErr.Code)
}
