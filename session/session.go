package session

import (
	"context"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
	"github.com/blogem/authsession/services"
)

// Session is what UI glue consumes: delegating actions plus derived flags
type Session struct {
	store *Store
}

func (s Session) provider() (*services.AuthenticationProvider, error) {
	if s.store == nil {
		return nil, ErrNotInitialized
	}
	p := s.store.Provider()
	if p == nil {
		return nil, ErrNotInitialized
	}
	return p, nil
}

func (s Session) state() State {
	if s.store == nil {
		return InitialState()
	}
	return s.store.State()
}

// SignIn starts an interactive login with the baseline parameters
func (s Session) SignIn(ctx context.Context) error {
	p, err := s.provider()
	if err != nil {
		return err
	}
	return p.Login(ctx, nil)
}

// SignOut signs the user out
func (s Session) SignOut(ctx context.Context) error {
	p, err := s.provider()
	if err != nil {
		return err
	}
	return p.Logout(ctx)
}

// GetAccessToken returns a raw access token for scopes. With no scopes the
// baseline parameters are used.
func (s Session) GetAccessToken(ctx context.Context, scopes []string) (string, error) {
	p, err := s.provider()
	if err != nil {
		return "", err
	}

	var params *models.AuthenticationParameters
	if len(scopes) > 0 {
		params = &models.AuthenticationParameters{Scopes: scopes}
	}
	resp, err := p.GetAccessToken(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// AccessToken makes Session a services.TokenSource using the baseline scopes
func (s Session) AccessToken(ctx context.Context) (string, error) {
	return s.GetAccessToken(ctx, nil)
}

func (s Session) IsAuthenticated() bool { return s.state().IsAuthenticated() }

func (s Session) Loading() bool { return s.state().Loading }

func (s Session) IsReady() bool { return s.state().IsReady }

// AccountInfo returns the current account info, or nil
func (s Session) AccountInfo() *models.AccountInfo { return s.state().AccountInfo }

// Error returns the current error, or nil
func (s Session) Error() *authenticator.AuthError { return s.state().Error }
