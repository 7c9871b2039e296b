package controllers

import (
	"net/http"

	"github.com/blogem/authsession/models"
	"github.com/blogem/authsession/session"
	"github.com/blogem/authsession/userctx"
)

// SessionController exposes the session state as JSON
type SessionController struct {
	store *session.Store
}

// NewSessionController creates a new session controller
func NewSessionController(store *session.Store) *SessionController {
	return &SessionController{store: store}
}

type sessionResponse struct {
	IsReady             bool                       `json:"is_ready"`
	IsAuthenticated     bool                       `json:"is_authenticated"`
	Loading             bool                       `json:"loading"`
	AuthenticationState models.AuthenticationState `json:"authentication_state"`
	Username            string                     `json:"username,omitempty"`
	Error               *errorResponse             `json:"error,omitempty"`
}

// Index handles GET /
func (c *SessionController) Index(w http.ResponseWriter, r *http.Request) {
	state := c.store.State()

	resp := sessionResponse{
		IsReady:             state.IsReady,
		IsAuthenticated:     state.IsAuthenticated(),
		Loading:             state.Loading,
		AuthenticationState: state.AuthenticationState,
	}
	if state.AccountInfo != nil && state.AccountInfo.Account != nil {
		resp.Username = state.AccountInfo.Account.Username
	}
	if state.Error != nil {
		resp.Error = &errorResponse{Error: state.Error.Code, Message: state.Error.Message}
	}

	writeJSON(w, http.StatusOK, resp)
}

type profileResponse struct {
	HomeAccountID  string         `json:"home_account_id"`
	Username       string         `json:"username"`
	Name           string         `json:"name,omitempty"`
	Claims         map[string]any `json:"claims,omitempty"`
	HasIDToken     bool           `json:"has_id_token"`
	HasAccessToken bool           `json:"has_access_token"`
}

// Profile handles GET /profile. It must run behind RequireAuth.
func (c *SessionController) Profile(w http.ResponseWriter, r *http.Request) {
	info := c.store.State().AccountInfo
	if info == nil || info.Account == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no_account", Message: "no account information available"})
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		HomeAccountID:  userctx.GetAccountID(r.Context()),
		Username:       info.Account.Username,
		Name:           info.Account.Name,
		Claims:         info.Account.IDTokenClaims,
		HasIDToken:     info.JWTIDToken != "",
		HasAccessToken: info.JWTAccessToken != "",
	})
}
