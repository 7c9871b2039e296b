package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
	"github.com/blogem/authsession/services"
	"github.com/blogem/authsession/session"
)

// RedirectCompleter finishes a redirect login from the authorization response
type RedirectCompleter interface {
	CompleteRedirect(ctx context.Context, query url.Values) (*models.AuthResponse, error)
}

// Controllers holds all controller instances
type Controllers struct {
	Auth      *AuthController
	Session   *SessionController
	MenuItems *MenuItemController
}

// NewControllers creates and initializes all controller instances.
// completer may be nil when only popup logins are used.
func NewControllers(store *session.Store, completer RedirectCompleter, apiBaseURL string, logger *slog.Logger) *Controllers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controllers{
		Auth:      NewAuthController(store, completer, logger),
		Session:   NewSessionController(store),
		MenuItems: NewMenuItemController(store, apiBaseURL, logger),
	}
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "authsession"})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON encodes data with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err onto an HTTP status and a JSON error body
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotInitialized) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "not_initialized", Message: err.Error()})
		return
	}
	if errors.Is(err, services.ErrMissingAccessToken) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing_access_token", Message: err.Error()})
		return
	}

	authErr := authenticator.AsAuthError(err)
	status := http.StatusUnauthorized
	switch authErr.Kind {
	case authenticator.KindConfiguration:
		status = http.StatusInternalServerError
	case authenticator.KindServer, authenticator.KindUnknown:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: authErr.Code, Message: authErr.Message})
}

// navigatingContext makes redirect flows answer the request with a 302.
// The returned func reports whether a redirect was written.
func navigatingContext(w http.ResponseWriter, r *http.Request) (context.Context, func() bool) {
	redirected := false
	ctx := authenticator.WithNavigator(r.Context(), func(_ context.Context, target string) error {
		redirected = true
		http.Redirect(w, r, target, http.StatusFound)
		return nil
	})
	return ctx, func() bool { return redirected }
}
