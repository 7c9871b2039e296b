package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/blogem/authsession/session"
)

type AuthController struct {
	store     *session.Store
	completer RedirectCompleter
	logger    *slog.Logger
}

func NewAuthController(store *session.Store, completer RedirectCompleter, logger *slog.Logger) *AuthController {
	return &AuthController{store: store, completer: completer, logger: logger}
}

// Login handles GET /login. Redirect logins answer with a redirect to the identity
// provider; popup logins block until the loopback flow finishes.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx, redirected := navigatingContext(w, r)

	err := ac.store.Session().SignIn(ctx)
	if redirected() {
		return
	}
	if err != nil {
		ac.logger.WarnContext(r.Context(), "login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Callback handles GET /callback for redirect logins
func (ac *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	if ac.completer == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "redirect login is not enabled"})
		return
	}

	if _, err := ac.completer.CompleteRedirect(r.Context(), r.URL.Query()); err != nil {
		ac.logger.WarnContext(r.Context(), "redirect login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, redirected := navigatingContext(w, r)

	err := ac.store.Session().SignOut(ctx)
	if redirected() {
		return
	}
	if err != nil && errors.Is(err, session.ErrNotInitialized) {
		writeError(w, err)
		return
	}
	if err != nil {
		// Local state is cleared even when the identity provider could not be reached
		ac.logger.WarnContext(r.Context(), "logout incomplete", slog.String("error", err.Error()))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
