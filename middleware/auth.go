package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/blogem/authsession/session"
	"github.com/blogem/authsession/userctx"
)

// RequireAuth ensures the session is authenticated.
// Unauthenticated requests get a 401 pointing at /login; authenticated requests
// carry the account ID and username in their context.
func RequireAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := store.State()
			if !state.IsAuthenticated() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"error":     "unauthenticated",
					"login_url": "/login",
					"is_ready":  state.IsReady,
				})
				return
			}

			ctx := r.Context()
			if info := state.AccountInfo; info != nil && info.Account != nil {
				ctx = userctx.SetAccountID(ctx, info.Account.HomeAccountID)
				ctx = userctx.SetUsername(ctx, info.Account.Username)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
