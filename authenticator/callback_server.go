package authenticator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
)

// callbackResult is what the loopback server receives from the browser
type callbackResult struct {
	query url.Values
}

// callbackServer is a short-lived loopback HTTP server that receives the
// authorization response of a popup flow
type callbackServer struct {
	server      *http.Server
	redirectURI string
	results     chan callbackResult
	logger      *slog.Logger
}

// startCallbackServer binds the host:port of redirectURI, falling back to an
// ephemeral loopback port. The returned server's redirectURI reflects the bound port.
func startCallbackServer(redirectURI string, logger *slog.Logger) (*callbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	listener, err := net.Listen("tcp", u.Host)
	if err != nil {
		listener, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, fmt.Errorf("failed to start callback server: %w", err)
		}
		u.Host = fmt.Sprintf("127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
	} else if u.Port() == "0" {
		u.Host = fmt.Sprintf("%s:%d", u.Hostname(), listener.Addr().(*net.TCPAddr).Port)
	}

	cs := &callbackServer{
		redirectURI: u.String(),
		results:     make(chan callbackResult, 1),
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Get(path, cs.handleCallback)
	cs.server = &http.Server{
		Handler:     r,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		if err := cs.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server error", slog.String("error", err.Error()))
		}
	}()

	logger.Debug("callback server started", slog.String("redirect_uri", cs.redirectURI))
	return cs, nil
}

// handleCallback forwards the first authorization response and ignores the rest
func (cs *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	select {
	case cs.results <- callbackResult{query: r.URL.Query()}:
	default:
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if r.URL.Query().Get("error") != "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, "Login failed. You can close this window and try again.")
		return
	}
	fmt.Fprintln(w, "Login complete. You can close this window.")
}

// wait blocks until the browser calls back, the timeout elapses or ctx is done
func (cs *callbackServer) wait(ctx context.Context, timeout time.Duration) (url.Values, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-cs.results:
		return res.query, nil
	case <-timer.C:
		return nil, ErrPopupTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close shuts the server down
func (cs *callbackServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cs.server.Shutdown(ctx); err != nil {
		cs.logger.Warn("callback server shutdown failed", slog.String("error", err.Error()))
	}
}
