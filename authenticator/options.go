package authenticator

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Option configures an OIDCClient
type Option func(*OIDCClient)

// WithHTTPClient sets the HTTP client used for discovery and token requests
func WithHTTPClient(client *http.Client) Option {
	return func(c *OIDCClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithKeySet verifies ID tokens against a fixed key set instead of the issuer's JWKS
func WithKeySet(keySet oidc.KeySet) Option {
	return func(c *OIDCClient) {
		c.keySet = keySet
	}
}

// WithAccountStore persists the signed-in account
func WithAccountStore(store AccountStore) Option {
	return func(c *OIDCClient) {
		if store != nil {
			c.accounts = store
		}
	}
}

// WithSecretStore persists refresh tokens
func WithSecretStore(store SecretStore) Option {
	return func(c *OIDCClient) {
		if store != nil {
			c.secrets = store
		}
	}
}

// WithDefaultNavigator sets the navigator used when the context carries none
func WithDefaultNavigator(nav Navigator) Option {
	return func(c *OIDCClient) {
		c.navigator = nav
	}
}

// WithBrowserOpener overrides how popup flows open the authorization URL
func WithBrowserOpener(open func(url string) error) Option {
	return func(c *OIDCClient) {
		if open != nil {
			c.openBrowser = open
		}
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *OIDCClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock injects the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *OIDCClient) {
		if now != nil {
			c.now = now
		}
	}
}
