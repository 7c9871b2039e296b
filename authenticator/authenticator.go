package authenticator

import (
	"context"

	"github.com/blogem/authsession/models"
)

// RedirectCallback is invoked when a redirect flow completes, with a nil error on success
type RedirectCallback func(ctx context.Context, err error)

// IdentityClient abstracts the identity provider operations the session core needs
type IdentityClient interface {
	LoginPopup(ctx context.Context, params models.AuthenticationParameters) (*models.AuthResponse, error)
	LoginRedirect(ctx context.Context, params models.AuthenticationParameters) error
	AcquireTokenSilent(ctx context.Context, params models.AuthenticationParameters) (*models.AuthResponse, error)
	AcquireTokenPopup(ctx context.Context, params models.AuthenticationParameters) (*models.AuthResponse, error)
	AcquireTokenRedirect(ctx context.Context, params models.AuthenticationParameters) error
	GetAccount() *models.Account
	GetLoginInProgress() bool
	HandleRedirectCallback(cb RedirectCallback)
	GetCurrentConfiguration() models.ClientConfiguration
	Logout(ctx context.Context) error
}

// Navigator sends the user agent to an authorization or logout URL
type Navigator func(ctx context.Context, url string) error

type navigatorKey struct{}

// WithNavigator returns a context whose redirect flows use nav instead of the client default
func WithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, navigatorKey{}, nav)
}

// NavigatorFromContext returns the navigator set by WithNavigator
func NavigatorFromContext(ctx context.Context) (Navigator, bool) {
	nav, ok := ctx.Value(navigatorKey{}).(Navigator)
	return nav, ok && nav != nil
}
