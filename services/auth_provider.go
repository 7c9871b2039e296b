package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
)

// MetricsRecorder observes provider activity
type MetricsRecorder interface {
	StateChanged(state models.AuthenticationState)
	TokenAcquired(tokenType models.TokenType, method string)
	TokenFailed(tokenType models.TokenType, kind authenticator.ErrorKind)
}

type nopMetrics struct{}

func (nopMetrics) StateChanged(models.AuthenticationState)                 {}
func (nopMetrics) TokenAcquired(models.TokenType, string)                  {}
func (nopMetrics) TokenFailed(models.TokenType, authenticator.ErrorKind) {}

// Token acquisition methods reported to MetricsRecorder
const (
	MethodSilent = "silent"
	MethodPopup  = "popup"
)

// ProviderOption customizes provider construction
type ProviderOption func(*AuthenticationProvider)

// WithLogger sets the provider logger
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *AuthenticationProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m MetricsRecorder) ProviderOption {
	return func(p *AuthenticationProvider) {
		if m != nil {
			p.metrics = m
		}
	}
}

// AuthenticationProvider owns the authentication state machine. It wraps an identity
// client, renews tokens silently with an interactive fallback, and publishes changes
// to registered listeners.
type AuthenticationProvider struct {
	client  authenticator.IdentityClient
	logger  *slog.Logger
	metrics MetricsRecorder

	mu          sync.Mutex
	state       models.AuthenticationState
	initState   models.InitState
	parameters  models.AuthenticationParameters
	options     models.ProviderOptions
	accountInfo *models.AccountInfo
	err         *authenticator.AuthError

	listeners listenerRegistry
	initOnce  sync.Once
}

// NewAuthenticationProvider creates a provider in the Unauthenticated state.
// Call Initialize once listeners are attached to reconcile with the identity client.
func NewAuthenticationProvider(client authenticator.IdentityClient, params models.AuthenticationParameters, opts models.ProviderOptions, options ...ProviderOption) (*AuthenticationProvider, error) {
	if client == nil {
		return nil, authenticator.NewAuthError(authenticator.KindConfiguration, "invalid_config", "identity client is required", nil)
	}

	p := &AuthenticationProvider{
		client:    client,
		logger:    slog.Default(),
		metrics:   nopMetrics{},
		state:     models.Unauthenticated,
		initState: models.InitNotStarted,
	}
	for _, opt := range options {
		opt(p)
	}

	if opts.LoginType == "" {
		opts.LoginType = models.LoginTypePopup
	}
	if opts.TokenRefreshURI == "" {
		opts.TokenRefreshURI = client.GetCurrentConfiguration().RedirectURI
	}

	p.SetAuthenticationParameters(params)
	p.SetProviderOptions(opts)
	return p, nil
}

// Initialize reconciles the provider with the identity client's cache. It runs once;
// init-state listeners see InProgress then Completed.
func (p *AuthenticationProvider) Initialize(ctx context.Context) {
	p.initOnce.Do(func() {
		p.setInitState(models.InitInProgress)
		p.processLogin(ctx)
		p.setInitState(models.InitCompleted)
	})
}

// Login starts an interactive login using params, or the baseline parameters when nil
func (p *AuthenticationProvider) Login(ctx context.Context, params *models.AuthenticationParameters) error {
	effective := p.effectiveParameters(params)

	// A blocked error must survive so repeated logins do not hammer the provider
	if current := p.GetError(); current != nil && current.Code != authenticator.CodeBlockTokenRequests {
		p.setError(nil)
	}

	if p.GetProviderOptions().LoginType == models.LoginTypeRedirect {
		p.setAuthenticationState(models.InProgress)
		if err := p.client.LoginRedirect(ctx, effective); err != nil {
			p.fail(err)
			return err
		}
		return nil
	}

	p.setAuthenticationState(models.InProgress)
	resp, err := p.client.LoginPopup(ctx, effective)
	if err != nil {
		p.fail(err)
	} else {
		p.setAccountInfo(resp)
	}

	p.processLogin(ctx)
	return err
}

// Logout signs the user out of the identity client and clears account info and error
func (p *AuthenticationProvider) Logout(ctx context.Context) error {
	err := p.client.Logout(ctx)

	p.mu.Lock()
	hadAccount := p.accountInfo != nil
	p.accountInfo = nil
	p.mu.Unlock()
	if hadAccount {
		p.listeners.accountInfo.notify(nil)
	}
	p.setError(nil)
	p.setAuthenticationState(models.Unauthenticated)

	if err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// GetAccessToken renews an access token silently, falling back to an interactive flow
// when the identity client says interaction is required
func (p *AuthenticationProvider) GetAccessToken(ctx context.Context, params *models.AuthenticationParameters) (*models.AccessTokenResponse, error) {
	refreshParams := p.refreshParameters(params)

	resp, err := p.client.AcquireTokenSilent(ctx, refreshParams)
	if err == nil {
		p.metrics.TokenAcquired(models.TokenTypeAccessToken, MethodSilent)
		p.setAccountInfo(resp)
		p.setAuthenticationState(models.Authenticated)
		return models.NewAccessTokenResponse(resp), nil
	}

	resp, err = p.loginToRefreshToken(ctx, err, p.effectiveParameters(params), models.TokenTypeAccessToken, false)
	if err != nil {
		return nil, err
	}
	return models.NewAccessTokenResponse(resp), nil
}

// GetIDToken renews the ID token silently, falling back to an interactive flow
// when the identity client says interaction is required
func (p *AuthenticationProvider) GetIDToken(ctx context.Context, params *models.AuthenticationParameters) (*models.IdTokenResponse, error) {
	return p.getIDToken(ctx, params, false)
}

// getIDToken requests only the client ID scope so a lightweight renewal can happen.
// quiet suppresses recording of user-login errors during reconciliation.
func (p *AuthenticationProvider) getIDToken(ctx context.Context, params *models.AuthenticationParameters, quiet bool) (*models.IdTokenResponse, error) {
	refreshParams := p.refreshParameters(params)
	refreshParams.Scopes = []string{p.client.GetCurrentConfiguration().ClientID}

	resp, err := p.client.AcquireTokenSilent(ctx, refreshParams)
	if err == nil {
		p.metrics.TokenAcquired(models.TokenTypeIDToken, MethodSilent)
		p.setAccountInfo(resp)
		p.setAuthenticationState(models.Authenticated)
		return models.NewIdTokenResponse(resp), nil
	}

	loginParams := p.effectiveParameters(params)
	// Prefer the cached user so the account picker can be skipped
	if account := p.client.GetAccount(); account != nil && (params == nil || params.LoginHint == "") {
		loginParams.LoginHint = account.Username
	}

	resp, err = p.loginToRefreshToken(ctx, err, loginParams, models.TokenTypeIDToken, quiet)
	if err != nil {
		return nil, err
	}
	return models.NewIdTokenResponse(resp), nil
}

// loginToRefreshToken handles a failed silent renewal. Only interaction-required errors
// get an interactive attempt; everything else is recorded and returned.
func (p *AuthenticationProvider) loginToRefreshToken(ctx context.Context, silentErr error, params models.AuthenticationParameters, tokenType models.TokenType, quiet bool) (*models.AuthResponse, error) {
	if !authenticator.IsInteractionRequired(silentErr) {
		p.metrics.TokenFailed(tokenType, authenticator.AsAuthError(silentErr).Kind)
		if quiet && authenticator.IsUserLoginError(silentErr) {
			return nil, silentErr
		}
		p.fail(silentErr)
		return nil, silentErr
	}

	if p.GetProviderOptions().LoginType == models.LoginTypeRedirect {
		// The user agent leaves; there is nothing to hand back in-process
		if err := p.client.AcquireTokenRedirect(ctx, params); err != nil {
			p.fail(err)
			return nil, err
		}
		return nil, nil
	}

	resp, err := p.client.AcquireTokenPopup(ctx, params)
	if err != nil {
		p.metrics.TokenFailed(tokenType, authenticator.AsAuthError(err).Kind)
		p.fail(err)
		return nil, err
	}

	p.metrics.TokenAcquired(tokenType, MethodPopup)
	p.setAccountInfo(resp)
	p.setAuthenticationState(models.Authenticated)
	return resp, nil
}

// processLogin converges the state with what the identity client knows
func (p *AuthenticationProvider) processLogin(ctx context.Context) {
	switch {
	case p.GetError() != nil:
		p.setAuthenticationState(models.Unauthenticated)

	case p.client.GetAccount() != nil:
		// If the ID token has expired, refresh it. Otherwise the cached token is used.
		if _, err := p.getIDToken(ctx, nil, true); err != nil {
			if authenticator.IsUserLoginError(err) {
				p.logger.InfoContext(ctx, "no signed-in user", slog.String("error", err.Error()))
			}
			p.setAuthenticationState(models.Unauthenticated)
		}

	case p.client.GetLoginInProgress():
		p.setAuthenticationState(models.InProgress)

	default:
		p.setAuthenticationState(models.Unauthenticated)
	}
}

// authenticationRedirectCallback runs when a redirect flow comes back
func (p *AuthenticationProvider) authenticationRedirectCallback(ctx context.Context, err error) {
	if err != nil {
		p.setError(authenticator.AsAuthError(err))
	}
	p.processLogin(ctx)
}

// fail records err as the current error and drops back to Unauthenticated
func (p *AuthenticationProvider) fail(err error) {
	authErr := authenticator.AsAuthError(err)
	p.logger.Error("authentication failed",
		slog.String("kind", string(authErr.Kind)),
		slog.String("code", authErr.Code),
		slog.String("error", err.Error()),
	)
	p.setError(authErr)
	p.setAuthenticationState(models.Unauthenticated)
}

// effectiveParameters returns a copy of params, or of the baseline when params is nil
func (p *AuthenticationProvider) effectiveParameters(params *models.AuthenticationParameters) models.AuthenticationParameters {
	if params != nil {
		return params.Clone()
	}
	return p.GetAuthenticationParameters()
}

// refreshParameters builds the silent renewal parameters. The redirect URI falls back
// to the token refresh URI and domain_hint is never sent on a silent call.
func (p *AuthenticationProvider) refreshParameters(params *models.AuthenticationParameters) models.AuthenticationParameters {
	refresh := p.effectiveParameters(params).WithoutDomainHint()
	if params == nil || params.RedirectURI == "" {
		refresh.RedirectURI = p.GetProviderOptions().TokenRefreshURI
	}
	return refresh
}

// AuthenticationState returns the current state
func (p *AuthenticationProvider) AuthenticationState() models.AuthenticationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// InitState returns how far initialization has progressed
func (p *AuthenticationProvider) InitState() models.InitState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initState
}

// GetAccountInfo returns a copy of the account info, or nil
func (p *AuthenticationProvider) GetAccountInfo() *models.AccountInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accountInfo.Clone()
}

// GetError returns a copy of the current error, or nil
func (p *AuthenticationProvider) GetError() *authenticator.AuthError {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err.Clone()
}

// GetAuthenticationParameters returns a copy of the baseline parameters
func (p *AuthenticationProvider) GetAuthenticationParameters() models.AuthenticationParameters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parameters.Clone()
}

// SetAuthenticationParameters replaces the baseline parameters with a copy of params
func (p *AuthenticationProvider) SetAuthenticationParameters(params models.AuthenticationParameters) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parameters = params.Clone()
}

// GetProviderOptions returns a copy of the provider options
func (p *AuthenticationProvider) GetProviderOptions() models.ProviderOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.options
}

// SetProviderOptions replaces the options. Redirect mode registers the redirect callback.
func (p *AuthenticationProvider) SetProviderOptions(opts models.ProviderOptions) {
	p.mu.Lock()
	p.options = opts
	p.mu.Unlock()

	if opts.LoginType == models.LoginTypeRedirect {
		p.client.HandleRedirectCallback(p.authenticationRedirectCallback)
	}
}

// RegisterAuthenticationStateHandler adds a state listener and replays the current state to it
func (p *AuthenticationProvider) RegisterAuthenticationStateHandler(fn AuthenticationStateHandler) Subscription {
	id := NewSubscription()
	p.RegisterAuthenticationStateHandlerWithID(id, fn)
	return id
}

// RegisterAuthenticationStateHandlerWithID is RegisterAuthenticationStateHandler with a
// caller-chosen handle. It reports false if the handle is already registered.
func (p *AuthenticationProvider) RegisterAuthenticationStateHandlerWithID(id Subscription, fn AuthenticationStateHandler) bool {
	if !p.listeners.state.add(id, fn) {
		return false
	}
	fn(p.AuthenticationState())
	return true
}

// UnregisterAuthenticationStateHandler removes a state listener
func (p *AuthenticationProvider) UnregisterAuthenticationStateHandler(id Subscription) {
	p.listeners.state.remove(id)
}

// RegisterAccountInfoHandler adds an account info listener and replays the current value to it
func (p *AuthenticationProvider) RegisterAccountInfoHandler(fn AccountInfoHandler) Subscription {
	id := NewSubscription()
	p.RegisterAccountInfoHandlerWithID(id, fn)
	return id
}

// RegisterAccountInfoHandlerWithID registers under a caller-chosen handle
func (p *AuthenticationProvider) RegisterAccountInfoHandlerWithID(id Subscription, fn AccountInfoHandler) bool {
	if !p.listeners.accountInfo.add(id, fn) {
		return false
	}
	fn(p.GetAccountInfo())
	return true
}

// UnregisterAccountInfoHandler removes an account info listener
func (p *AuthenticationProvider) UnregisterAccountInfoHandler(id Subscription) {
	p.listeners.accountInfo.remove(id)
}

// RegisterErrorHandler adds an error listener and replays the current error to it
func (p *AuthenticationProvider) RegisterErrorHandler(fn ErrorHandler) Subscription {
	id := NewSubscription()
	p.RegisterErrorHandlerWithID(id, fn)
	return id
}

// RegisterErrorHandlerWithID registers under a caller-chosen handle
func (p *AuthenticationProvider) RegisterErrorHandlerWithID(id Subscription, fn ErrorHandler) bool {
	if !p.listeners.errors.add(id, fn) {
		return false
	}
	fn(p.GetError())
	return true
}

// UnregisterErrorHandler removes an error listener
func (p *AuthenticationProvider) UnregisterErrorHandler(id Subscription) {
	p.listeners.errors.remove(id)
}

// RegisterInitStateHandler adds an init-state listener. It is not replayed.
func (p *AuthenticationProvider) RegisterInitStateHandler(fn InitStateHandler) Subscription {
	id := NewSubscription()
	p.RegisterInitStateHandlerWithID(id, fn)
	return id
}

// RegisterInitStateHandlerWithID registers under a caller-chosen handle
func (p *AuthenticationProvider) RegisterInitStateHandlerWithID(id Subscription, fn InitStateHandler) bool {
	return p.listeners.initState.add(id, fn)
}

// UnregisterInitStateHandler removes an init-state listener
func (p *AuthenticationProvider) UnregisterInitStateHandler(id Subscription) {
	p.listeners.initState.remove(id)
}

// setAuthenticationState changes the state and notifies listeners. Setting the current
// value again is a no-op.
func (p *AuthenticationProvider) setAuthenticationState(state models.AuthenticationState) {
	p.mu.Lock()
	if p.state == state {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.mu.Unlock()

	p.metrics.StateChanged(state)
	p.listeners.state.notify(state)
}

func (p *AuthenticationProvider) setInitState(state models.InitState) {
	p.mu.Lock()
	if state <= p.initState {
		p.mu.Unlock()
		return
	}
	p.initState = state
	p.mu.Unlock()

	p.listeners.initState.notify(state)
}

// setError replaces the current error; nil clears it
func (p *AuthenticationProvider) setError(err *authenticator.AuthError) {
	p.mu.Lock()
	p.err = err.Clone()
	current := p.err.Clone()
	p.mu.Unlock()

	p.listeners.errors.notify(current)
}

// setAccountInfo merges a token response into the account info
func (p *AuthenticationProvider) setAccountInfo(resp *models.AuthResponse) {
	if resp == nil {
		return
	}
	p.mu.Lock()
	p.accountInfo = p.accountInfo.Merge(resp)
	current := p.accountInfo.Clone()
	p.mu.Unlock()

	p.listeners.accountInfo.notify(current)
}
