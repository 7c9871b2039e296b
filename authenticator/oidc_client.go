package authenticator

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/blogem/authsession/models"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
)

const defaultPopupTimeout = 5 * time.Minute

// Config holds OpenID Connect client configuration
type Config struct {
	Authority    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	PopupTimeout time.Duration
}

// pendingFlow is the state kept between building an authorization URL and its callback
type pendingFlow struct {
	state       string
	nonce       string
	verifier    string
	redirectURI string
	scopes      []string
	tokenType   models.TokenType
}

// OIDCClient implements IdentityClient against an OpenID Connect provider using the
// authorization code flow with PKCE and refresh-token based silent renewal
type OIDCClient struct {
	cfg           Config
	provider      *oidc.Provider
	verifier      *oidc.IDTokenVerifier
	keySet        oidc.KeySet
	issuer        string
	endSessionURL string
	httpClient    *http.Client
	accounts      AccountStore
	secrets       SecretStore
	tokens        *tokenCache
	pending       *gocache.Cache
	navigator     Navigator
	openBrowser   func(url string) error
	logger        *slog.Logger
	now           func() time.Time

	mu               sync.Mutex
	account          *models.Account
	idToken          *models.IDToken
	popups           int
	redirectCallback RedirectCallback
}

// NewOIDCClient discovers the authority and restores any cached account
func NewOIDCClient(ctx context.Context, cfg Config, opts ...Option) (*OIDCClient, error) {
	// Validate required configuration
	if cfg.Authority == "" {
		return nil, NewAuthError(KindConfiguration, "invalid_config", "authority is required", nil)
	}
	if cfg.ClientID == "" {
		return nil, NewAuthError(KindConfiguration, "invalid_config", "client ID is required", nil)
	}
	if cfg.RedirectURL == "" {
		return nil, NewAuthError(KindConfiguration, "invalid_config", "redirect URL is required", nil)
	}
	if cfg.PopupTimeout <= 0 {
		cfg.PopupTimeout = defaultPopupTimeout
	}

	c := &OIDCClient{
		cfg:         cfg,
		httpClient:  http.DefaultClient,
		accounts:    &memoryAccountStore{},
		secrets:     &memorySecretStore{},
		tokens:      newTokenCache(),
		pending:     gocache.New(cfg.PopupTimeout, time.Minute),
		openBrowser: browser.OpenURL,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	provider, err := oidc.NewProvider(c.httpContext(ctx), cfg.Authority)
	if err != nil {
		return nil, NewAuthError(KindConfiguration, "discovery_failed", "failed to discover authority", err)
	}
	c.provider = provider

	var meta struct {
		Issuer             string `json:"issuer"`
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, NewAuthError(KindConfiguration, "discovery_failed", "failed to read provider metadata", err)
	}
	c.issuer = meta.Issuer
	c.endSessionURL = meta.EndSessionEndpoint

	oidcConfig := &oidc.Config{ClientID: cfg.ClientID}
	if c.keySet != nil {
		c.verifier = oidc.NewVerifier(c.issuer, c.keySet, oidcConfig)
	} else {
		c.verifier = provider.Verifier(oidcConfig)
	}

	c.restoreAccount(ctx)
	return c, nil
}

// restoreAccount loads the cached account without contacting the provider
func (c *OIDCClient) restoreAccount(ctx context.Context) {
	account, rawIDToken, err := c.accounts.GetCurrent(ctx)
	if err != nil {
		c.logger.Warn("failed to load cached account", slog.String("error", err.Error()))
		return
	}
	if account == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.account = account
	if rawIDToken != "" {
		c.idToken = decodeIDToken(rawIDToken)
	}
	// Stores may keep only the raw token; claims are rebuilt from it
	if c.idToken != nil && len(account.IDTokenClaims) == 0 {
		account.IDTokenClaims = maps.Clone(c.idToken.Claims)
	}
}

// decodeIDToken reads claims of a token that was verified when it was first received
func decodeIDToken(raw string) *models.IDToken {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}
	tok := &models.IDToken{Raw: raw, Claims: map[string]any(claims)}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tok.ExpiresOn = exp.Time
	}
	return tok
}

func (c *OIDCClient) httpContext(ctx context.Context) context.Context {
	ctx = oidc.ClientContext(ctx, c.httpClient)
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *OIDCClient) oauthConfig(redirectURI string, scopes []string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = c.cfg.RedirectURL
	}
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     c.provider.Endpoint(),
		Scopes:       c.requestScopes(scopes),
	}
}

// requestScopes maps the client ID pseudo-scope onto openid and makes sure the
// scopes needed for an ID token and a refresh token are present
func (c *OIDCClient) requestScopes(scopes []string) []string {
	if len(scopes) == 0 {
		scopes = c.cfg.Scopes
	}
	out := make([]string, 0, len(scopes)+3)
	for _, s := range scopes {
		if s != c.cfg.ClientID {
			out = append(out, s)
		}
	}
	for _, s := range []string{oidc.ScopeOpenID, "profile", oidc.ScopeOfflineAccess} {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func (c *OIDCClient) isIDTokenRequest(scopes []string) bool {
	return len(scopes) == 1 && scopes[0] == c.cfg.ClientID
}

// newFlow creates the state, nonce and PKCE verifier of one interactive attempt
func (c *OIDCClient) newFlow(params models.AuthenticationParameters, redirectURI string, tokenType models.TokenType) (*pendingFlow, error) {
	state, err := generateRandomState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	nonce, err := generateRandomState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	if redirectURI == "" {
		redirectURI = params.RedirectURI
	}
	if redirectURI == "" {
		redirectURI = c.cfg.RedirectURL
	}
	return &pendingFlow{
		state:       state,
		nonce:       nonce,
		verifier:    oauth2.GenerateVerifier(),
		redirectURI: redirectURI,
		scopes:      slices.Clone(params.Scopes),
		tokenType:   tokenType,
	}, nil
}

// authCodeURL builds the authorization URL for a flow
func (c *OIDCClient) authCodeURL(flow *pendingFlow, params models.AuthenticationParameters) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.S256ChallengeOption(flow.verifier),
		oidc.Nonce(flow.nonce),
	}
	if params.LoginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", params.LoginHint))
	}
	if params.Prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", params.Prompt))
	}
	for k, v := range params.ExtraQueryParameters {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return c.oauthConfig(flow.redirectURI, flow.scopes).AuthCodeURL(flow.state, opts...)
}

// LoginPopup runs an interactive login through the system browser and a loopback listener
func (c *OIDCClient) LoginPopup(ctx context.Context, params models.AuthenticationParameters) (*models.AuthResponse, error) {
	return c.popup(ctx, params, models.TokenTypeIDToken)
}

// AcquireTokenPopup runs an interactive flow to obtain an access token
func (c *OIDCClient) AcquireTokenPopup(ctx context.Context, params models.AuthenticationParameters) (*models.AuthResponse, error) {
	return c.popup(ctx, params, models.TokenTypeAccessToken)
}

func (c *OIDCClient) popup(ctx context.Context, params models.AuthenticationParameters, tokenType models.TokenType) (*models.AuthResponse, error) {
	redirectURI := params.RedirectURI
	if redirectURI == "" {
		redirectURI = c.cfg.RedirectURL
	}

	server, err := startCallbackServer(redirectURI, c.logger)
	if err != nil {
		return nil, NewAuthError(KindClientAuth, "popup_window_error", "failed to start callback listener", err)
	}
	defer server.Close()

	flow, err := c.newFlow(params, server.redirectURI, tokenType)
	if err != nil {
		return nil, NewAuthError(KindClientAuth, "popup_window_error", "failed to start interactive flow", err)
	}

	c.setPopupActive(1)
	defer c.setPopupActive(-1)

	if err := c.openBrowser(c.authCodeURL(flow, params)); err != nil {
		return nil, NewAuthError(KindClientAuth, "popup_window_error", "failed to open browser", err)
	}

	query, err := server.wait(ctx, c.cfg.PopupTimeout)
	if err != nil {
		return nil, NewAuthError(KindClientAuth, "user_cancelled", "interactive login did not complete", err)
	}
	return c.completeFlow(ctx, flow, query)
}

func (c *OIDCClient) setPopupActive(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.popups += delta
}

// LoginRedirect hands the authorization URL to the navigator. The response arrives later
// through CompleteRedirect.
func (c *OIDCClient) LoginRedirect(ctx context.Context, params models.AuthenticationParameters) error {
	return c.redirect(ctx, params, models.TokenTypeIDToken)
}

// AcquireTokenRedirect is LoginRedirect for an access token
func (c *OIDCClient) AcquireTokenRedirect(ctx context.Context, params models.AuthenticationParameters) error {
	return c.redirect(ctx, params, models.TokenTypeAccessToken)
}

func (c *OIDCClient) redirect(ctx context.Context, params models.AuthenticationParameters, tokenType models.TokenType) error {
	nav, ok := NavigatorFromContext(ctx)
	if !ok {
		nav = c.navigator
	}
	if nav == nil {
		return NewAuthError(KindClientAuth, "redirect_error", "cannot start redirect", ErrNoNavigator)
	}

	flow, err := c.newFlow(params, "", tokenType)
	if err != nil {
		return NewAuthError(KindClientAuth, "redirect_error", "failed to start interactive flow", err)
	}
	c.pending.SetDefault(flow.state, flow)

	if err := nav(ctx, c.authCodeURL(flow, params)); err != nil {
		c.pending.Delete(flow.state)
		return NewAuthError(KindClientAuth, "redirect_error", "navigation failed", err)
	}
	return nil
}

// CompleteRedirect processes the authorization response of a redirect flow and
// notifies the registered redirect callback
func (c *OIDCClient) CompleteRedirect(ctx context.Context, query url.Values) (*models.AuthResponse, error) {
	resp, err := c.completeRedirect(ctx, query)

	c.mu.Lock()
	cb := c.redirectCallback
	c.mu.Unlock()
	if cb != nil {
		cb(ctx, err)
	}
	return resp, err
}

func (c *OIDCClient) completeRedirect(ctx context.Context, query url.Values) (*models.AuthResponse, error) {
	state := query.Get("state")
	v, ok := c.pending.Get(state)
	if !ok {
		return nil, NewAuthError(KindClientAuth, "invalid_state", "no matching interactive login", ErrNoPendingFlow)
	}
	c.pending.Delete(state)
	return c.completeFlow(ctx, v.(*pendingFlow), query)
}

// completeFlow validates an authorization response and redeems the code
func (c *OIDCClient) completeFlow(ctx context.Context, flow *pendingFlow, query url.Values) (*models.AuthResponse, error) {
	if code := query.Get("error"); code != "" {
		return nil, classifyOAuthError(code, query.Get("error_description"), nil)
	}
	if query.Get("state") != flow.state {
		return nil, NewAuthError(KindClientAuth, "invalid_state", "state mismatch", ErrStateMismatch)
	}

	cfg := c.oauthConfig(flow.redirectURI, flow.scopes)
	token, err := cfg.Exchange(c.httpContext(ctx), query.Get("code"), oauth2.VerifierOption(flow.verifier))
	if err != nil {
		return nil, classifyTokenError(err)
	}

	idToken, err := c.verifyIDToken(ctx, token, flow.nonce)
	if err != nil {
		return nil, err
	}
	if idToken == nil {
		return nil, NewAuthError(KindServer, "invalid_response", "no id_token in token", nil)
	}
	return c.storeToken(ctx, token, idToken, flow.scopes, flow.tokenType, flow.state)
}

// verifyIDToken checks the id_token of a token response. A missing id_token is not an error.
func (c *OIDCClient) verifyIDToken(ctx context.Context, token *oauth2.Token, nonce string) (*models.IDToken, error) {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, nil
	}

	verified, err := c.verifier.Verify(c.httpContext(ctx), raw)
	if err != nil {
		return nil, NewAuthError(KindServer, "invalid_id_token", "failed to verify ID token", err)
	}
	if nonce != "" && verified.Nonce != nonce {
		return nil, NewAuthError(KindServer, "invalid_nonce", "ID token nonce mismatch", nil)
	}

	var claims map[string]any
	if err := verified.Claims(&claims); err != nil {
		return nil, NewAuthError(KindServer, "invalid_id_token", "failed to read ID token claims", err)
	}
	return &models.IDToken{Raw: raw, Claims: claims, ExpiresOn: verified.Expiry}, nil
}

// storeToken caches the result of a code exchange or refresh and builds the response
func (c *OIDCClient) storeToken(ctx context.Context, token *oauth2.Token, idToken *models.IDToken, scopes []string, tokenType models.TokenType, state string) (*models.AuthResponse, error) {
	c.mu.Lock()
	account := c.account
	if idToken != nil {
		account = c.accountFromClaims(idToken.Claims)
		c.account = account
		c.idToken = idToken
	} else {
		idToken = c.idToken
	}
	c.mu.Unlock()

	if account == nil {
		return nil, NewAuthError(KindServer, "invalid_response", "token response has no account", nil)
	}

	if token.RefreshToken != "" {
		if err := c.secrets.SetRefreshToken(account.HomeAccountID, token.RefreshToken); err != nil {
			c.logger.Warn("failed to store refresh token", slog.String("error", err.Error()))
		}
	}
	if idToken != nil {
		if err := c.accounts.Save(ctx, account, idToken.Raw); err != nil {
			c.logger.Warn("failed to store account", slog.String("error", err.Error()))
		}
	}

	resp := &models.AuthResponse{
		TokenType:   tokenType,
		Account:     account.Clone(),
		AccessToken: token.AccessToken,
		Scopes:      slices.Clone(scopes),
		ExpiresOn:   token.Expiry,
		State:       state,
	}
	if idToken != nil {
		resp.IDToken = *idToken
	}
	if token.AccessToken != "" && len(scopes) > 0 && !c.isIDTokenRequest(scopes) {
		c.tokens.set(scopes, resp, c.now())
	}
	return resp, nil
}

func (c *OIDCClient) accountFromClaims(claims map[string]any) *models.Account {
	str := func(k string) string {
		s, _ := claims[k].(string)
		return s
	}
	account := &models.Account{
		HomeAccountID: str("sub"),
		Username:      str("preferred_username"),
		Name:          str("name"),
		IDTokenClaims: claims,
	}
	if account.Username == "" {
		account.Username = str("email")
	}
	if u, err := url.Parse(c.issuer); err == nil {
		account.Environment = u.Host
	}
	return account
}

// AcquireTokenSilent returns a cached token when still valid and otherwise redeems the
// stored refresh token. It never involves the user.
func (c *OIDCClient) AcquireTokenSilent(ctx context.Context, params models.AuthenticationParameters) (*models.AuthResponse, error) {
	c.mu.Lock()
	account := c.account.Clone()
	idToken := c.idToken
	c.mu.Unlock()

	if account == nil {
		return nil, NewUserLoginError()
	}

	now := c.now()
	if c.isIDTokenRequest(params.Scopes) {
		if idToken != nil && idToken.ExpiresOn.After(now.Add(expirySkew)) {
			return &models.AuthResponse{
				TokenType: models.TokenTypeIDToken,
				Account:   account,
				IDToken:   *idToken,
				Scopes:    slices.Clone(params.Scopes),
				ExpiresOn: idToken.ExpiresOn,
			}, nil
		}
	} else if cached, ok := c.tokens.get(params.Scopes); ok {
		resp := *cached
		resp.Scopes = slices.Clone(cached.Scopes)
		return &resp, nil
	}

	refreshToken, err := c.secrets.RefreshToken(account.HomeAccountID)
	if err != nil || refreshToken == "" {
		return nil, NewInteractionRequiredError(CodeNoTokensFound, "no refresh token cached", err)
	}

	cfg := c.oauthConfig(params.RedirectURI, params.Scopes)
	token, err := cfg.TokenSource(c.httpContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}

	newIDToken, err := c.verifyIDToken(ctx, token, "")
	if err != nil {
		return nil, err
	}

	tokenType := models.TokenTypeAccessToken
	if c.isIDTokenRequest(params.Scopes) {
		tokenType = models.TokenTypeIDToken
		if newIDToken == nil {
			return nil, NewAuthError(KindServer, "invalid_response", "no id_token in token", nil)
		}
	}
	return c.storeToken(ctx, token, newIDToken, params.Scopes, tokenType, "")
}

// GetAccount returns the cached account, or nil
func (c *OIDCClient) GetAccount() *models.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account.Clone()
}

// GetLoginInProgress reports whether an interactive flow is underway
func (c *OIDCClient) GetLoginInProgress() bool {
	c.mu.Lock()
	popups := c.popups
	c.mu.Unlock()
	// ItemCount includes expired flows the janitor has not removed yet
	return popups > 0 || len(c.pending.Items()) > 0
}

// HandleRedirectCallback registers the callback fired by CompleteRedirect
func (c *OIDCClient) HandleRedirectCallback(cb RedirectCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redirectCallback = cb
}

// GetCurrentConfiguration returns the effective client configuration
func (c *OIDCClient) GetCurrentConfiguration() models.ClientConfiguration {
	return models.ClientConfiguration{
		ClientID:    c.cfg.ClientID,
		Authority:   c.cfg.Authority,
		RedirectURI: c.cfg.RedirectURL,
	}
}

// Logout forgets the cached account and tokens and, when the provider supports it,
// sends the user agent to the end-session endpoint
func (c *OIDCClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	account := c.account
	idToken := c.idToken
	c.account = nil
	c.idToken = nil
	c.mu.Unlock()

	c.tokens.flush()
	c.pending.Flush()

	if account != nil {
		if err := c.accounts.Delete(ctx, account.HomeAccountID); err != nil {
			return fmt.Errorf("failed to delete cached account: %w", err)
		}
		if err := c.secrets.DeleteRefreshToken(account.HomeAccountID); err != nil {
			c.logger.Warn("failed to delete refresh token", slog.String("error", err.Error()))
		}
	}

	if c.endSessionURL == "" {
		return nil
	}
	nav, ok := NavigatorFromContext(ctx)
	if !ok {
		nav = c.navigator
	}
	if nav == nil {
		return nil
	}

	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("post_logout_redirect_uri", c.cfg.RedirectURL)
	if idToken != nil {
		q.Set("id_token_hint", idToken.Raw)
	}
	if err := nav(ctx, c.endSessionURL+"?"+q.Encode()); err != nil {
		return fmt.Errorf("failed to navigate to end session endpoint: %w", err)
	}
	return nil
}

// classifyTokenError maps token endpoint failures onto AuthError kinds
func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return classifyOAuthError(retrieveErr.ErrorCode, retrieveErr.ErrorDescription, err)
	}
	return NewAuthError(KindServer, "network_error", "token request failed", err)
}

func classifyOAuthError(code, description string, err error) *AuthError {
	if IsInteractionCode(code) {
		return NewInteractionRequiredError(code, description, err)
	}
	if code == "" {
		code = CodeUnknownError
	}
	return NewAuthError(KindServer, code, description, err)
}

// generateRandomState generates a random value for state and nonce parameters
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
