package authenticator

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/authsession/logger"
	"github.com/blogem/authsession/models"
)

const testClientID = "client-123"

type issuedCode struct {
	nonce     string
	challenge string
}

// fakeIdP is an in-process OpenID Connect provider with discovery, token and
// end-session endpoints
type fakeIdP struct {
	t      *testing.T
	server *httptest.Server
	key    *rsa.PrivateKey

	mu            sync.Mutex
	codes         map[string]issuedCode
	refreshTokens map[string]bool
	refreshError  string
	tokenRequests int
	seq           int
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &fakeIdP{
		t:             t,
		key:           key,
		codes:         make(map[string]issuedCode),
		refreshTokens: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", p.discovery)
	mux.HandleFunc("/token", p.token)
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeIdP) discovery(w http.ResponseWriter, r *http.Request) {
	base := p.server.URL
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"issuer":                 base,
		"authorization_endpoint": base + "/authorize",
		"token_endpoint":         base + "/token",
		"jwks_uri":               base + "/keys",
		"end_session_endpoint":   base + "/logout",
	})
}

func (p *fakeIdP) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, "invalid_request")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenRequests++

	var nonce string
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		code, ok := p.codes[r.PostForm.Get("code")]
		if !ok {
			writeOAuthError(w, "invalid_grant")
			return
		}
		delete(p.codes, r.PostForm.Get("code"))
		sum := sha256.Sum256([]byte(r.PostForm.Get("code_verifier")))
		if base64.RawURLEncoding.EncodeToString(sum[:]) != code.challenge {
			writeOAuthError(w, "invalid_grant")
			return
		}
		nonce = code.nonce
	case "refresh_token":
		if p.refreshError != "" {
			writeOAuthError(w, p.refreshError)
			return
		}
		if !p.refreshTokens[r.PostForm.Get("refresh_token")] {
			writeOAuthError(w, "invalid_grant")
			return
		}
	default:
		writeOAuthError(w, "unsupported_grant_type")
		return
	}

	p.seq++
	refresh := "refresh-" + strconv.Itoa(p.seq)
	p.refreshTokens[refresh] = true

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token":  "access-" + strconv.Itoa(p.seq),
		"token_type":    "Bearer",
		"expires_in":    3600,
		"refresh_token": refresh,
		"id_token":      p.idToken(nonce),
	})
}

func writeOAuthError(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "error_description": code + " from test"})
}

func (p *fakeIdP) idToken(nonce string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":                p.server.URL,
		"aud":                testClientID,
		"sub":                "user-1",
		"preferred_username": "jane@example.com",
		"name":               "Jane",
		"iat":                now.Unix(),
		"exp":                now.Add(time.Hour).Unix(),
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "test-key"
	raw, err := tok.SignedString(p.key)
	require.NoError(p.t, err)
	return raw
}

// authorize plays the user approving the request at authURL. It returns the
// redirect URI and the query the browser would be sent back with.
func (p *fakeIdP) authorize(authURL string) (string, url.Values) {
	u, err := url.Parse(authURL)
	require.NoError(p.t, err)
	q := u.Query()
	assert.Equal(p.t, testClientID, q.Get("client_id"))
	assert.Equal(p.t, "S256", q.Get("code_challenge_method"))

	p.mu.Lock()
	p.seq++
	code := "code-" + strconv.Itoa(p.seq)
	p.codes[code] = issuedCode{nonce: q.Get("nonce"), challenge: q.Get("code_challenge")}
	p.mu.Unlock()

	return q.Get("redirect_uri"), url.Values{"code": {code}, "state": {q.Get("state")}}
}

// approve returns a browser opener that completes the popup flow
func (p *fakeIdP) approve(modify func(url.Values)) func(string) error {
	return func(authURL string) error {
		redirectURI, query := p.authorize(authURL)
		if modify != nil {
			modify(query)
		}
		resp, err := http.Get(redirectURI + "?" + query.Encode())
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
}

func (p *fakeIdP) requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenRequests
}

func (p *fakeIdP) config() Config {
	return Config{
		Authority:    p.server.URL,
		ClientID:     testClientID,
		RedirectURL:  "http://127.0.0.1:0/callback",
		Scopes:       []string{"api://menu/read"},
		PopupTimeout: 5 * time.Second,
	}
}

func newTestClient(t *testing.T, p *fakeIdP, opts ...Option) *OIDCClient {
	t.Helper()
	opts = append([]Option{
		WithKeySet(&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&p.key.PublicKey}}),
		WithLogger(logger.NewNope()),
		WithBrowserOpener(p.approve(nil)),
	}, opts...)
	client, err := NewOIDCClient(context.Background(), p.config(), opts...)
	require.NoError(t, err)
	return client
}

func TestNewOIDCClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing authority", Config{ClientID: "c", RedirectURL: "http://localhost/cb"}},
		{"missing client id", Config{Authority: "https://idp", RedirectURL: "http://localhost/cb"}},
		{"missing redirect", Config{Authority: "https://idp", ClientID: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOIDCClient(context.Background(), tt.cfg)
			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, KindConfiguration, authErr.Kind)
		})
	}
}

func TestNewOIDCClient_DiscoveryFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewOIDCClient(context.Background(), Config{
		Authority:   server.URL,
		ClientID:    testClientID,
		RedirectURL: "http://localhost/cb",
	})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "discovery_failed", authErr.Code)
}

func TestOIDCClient_LoginPopup(t *testing.T) {
	p := newFakeIdP(t)
	accounts := &memoryAccountStore{}
	secrets := &memorySecretStore{}
	client := newTestClient(t, p, WithAccountStore(accounts), WithSecretStore(secrets))

	assert.Nil(t, client.GetAccount())

	resp, err := client.LoginPopup(context.Background(), models.AuthenticationParameters{
		Scopes:    []string{"api://menu/read"},
		LoginHint: "jane@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TokenTypeIDToken, resp.TokenType)
	assert.NotEmpty(t, resp.IDToken.Raw)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "jane@example.com", resp.IDToken.Claims["preferred_username"])
	require.NotNil(t, resp.Account)
	assert.Equal(t, "user-1", resp.Account.HomeAccountID)
	assert.Equal(t, "Jane", resp.Account.Name)
	assert.Equal(t, "jane@example.com", client.GetAccount().Username)
	assert.False(t, client.GetLoginInProgress())

	stored, raw, err := accounts.GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.HomeAccountID)
	assert.Equal(t, resp.IDToken.Raw, raw)

	refresh, err := secrets.RefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, refresh)
}

func TestOIDCClient_PopupErrors(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		p := newFakeIdP(t)
		client := newTestClient(t, p, WithBrowserOpener(p.approve(func(q url.Values) {
			q.Del("code")
			q.Set("error", "access_denied")
		})))

		_, err := client.LoginPopup(context.Background(), models.AuthenticationParameters{})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, KindServer, authErr.Kind)
		assert.Equal(t, "access_denied", authErr.Code)
	})

	t.Run("interaction code", func(t *testing.T) {
		p := newFakeIdP(t)
		client := newTestClient(t, p, WithBrowserOpener(p.approve(func(q url.Values) {
			q.Set("error", "login_required")
		})))

		_, err := client.AcquireTokenPopup(context.Background(), models.AuthenticationParameters{})
		assert.True(t, IsInteractionRequired(err))
	})

	t.Run("state mismatch", func(t *testing.T) {
		p := newFakeIdP(t)
		client := newTestClient(t, p, WithBrowserOpener(p.approve(func(q url.Values) {
			q.Set("state", "forged")
		})))

		_, err := client.LoginPopup(context.Background(), models.AuthenticationParameters{})
		assert.ErrorIs(t, err, ErrStateMismatch)
		assert.Nil(t, client.GetAccount())
	})

	t.Run("timeout", func(t *testing.T) {
		p := newFakeIdP(t)
		cfg := p.config()
		cfg.PopupTimeout = 50 * time.Millisecond
		client, err := NewOIDCClient(context.Background(), cfg,
			WithKeySet(&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&p.key.PublicKey}}),
			WithLogger(logger.NewNope()),
			WithBrowserOpener(func(string) error { return nil }),
		)
		require.NoError(t, err)

		_, err = client.LoginPopup(context.Background(), models.AuthenticationParameters{})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "user_cancelled", authErr.Code)
		assert.ErrorIs(t, err, ErrPopupTimeout)
	})

	t.Run("browser failure", func(t *testing.T) {
		p := newFakeIdP(t)
		client := newTestClient(t, p, WithBrowserOpener(func(string) error { return errors.New("no display") }))

		_, err := client.LoginPopup(context.Background(), models.AuthenticationParameters{})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "popup_window_error", authErr.Code)
	})
}

func TestOIDCClient_Redirect(t *testing.T) {
	p := newFakeIdP(t)
	client := newTestClient(t, p)

	var callbackErrs []error
	client.HandleRedirectCallback(func(ctx context.Context, err error) {
		callbackErrs = append(callbackErrs, err)
	})

	var authURL string
	ctx := WithNavigator(context.Background(), func(ctx context.Context, u string) error {
		authURL = u
		return nil
	})

	require.NoError(t, client.LoginRedirect(ctx, models.AuthenticationParameters{
		Scopes:               []string{"api://menu/read"},
		ExtraQueryParameters: map[string]string{"domain_hint": "example.com"},
	}))
	assert.True(t, client.GetLoginInProgress())

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "example.com", parsed.Query().Get("domain_hint"))
	assert.Contains(t, parsed.Query().Get("scope"), "offline_access")

	_, query := p.authorize(authURL)
	resp, err := client.CompleteRedirect(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.Account.HomeAccountID)
	assert.False(t, client.GetLoginInProgress())
	require.Len(t, callbackErrs, 1)
	assert.NoError(t, callbackErrs[0])

	// the same response cannot be redeemed twice
	_, err = client.CompleteRedirect(context.Background(), query)
	assert.ErrorIs(t, err, ErrNoPendingFlow)
	require.Len(t, callbackErrs, 2)
	assert.ErrorIs(t, callbackErrs[1], ErrNoPendingFlow)
}

func TestOIDCClient_RedirectNavigator(t *testing.T) {
	p := newFakeIdP(t)

	t.Run("none configured", func(t *testing.T) {
		client := newTestClient(t, p)
		err := client.AcquireTokenRedirect(context.Background(), models.AuthenticationParameters{})
		assert.ErrorIs(t, err, ErrNoNavigator)
	})

	t.Run("default navigator", func(t *testing.T) {
		var visited string
		client := newTestClient(t, p, WithDefaultNavigator(func(ctx context.Context, u string) error {
			visited = u
			return nil
		}))
		require.NoError(t, client.AcquireTokenRedirect(context.Background(), models.AuthenticationParameters{}))
		assert.Contains(t, visited, p.server.URL+"/authorize")
	})

	t.Run("navigation failure", func(t *testing.T) {
		client := newTestClient(t, p, WithDefaultNavigator(func(ctx context.Context, u string) error {
			return errors.New("closed")
		}))
		err := client.LoginRedirect(context.Background(), models.AuthenticationParameters{})
		require.Error(t, err)
		assert.False(t, client.GetLoginInProgress())
	})
}

func TestOIDCClient_AcquireTokenSilent(t *testing.T) {
	p := newFakeIdP(t)
	client := newTestClient(t, p)
	ctx := context.Background()

	_, err := client.AcquireTokenSilent(ctx, models.AuthenticationParameters{Scopes: []string{"api://menu/read"}})
	assert.True(t, IsUserLoginError(err))

	_, err = client.LoginPopup(ctx, models.AuthenticationParameters{})
	require.NoError(t, err)
	afterLogin := p.requests()

	// the ID token from login is still fresh
	idResp, err := client.AcquireTokenSilent(ctx, models.AuthenticationParameters{Scopes: []string{testClientID}})
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeIDToken, idResp.TokenType)
	assert.NotEmpty(t, idResp.IDToken.Raw)
	assert.Equal(t, afterLogin, p.requests())

	first, err := client.AcquireTokenSilent(ctx, models.AuthenticationParameters{Scopes: []string{"api://other/write"}})
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeAccessToken, first.TokenType)
	assert.NotEmpty(t, first.AccessToken)
	assert.Equal(t, afterLogin+1, p.requests())

	second, err := client.AcquireTokenSilent(ctx, models.AuthenticationParameters{Scopes: []string{"api://other/write"}})
	require.NoError(t, err)
	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, afterLogin+1, p.requests(), "second call is served from cache")
}

func TestOIDCClient_AcquireTokenSilentErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh rejected", func(t *testing.T) {
		p := newFakeIdP(t)
		client := newTestClient(t, p)
		_, err := client.LoginPopup(ctx, models.AuthenticationParameters{})
		require.NoError(t, err)

		p.mu.Lock()
		p.refreshError = "invalid_grant"
		p.mu.Unlock()

		_, err = client.AcquireTokenSilent(ctx, models.AuthenticationParameters{Scopes: []string{"api://x"}})
		assert.True(t, IsInteractionRequired(err))
	})

	t.Run("server error", func(t *testing.T) {
		p := newFakeIdP(t)
		client := newTestClient(t, p)
		_, err := client.LoginPopup(ctx, models.AuthenticationParameters{})
		require.NoError(t, err)

		p.mu.Lock()
		p.refreshError = "temporarily_unavailable"
		p.mu.Unlock()

		_, err = client.AcquireTokenSilent(ctx, models.AuthenticationParameters{Scopes: []string{"api://x"}})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, KindServer, authErr.Kind)
		assert.Equal(t, "temporarily_unavailable", authErr.Code)
	})

	t.Run("no refresh token", func(t *testing.T) {
		p := newFakeIdP(t)
		accounts := &memoryAccountStore{}
		require.NoError(t, accounts.Save(ctx, &models.Account{HomeAccountID: "user-1", Username: "jane@example.com"}, ""))
		client := newTestClient(t, p, WithAccountStore(accounts))

		_, err := client.AcquireTokenSilent(ctx, models.AuthenticationParameters{Scopes: []string{"api://x"}})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, KindInteractionRequired, authErr.Kind)
		assert.Equal(t, CodeNoTokensFound, authErr.Code)
	})
}

func TestOIDCClient_RestoresCachedAccount(t *testing.T) {
	p := newFakeIdP(t)
	accounts := &memoryAccountStore{}
	secrets := &memorySecretStore{}
	raw := p.idToken("")
	require.NoError(t, accounts.Save(context.Background(), &models.Account{HomeAccountID: "user-1", Username: "jane@example.com"}, raw))
	require.NoError(t, secrets.SetRefreshToken("user-1", "stale"))

	client := newTestClient(t, p, WithAccountStore(accounts), WithSecretStore(secrets))

	require.NotNil(t, client.GetAccount())
	assert.Equal(t, "jane@example.com", client.GetAccount().Username)

	resp, err := client.AcquireTokenSilent(context.Background(), models.AuthenticationParameters{Scopes: []string{testClientID}})
	require.NoError(t, err)
	assert.Equal(t, raw, resp.IDToken.Raw)
	assert.Equal(t, 0, p.requests())
}

func TestOIDCClient_Logout(t *testing.T) {
	p := newFakeIdP(t)
	accounts := &memoryAccountStore{}
	secrets := &memorySecretStore{}
	var endSession string
	client := newTestClient(t, p,
		WithAccountStore(accounts),
		WithSecretStore(secrets),
		WithDefaultNavigator(func(ctx context.Context, u string) error {
			endSession = u
			return nil
		}),
	)

	resp, err := client.LoginPopup(context.Background(), models.AuthenticationParameters{})
	require.NoError(t, err)

	require.NoError(t, client.Logout(context.Background()))

	assert.Nil(t, client.GetAccount())
	stored, _, err := accounts.GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
	refresh, _ := secrets.RefreshToken("user-1")
	assert.Empty(t, refresh)

	u, err := url.Parse(endSession)
	require.NoError(t, err)
	assert.Equal(t, "/logout", u.Path)
	assert.Equal(t, resp.IDToken.Raw, u.Query().Get("id_token_hint"))
	assert.Equal(t, testClientID, u.Query().Get("client_id"))

	_, err = client.AcquireTokenSilent(context.Background(), models.AuthenticationParameters{Scopes: []string{"api://menu/read"}})
	assert.True(t, IsUserLoginError(err))
}

func TestOIDCClient_RequestScopes(t *testing.T) {
	p := newFakeIdP(t)
	client := newTestClient(t, p)

	assert.Equal(t, []string{"openid", "profile", "offline_access"}, client.requestScopes([]string{testClientID}))
	assert.Equal(t, []string{"api://menu/read", "openid", "profile", "offline_access"}, client.requestScopes(nil))
	assert.Equal(t, []string{"openid", "api://x", "profile", "offline_access"}, client.requestScopes([]string{"openid", "api://x"}))
}

func TestOIDCClient_GetCurrentConfiguration(t *testing.T) {
	p := newFakeIdP(t)
	client := newTestClient(t, p)

	cfg := client.GetCurrentConfiguration()
	assert.Equal(t, testClientID, cfg.ClientID)
	assert.Equal(t, p.server.URL, cfg.Authority)
	assert.Equal(t, "http://127.0.0.1:0/callback", cfg.RedirectURI)
}

// claimlessAccountStore keeps only the raw ID token, like the sqlite repository
type claimlessAccountStore struct {
	memoryAccountStore
}

func (s *claimlessAccountStore) GetCurrent(ctx context.Context) (*models.Account, string, error) {
	account, raw, err := s.memoryAccountStore.GetCurrent(ctx)
	if account != nil {
		account.IDTokenClaims = nil
	}
	return account, raw, err
}

func TestOIDCClient_RestoreRebuildsClaims(t *testing.T) {
	p := newFakeIdP(t)
	accounts := &claimlessAccountStore{}
	require.NoError(t, accounts.Save(context.Background(), &models.Account{HomeAccountID: "user-1", Username: "jane@example.com"}, p.idToken("")))

	client := newTestClient(t, p, WithAccountStore(accounts))

	account := client.GetAccount()
	require.NotNil(t, account)
	assert.Equal(t, "user-1", account.IDTokenClaims["sub"])
	assert.Equal(t, "Jane", account.IDTokenClaims["name"])

	resp, err := client.AcquireTokenSilent(context.Background(), models.AuthenticationParameters{Scopes: []string{testClientID}})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.Account.IDTokenClaims["sub"])
}

func TestOIDCClient_ExpiredRedirectIsNotInProgress(t *testing.T) {
	p := newFakeIdP(t)
	cfg := p.config()
	cfg.PopupTimeout = 50 * time.Millisecond
	client, err := NewOIDCClient(context.Background(), cfg,
		WithKeySet(&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&p.key.PublicKey}}),
		WithLogger(logger.NewNope()),
		WithDefaultNavigator(func(context.Context, string) error { return nil }),
	)
	require.NoError(t, err)

	require.NoError(t, client.LoginRedirect(context.Background(), models.AuthenticationParameters{}))
	assert.True(t, client.GetLoginInProgress())

	// well before the cache janitor runs
	time.Sleep(100 * time.Millisecond)
	assert.False(t, client.GetLoginInProgress())
}
