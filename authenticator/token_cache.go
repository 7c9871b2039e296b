package authenticator

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/blogem/authsession/models"
	gocache "github.com/patrickmn/go-cache"
)

// expirySkew is subtracted from token lifetimes so nearly expired tokens are renewed
const expirySkew = 5 * time.Minute

// AccountStore persists the signed-in account between runs.
// GetCurrent returns nil and no error when nothing is cached.
type AccountStore interface {
	GetCurrent(ctx context.Context) (*models.Account, string, error)
	Save(ctx context.Context, account *models.Account, rawIDToken string) error
	Delete(ctx context.Context, homeAccountID string) error
}

// SecretStore keeps refresh tokens out of the account store
type SecretStore interface {
	SetRefreshToken(account, token string) error
	RefreshToken(account string) (string, error)
	DeleteRefreshToken(account string) error
}

// tokenCache holds access tokens keyed by their scope set
type tokenCache struct {
	c *gocache.Cache
}

func newTokenCache() *tokenCache {
	return &tokenCache{c: gocache.New(time.Hour, 10*time.Minute)}
}

// scopeKey normalizes a scope list so ordering and duplicates do not matter
func scopeKey(scopes []string) string {
	s := slices.Clone(scopes)
	slices.Sort(s)
	return strings.Join(slices.Compact(s), " ")
}

func (t *tokenCache) get(scopes []string) (*models.AuthResponse, bool) {
	v, ok := t.c.Get(scopeKey(scopes))
	if !ok {
		return nil, false
	}
	resp, ok := v.(*models.AuthResponse)
	return resp, ok
}

func (t *tokenCache) set(scopes []string, resp *models.AuthResponse, now time.Time) {
	ttl := resp.ExpiresOn.Sub(now) - expirySkew
	if resp.ExpiresOn.IsZero() || ttl <= 0 {
		return
	}
	t.c.Set(scopeKey(scopes), resp, ttl)
}

func (t *tokenCache) flush() {
	t.c.Flush()
}

// memoryAccountStore is used when no persistent store is configured
type memoryAccountStore struct {
	mu      sync.Mutex
	account *models.Account
	rawID   string
}

func (s *memoryAccountStore) GetCurrent(ctx context.Context) (*models.Account, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account.Clone(), s.rawID, nil
}

func (s *memoryAccountStore) Save(ctx context.Context, account *models.Account, rawIDToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account.Clone()
	s.rawID = rawIDToken
	return nil
}

func (s *memoryAccountStore) Delete(ctx context.Context, homeAccountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = nil
	s.rawID = ""
	return nil
}

// memorySecretStore is used when no keyring is configured
type memorySecretStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (s *memorySecretStore) SetRefreshToken(account, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = make(map[string]string)
	}
	s.tokens[account] = token
	return nil
}

func (s *memorySecretStore) RefreshToken(account string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[account], nil
}

func (s *memorySecretStore) DeleteRefreshToken(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, account)
	return nil
}
