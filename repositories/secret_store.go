package repositories

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keychain service name refresh tokens are stored under
const DefaultKeyringService = "authsession"

// ErrSecretNotFound is returned when no refresh token is stored for an account
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore keeps refresh tokens in the OS keychain
type SecretStore struct {
	service string
}

// NewSecretStore creates a keychain-backed store under service
func NewSecretStore(service string) *SecretStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &SecretStore{service: service}
}

func refreshTokenKey(account string) string {
	return "refresh_token:" + account
}

// SetRefreshToken stores the refresh token for account
func (s *SecretStore) SetRefreshToken(account, token string) error {
	if err := keyring.Set(s.service, refreshTokenKey(account), token); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// RefreshToken returns the stored refresh token for account
func (s *SecretStore) RefreshToken(account string) (string, error) {
	token, err := keyring.Get(s.service, refreshTokenKey(account))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	return token, nil
}

// DeleteRefreshToken removes the refresh token for account; a missing entry is not an error
func (s *SecretStore) DeleteRefreshToken(account string) error {
	if err := keyring.Delete(s.service, refreshTokenKey(account)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}
