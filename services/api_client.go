package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blogem/authsession/models"
)

// TokenSource supplies access tokens for outgoing API calls
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// ProviderTokenSource resolves tokens through a provider's silent-then-interactive renewal
type ProviderTokenSource struct {
	Provider *AuthenticationProvider
	// Params overrides the provider's baseline parameters when set
	Params *models.AuthenticationParameters
}

func (s ProviderTokenSource) AccessToken(ctx context.Context) (string, error) {
	resp, err := s.Provider.GetAccessToken(ctx, s.Params)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// APIClient sends authenticated requests to a JSON API
type APIClient struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
}

// NewAPIClient creates a client for baseURL using tokens for authorization
func NewAPIClient(baseURL string, tokens TokenSource) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Tokens:     tokens,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Get issues a GET for path and returns the raw response. The caller closes the body.
func (c *APIClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path)
}

// Do issues a bodiless request with the bearer token and JSON content type
func (c *APIClient) Do(ctx context.Context, method, path string) (*http.Response, error) {
	token, err := c.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	return resp, nil
}
