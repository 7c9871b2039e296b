package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/blogem/authsession/models"
)

// ErrMissingAccessToken is returned when a menu item client is built without a token
var ErrMissingAccessToken = errors.New("access token needs to be provided for the API calls")

// MenuItemClient reads menu items from the menu API
type MenuItemClient struct {
	api *APIClient
}

// NewMenuItemClient creates a client that authorizes every call with token
func NewMenuItemClient(baseURL, token string) (*MenuItemClient, error) {
	if token == "" {
		return nil, ErrMissingAccessToken
	}
	return &MenuItemClient{api: NewAPIClient(baseURL, StaticToken(token))}, nil
}

// BuildMenuItemClient resolves a token from tokens and creates a client with it
func BuildMenuItemClient(ctx context.Context, baseURL string, tokens TokenSource) (*MenuItemClient, error) {
	token, err := tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return NewMenuItemClient(baseURL, token)
}

// GetMenuItems fetches all menu items
func (c *MenuItemClient) GetMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	resp, err := c.api.Get(ctx, "/menuitems")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("menu items request failed with status %d: %s", resp.StatusCode, body)
	}

	var items []models.MenuItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}
	return items, nil
}
