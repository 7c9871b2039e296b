package models

import "maps"

// Account is the cached identity of the signed-in user
type Account struct {
	HomeAccountID string         `json:"home_account_id"`
	Username      string         `json:"username"`
	Name          string         `json:"name,omitempty"`
	Environment   string         `json:"environment,omitempty"`
	IDTokenClaims map[string]any `json:"id_token_claims,omitempty"`
}

// Clone returns a copy of the account that shares no maps with the original
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.IDTokenClaims = maps.Clone(a.IDTokenClaims)
	return &c
}

// AccountInfo is the minimal identity and token material kept for the current user.
// The ID token and access token fields are updated independently.
type AccountInfo struct {
	Account        *Account `json:"account"`
	JWTIDToken     string   `json:"jwt_id_token,omitempty"`
	JWTAccessToken string   `json:"jwt_access_token,omitempty"`
}

// Clone returns a shallow copy; a nil receiver yields nil
func (a *AccountInfo) Clone() *AccountInfo {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Merge applies a token response onto the account info. Only the field matching the
// response's token type changes; an empty record adopts the response's account.
func (a *AccountInfo) Merge(resp *AuthResponse) *AccountInfo {
	var out AccountInfo
	if a != nil {
		out = *a
	} else if resp != nil {
		out.Account = resp.Account
	}
	if resp == nil {
		return &out
	}

	switch resp.TokenType {
	case TokenTypeIDToken:
		out.JWTIDToken = resp.IDToken.Raw
	case TokenTypeAccessToken:
		out.JWTAccessToken = resp.AccessToken
	}
	return &out
}
