package userctx

import "context"

// Context key type
type contextKey string

const (
	usernameKey  contextKey = "username"
	AccountIDKey contextKey = "account_id"
)

// SetUsername adds the signed-in username to the context
func SetUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// GetUsername retrieves the username from the context
func GetUsername(ctx context.Context) string {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok {
		return "anonymous"
	}
	return username
}

// SetAccountID adds the home account ID to the context
func SetAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, AccountIDKey, id)
}

// GetAccountID retrieves the home account ID from the context
func GetAccountID(ctx context.Context) string {
	if accountID := ctx.Value(AccountIDKey); accountID != nil {
		if id, ok := accountID.(string); ok {
			return id
		}
	}
	return ""
}
