package models

import "time"

// AuthEventKind classifies an audit row
type AuthEventKind string

const (
	AuthEventStateChange AuthEventKind = "state_change"
	AuthEventError       AuthEventKind = "error"
)

// AuthEvent represents a single authentication audit entry
type AuthEvent struct {
	ID        string
	Timestamp time.Time
	AccountID string
	Kind      AuthEventKind
	State     AuthenticationState
	ErrorCode string
	Message   string
}
