package session

import (
	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
	"github.com/blogem/authsession/services"
)

// State is an immutable snapshot of the session as observed through the provider's listeners
type State struct {
	IsReady             bool                       `json:"is_ready"`
	AuthenticationState models.AuthenticationState `json:"authentication_state"`
	Loading             bool                       `json:"loading"`
	AccountInfo         *models.AccountInfo        `json:"account_info,omitempty"`
	Error               *authenticator.AuthError   `json:"error,omitempty"`

	Provider *services.AuthenticationProvider `json:"-"`
}

// InitialState is the state before any provider exists
func InitialState() State {
	return State{AuthenticationState: models.Unauthenticated}
}

// ActionType names a state transition
type ActionType string

const (
	ActionInitProvider      ActionType = "INIT_PROVIDER"
	ActionInitState         ActionType = "INIT_STATE"
	ActionAuthStateChange   ActionType = "AUTH_STATE_CHANGE"
	ActionAccountInfoChange ActionType = "ACCOUNT_INFO_CHANGE"
	ActionError             ActionType = "ERROR"
)

// Action is a state transition with its payload. The payload type depends on Type:
// *services.AuthenticationProvider, models.InitState, models.AuthenticationState,
// *models.AccountInfo or *authenticator.AuthError.
type Action struct {
	Type    ActionType
	Payload any
}

// Reduce applies a to s and returns the new state. s is never modified; unknown
// actions and mistyped payloads return s unchanged.
func Reduce(s State, a Action) State {
	next := s
	switch a.Type {
	case ActionInitProvider:
		if p, ok := a.Payload.(*services.AuthenticationProvider); ok {
			next.Provider = p
		}
	case ActionInitState:
		if init, ok := a.Payload.(models.InitState); ok {
			next.IsReady = init == models.InitCompleted
		}
	case ActionAuthStateChange:
		if state, ok := a.Payload.(models.AuthenticationState); ok {
			next.AuthenticationState = state
			next.Loading = state == models.InProgress
		}
	case ActionAccountInfoChange:
		info, _ := a.Payload.(*models.AccountInfo)
		next.AccountInfo = info.Clone()
	case ActionError:
		err, _ := a.Payload.(*authenticator.AuthError)
		next.Error = err.Clone()
	}
	return next
}

// IsAuthenticated reports whether the state is Authenticated
func (s State) IsAuthenticated() bool {
	return s.AuthenticationState == models.Authenticated
}
