package services

import (
	"sync"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
	"github.com/google/uuid"
)

// Subscription is the opaque handle returned when a listener is registered
type Subscription string

// NewSubscription returns a fresh, unique subscription handle
func NewSubscription() Subscription {
	return Subscription(uuid.NewString())
}

// Listener signatures for the four observable values
type (
	AuthenticationStateHandler func(state models.AuthenticationState)
	AccountInfoHandler         func(info *models.AccountInfo)
	ErrorHandler               func(err *authenticator.AuthError)
	InitStateHandler           func(state models.InitState)
)

type listenerEntry[T any] struct {
	id Subscription
	fn func(T)
}

// listenerSet is a registration table keyed by subscription handle.
// Listeners are notified in registration order.
type listenerSet[T any] struct {
	mu      sync.Mutex
	entries []listenerEntry[T]
}

// add registers fn under id. Re-registering a known id is a no-op and returns false.
func (s *listenerSet[T]) add(id Subscription, fn func(T)) bool {
	if fn == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.id == id {
			return false
		}
	}
	s.entries = append(s.entries, listenerEntry[T]{id: id, fn: fn})
	return true
}

// remove drops the listener registered under id; unknown ids are ignored
func (s *listenerSet[T]) remove(id Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *listenerSet[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// notify calls every listener with v outside the set's lock
func (s *listenerSet[T]) notify(v T) {
	s.mu.Lock()
	fns := make([]func(T), len(s.entries))
	for i, e := range s.entries {
		fns[i] = e.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// listenerRegistry groups the four listener kinds of a provider
type listenerRegistry struct {
	state       listenerSet[models.AuthenticationState]
	accountInfo listenerSet[*models.AccountInfo]
	errors      listenerSet[*authenticator.AuthError]
	initState   listenerSet[models.InitState]
}
