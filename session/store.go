package session

import (
	"context"
	"errors"
	"sync"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
	"github.com/blogem/authsession/services"
)

// ErrNotInitialized is returned when the session is used before Init
var ErrNotInitialized = errors.New("session is not initialized")

// InitOptions configure the provider a Store constructs
type InitOptions struct {
	Client          authenticator.IdentityClient
	Parameters      models.AuthenticationParameters
	Options         models.ProviderOptions
	ProviderOptions []services.ProviderOption
}

// Store holds the single provider of a process and mirrors its listeners into State
type Store struct {
	opts InitOptions

	once    sync.Once
	initErr error

	mu        sync.Mutex
	state     State
	observers map[int]func(State)
	nextObs   int

	stateSub, infoSub, errorSub, initSub services.Subscription
}

// NewStore creates a store; the provider is built by Init
func NewStore(opts InitOptions) *Store {
	return &Store{
		opts:      opts,
		state:     InitialState(),
		observers: make(map[int]func(State)),
	}
}

// Init constructs the provider exactly once, attaches the store to all four listener
// kinds and runs provider initialization. Later calls return the first call's result.
func (s *Store) Init(ctx context.Context) error {
	s.once.Do(func() {
		provider, err := services.NewAuthenticationProvider(s.opts.Client, s.opts.Parameters, s.opts.Options, s.opts.ProviderOptions...)
		if err != nil {
			s.initErr = err
			return
		}

		s.infoSub = provider.RegisterAccountInfoHandler(func(info *models.AccountInfo) {
			s.dispatch(Action{Type: ActionAccountInfoChange, Payload: info})
		})
		s.stateSub = provider.RegisterAuthenticationStateHandler(func(state models.AuthenticationState) {
			s.dispatch(Action{Type: ActionAuthStateChange, Payload: state})
		})
		s.errorSub = provider.RegisterErrorHandler(func(err *authenticator.AuthError) {
			s.dispatch(Action{Type: ActionError, Payload: err})
		})
		s.initSub = provider.RegisterInitStateHandler(func(state models.InitState) {
			s.dispatch(Action{Type: ActionInitState, Payload: state})
		})
		s.dispatch(Action{Type: ActionInitProvider, Payload: provider})

		provider.Initialize(ctx)
	})
	return s.initErr
}

// dispatch reduces a into the state and notifies observers outside the lock
func (s *Store) dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state
	observers := make([]func(State), 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Provider returns the provider, or nil before Init
func (s *Store) Provider() *services.AuthenticationProvider {
	return s.State().Provider
}

// Subscribe calls fn with every new snapshot until the returned func is called
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Close detaches the store from the provider and drops all observers
func (s *Store) Close() {
	if p := s.Provider(); p != nil {
		p.UnregisterAuthenticationStateHandler(s.stateSub)
		p.UnregisterAccountInfoHandler(s.infoSub)
		p.UnregisterErrorHandler(s.errorSub)
		p.UnregisterInitStateHandler(s.initSub)
	}

	s.mu.Lock()
	s.observers = make(map[int]func(State))
	s.mu.Unlock()
}

// Session returns the consumer view of the store
func (s *Store) Session() Session {
	return Session{store: s}
}

var (
	defaultMu    sync.Mutex
	defaultStore *Store
)

// Init creates the process-wide store on first use and initializes it.
// Options passed after the first call are ignored.
func Init(ctx context.Context, opts InitOptions) (*Store, error) {
	defaultMu.Lock()
	if defaultStore == nil {
		defaultStore = NewStore(opts)
	}
	store := defaultStore
	defaultMu.Unlock()

	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Default returns the process-wide store, or nil before Init
func Default() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultStore
}

// Teardown closes and forgets the process-wide store
func Teardown() {
	defaultMu.Lock()
	store := defaultStore
	defaultStore = nil
	defaultMu.Unlock()

	if store != nil {
		store.Close()
	}
}

// Use returns a view of the process-wide store
func Use() Session {
	return Session{store: Default()}
}
