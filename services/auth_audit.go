package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/models"
	"github.com/blogem/authsession/repositories"
)

// AuthAuditor records state changes and errors of a provider as auth events
type AuthAuditor struct {
	repo     repositories.AuthEventRepository
	provider *AuthenticationProvider
	logger   *slog.Logger

	stateSub Subscription
	errorSub Subscription
	wg       sync.WaitGroup
}

// NewAuthAuditor attaches an auditor to provider. Call Close to detach it.
func NewAuthAuditor(repo repositories.AuthEventRepository, provider *AuthenticationProvider, logger *slog.Logger) *AuthAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	a := &AuthAuditor{repo: repo, provider: provider, logger: logger}

	a.stateSub = provider.RegisterAuthenticationStateHandler(func(state models.AuthenticationState) {
		a.record(&models.AuthEvent{
			Kind:  models.AuthEventStateChange,
			State: state,
		})
	})
	a.errorSub = provider.RegisterErrorHandler(func(err *authenticator.AuthError) {
		if err == nil {
			return
		}
		a.record(&models.AuthEvent{
			Kind:      models.AuthEventError,
			State:     provider.AuthenticationState(),
			ErrorCode: err.Code,
			Message:   err.Error(),
		})
	})

	return a
}

// record writes the event asynchronously to avoid blocking listener fan-out
func (a *AuthAuditor) record(event *models.AuthEvent) {
	event.Timestamp = time.Now().UTC()
	if info := a.provider.GetAccountInfo(); info != nil && info.Account != nil {
		event.AccountID = info.Account.HomeAccountID
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.repo.Create(context.Background(), event); err != nil {
			a.logger.Error("failed to record auth event",
				slog.String("kind", string(event.Kind)),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Close detaches the auditor and waits for pending writes
func (a *AuthAuditor) Close() {
	a.provider.UnregisterAuthenticationStateHandler(a.stateSub)
	a.provider.UnregisterErrorHandler(a.errorSub)
	a.wg.Wait()
}
