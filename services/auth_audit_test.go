package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/authsession/authenticator"
	"github.com/blogem/authsession/authenticator/mocks"
	"github.com/blogem/authsession/logger"
	"github.com/blogem/authsession/models"
)

type memoryEventRepo struct {
	mu     sync.Mutex
	events []models.AuthEvent
	err    error
}

func (r *memoryEventRepo) Create(_ context.Context, event *models.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryEventRepo) ListRecent(_ context.Context, limit int) ([]models.AuthEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuthEvent(nil), r.events...), nil
}

func TestAuthAuditor_RecordsStateChangesAndErrors(t *testing.T) {
	client := mocks.NewMockIdentityClient(t)
	client.EXPECT().GetCurrentConfiguration().Return(models.ClientConfiguration{ClientID: testClientID, RedirectURI: testRedirectURI}).Maybe()
	client.EXPECT().LoginPopup(mock.Anything, mock.Anything).
		Return(nil, authenticator.NewAuthError(authenticator.KindClientAuth, "user_cancelled", "", nil)).Once()

	p, err := NewAuthenticationProvider(client, models.AuthenticationParameters{}, models.ProviderOptions{}, WithLogger(logger.NewNope()))
	require.NoError(t, err)

	repo := &memoryEventRepo{}
	auditor := NewAuthAuditor(repo, p, logger.NewNope())

	_ = p.Login(context.Background(), nil)
	auditor.Close()

	events, _ := repo.ListRecent(context.Background(), 0)
	var kinds []models.AuthEventKind
	var codes []string
	for _, e := range events {
		kinds = append(kinds, e.Kind)
		if e.ErrorCode != "" {
			codes = append(codes, e.ErrorCode)
		}
		assert.False(t, e.Timestamp.IsZero())
	}

	// replayed state + InProgress + Unauthenticated, and the popup error
	assert.Len(t, events, 4)
	assert.Contains(t, kinds, models.AuthEventError)
	assert.Equal(t, []string{"user_cancelled"}, codes)

	// detached auditors record nothing further
	p.setAuthenticationState(models.InProgress)
	events, _ = repo.ListRecent(context.Background(), 0)
	assert.Len(t, events, 4)
}

func TestAuthAuditor_RepositoryFailureIsLogged(t *testing.T) {
	client := mocks.NewMockIdentityClient(t)
	client.EXPECT().GetCurrentConfiguration().Return(models.ClientConfiguration{}).Maybe()

	p, err := NewAuthenticationProvider(client, models.AuthenticationParameters{}, models.ProviderOptions{}, WithLogger(logger.NewNope()))
	require.NoError(t, err)

	repo := &memoryEventRepo{err: errors.New("disk full")}
	auditor := NewAuthAuditor(repo, p, logger.NewNope())
	p.setAuthenticationState(models.Authenticated)
	auditor.Close()

	events, _ := repo.ListRecent(context.Background(), 0)
	assert.Empty(t, events)
}
