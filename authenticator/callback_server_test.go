package authenticator

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/authsession/logger"
)

func TestCallbackServer_ForwardsFirstResponse(t *testing.T) {
	cs, err := startCallbackServer("http://127.0.0.1:0/auth/callback", logger.NewNope())
	require.NoError(t, err)
	defer cs.Close()

	assert.True(t, strings.HasPrefix(cs.redirectURI, "http://127.0.0.1:"))
	assert.True(t, strings.HasSuffix(cs.redirectURI, "/auth/callback"))
	assert.NotContains(t, cs.redirectURI, ":0/")

	resp, err := http.Get(cs.redirectURI + "?code=first&state=s")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Login complete")

	resp, err = http.Get(cs.redirectURI + "?code=second&state=s")
	require.NoError(t, err)
	resp.Body.Close()

	query, err := cs.wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", query.Get("code"))
}

func TestCallbackServer_ErrorResponse(t *testing.T) {
	cs, err := startCallbackServer("http://127.0.0.1:0/callback", logger.NewNope())
	require.NoError(t, err)
	defer cs.Close()

	resp, err := http.Get(cs.redirectURI + "?error=access_denied")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	query, err := cs.wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "access_denied", query.Get("error"))
}

func TestCallbackServer_Wait(t *testing.T) {
	cs, err := startCallbackServer("http://127.0.0.1:0/callback", logger.NewNope())
	require.NoError(t, err)
	defer cs.Close()

	_, err = cs.wait(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrPopupTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cs.wait(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallbackServer_FallsBackWhenPortTaken(t *testing.T) {
	first, err := startCallbackServer("http://127.0.0.1:0/callback", logger.NewNope())
	require.NoError(t, err)
	defer first.Close()

	second, err := startCallbackServer(first.redirectURI, logger.NewNope())
	require.NoError(t, err)
	defer second.Close()

	assert.NotEqual(t, first.redirectURI, second.redirectURI)
}

func TestCallbackServer_InvalidURL(t *testing.T) {
	_, err := startCallbackServer("://bad", logger.NewNope())
	assert.Error(t, err)
}
