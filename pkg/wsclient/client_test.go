package wsclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopgenie/internal/auth"
	"shopgenie/internal/ws"
	"shopgenie/pkg/wsclient"
)

type clientEnv struct {
	registry *ws.Registry
	srv      *httptest.Server
	tokens   *auth.TokenService
}

func newClientEnv(t *testing.T) *clientEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tokens := auth.NewTokenService("client-test-key", "shopgenie-test")
	registry := ws.NewRegistry(8, log, nil)
	srv := httptest.NewServer(ws.NewHandler(registry, tokens, log, time.Second))
	t.Cleanup(srv.Close)
	return &clientEnv{registry: registry, srv: srv, tokens: tokens}
}

func (env *clientEnv) url() string {
	return "ws" + strings.TrimPrefix(env.srv.URL, "http")
}

func (env *clientEnv) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := env.tokens.Generate(userID, role, "", time.Hour)
	require.NoError(t, err)
	return token
}

func TestConnectAndDisconnect(t *testing.T) {
	env := newClientEnv(t)
	client := wsclient.New(wsclient.Config{
		URL:   env.url(),
		Token: env.token(t, "u1", "staff"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	assert.Equal(t, wsclient.StateOpen, client.State())

	require.Eventually(t, func() bool {
		return env.registry.Connections("u1") == 1
	}, time.Second, 5*time.Millisecond)

	client.Disconnect()
	client.Disconnect() // safe to repeat
	assert.Equal(t, wsclient.StateClosed, client.State())

	require.Eventually(t, func() bool {
		return env.registry.Size() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestConnectRejectedToken(t *testing.T) {
	env := newClientEnv(t)
	client := wsclient.New(wsclient.Config{
		URL:   env.url(),
		Token: "garbage",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Connect(ctx)
	require.Error(t, err)
	assert.Equal(t, wsclient.StateClosed, client.State())
	assert.Equal(t, 0, env.registry.Size())
}

func TestSendWhileClosed(t *testing.T) {
	client := wsclient.New(wsclient.Config{URL: "ws://127.0.0.1:0", Token: "t"})

	err := client.Send(context.Background(), "ping", nil)
	assert.ErrorIs(t, err, wsclient.ErrNotConnected)
}

func TestHandlerDispatch(t *testing.T) {
	env := newClientEnv(t)
	client := wsclient.New(wsclient.Config{
		URL:   env.url(),
		Token: env.token(t, "u1", "staff"),
	})

	var mu sync.Mutex
	var got []string
	client.On("notification", func(data json.RawMessage) {
		var event struct {
			Title string `json:"title"`
		}
		require.NoError(t, json.Unmarshal(data, &event))
		mu.Lock()
		got = append(got, event.Title)
		mu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	env.registry.BroadcastNotification(ws.NotificationEvent{
		ID: "n1", Title: "Hello", Type: "test", UserID: "u1",
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "Hello"
	}, time.Second, 5*time.Millisecond)
}

func TestPingUpdatesLastPong(t *testing.T) {
	env := newClientEnv(t)
	client := wsclient.New(wsclient.Config{
		URL:   env.url(),
		Token: env.token(t, "u1", "staff"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	require.True(t, client.LastPong().IsZero())
	require.NoError(t, client.Ping(ctx))

	require.Eventually(t, func() bool {
		return !client.LastPong().IsZero()
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribe(t *testing.T) {
	env := newClientEnv(t)
	client := wsclient.New(wsclient.Config{
		URL:   env.url(),
		Token: env.token(t, "u1", "staff"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	require.NoError(t, client.Subscribe(ctx, "orders", "inventory"))
}

func TestNoReconnectByDefault(t *testing.T) {
	env := newClientEnv(t)
	client := wsclient.New(wsclient.Config{
		URL:   env.url(),
		Token: env.token(t, "u1", "staff"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))

	// The server going away is a terminal drop when reconnection is off.
	env.srv.CloseClientConnections()

	require.Eventually(t, func() bool {
		return client.State() == wsclient.StateClosed
	}, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, client.Err(), wsclient.ErrConnectionLost)

	err := client.Send(ctx, "ping", nil)
	assert.ErrorIs(t, err, wsclient.ErrNotConnected)
}

func TestReconnectAfterDrop(t *testing.T) {
	env := newClientEnv(t)
	client := wsclient.New(wsclient.Config{
		URL:                  env.url(),
		Token:                env.token(t, "u1", "staff"),
		MaxReconnectAttempts: 3,
		BackoffBase:          10 * time.Millisecond,
		BackoffCap:           50 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	env.srv.CloseClientConnections()

	require.Eventually(t, func() bool {
		return client.State() == wsclient.StateOpen && env.registry.Connections("u1") == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.NoError(t, client.Err())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", wsclient.StateIdle.String())
	assert.Equal(t, "connecting", wsclient.StateConnecting.String())
	assert.Equal(t, "open", wsclient.StateOpen.String())
	assert.Equal(t, "closed", wsclient.StateClosed.String())
}
