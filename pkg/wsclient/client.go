// Package wsclient maintains one logical connection to the realtime
// endpoint: it authenticates, decodes typed envelopes, dispatches them to
// registered handlers, and optionally reconnects with capped exponential
// backoff.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

var (
	// ErrNotConnected is returned by Send while the client is not open.
	// Messages are never buffered for later delivery.
	ErrNotConnected = errors.New("websocket is not connected")
	// ErrConnectionLost marks a terminal drop: the connection closed and the
	// reconnect budget (possibly zero) is exhausted.
	ErrConnectionLost = errors.New("websocket connection lost")
)

// Envelope mirrors the server wire format. Data stays raw so each handler
// decodes its own payload type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Handler consumes the payload of one message type.
type Handler func(data json.RawMessage)

// State is the client's connection lifecycle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config controls the connection. MaxReconnectAttempts is deliberately an
// explicit setting: zero disables automatic reconnection entirely, so a
// dropped connection stays down until Connect is called again.
type Config struct {
	URL   string
	Token string

	MaxReconnectAttempts int
	BackoffBase          time.Duration
	BackoffCap           time.Duration

	Logger *slog.Logger
}

// Client is a single logical connection to the realtime endpoint. All
// methods are safe for concurrent use.
type Client struct {
	cfg Config

	mu             sync.Mutex
	state          State
	sock           *websocket.Conn
	handlers       map[string][]Handler
	ready          chan struct{}
	lastPong       time.Time
	err            error
	attempts       int
	closedByUser   bool
	reconnectTimer *time.Timer
}

func New(cfg Config) *Client {
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		cfg:      cfg,
		state:    StateIdle,
		handlers: make(map[string][]Handler),
	}
}

// On registers a handler for a message type. Built-in types (connected,
// pong) are consumed internally; envelopes with no registered handler are
// ignored.
func (c *Client) On(msgType string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = append(c.handlers[msgType], h)
}

// Connect dials the endpoint and waits for the server's connected
// acknowledgement. Calling Connect on an already open client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateOpen || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.closedByUser = false
	c.err = nil
	c.attempts = 0
	ready := make(chan struct{})
	c.ready = ready
	c.mu.Unlock()

	if err := c.dial(ctx); err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.err = err
		c.mu.Unlock()
		return err
	}

	select {
	case <-ready:
		if c.State() != StateOpen {
			return ErrNotConnected
		}
		return nil
	case <-ctx.Done():
		c.Disconnect()
		return ctx.Err()
	}
}

func (c *Client) dial(ctx context.Context) error {
	opts := &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": {"Bearer " + c.cfg.Token}},
	}
	sock, _, err := websocket.Dial(ctx, c.cfg.URL, opts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closedByUser {
		c.mu.Unlock()
		_ = sock.Close(websocket.StatusNormalClosure, "client disconnected")
		return ErrNotConnected
	}
	c.sock = sock
	c.mu.Unlock()

	go c.readLoop(sock)
	return nil
}

// readLoop decodes envelopes until the connection drops, then hands off to
// the reconnect policy.
func (c *Client) readLoop(sock *websocket.Conn) {
	ctx := context.Background()
	for {
		var env Envelope
		if err := wsjson.Read(ctx, sock, &env); err != nil {
			c.onDisconnect(err)
			return
		}
		switch env.Type {
		case "connected":
			c.markOpen()
		case "pong":
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		default:
			c.dispatch(env)
		}
	}
}

func (c *Client) markOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateOpen
	c.attempts = 0
	if c.ready != nil {
		close(c.ready)
		c.ready = nil
	}
	c.cfg.Logger.Info("websocket connected")
}

func (c *Client) dispatch(env Envelope) {
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[env.Type]...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(env.Data)
	}
}

// onDisconnect runs the reconnect policy after an unexpected drop. A
// user-initiated Disconnect never reconnects.
func (c *Client) onDisconnect(cause error) {
	c.mu.Lock()
	c.sock = nil
	if c.closedByUser {
		c.state = StateClosed
		c.mu.Unlock()
		return
	}

	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.state = StateClosed
		c.err = ErrConnectionLost
		// Release a Connect call still waiting for the ack.
		if c.ready != nil {
			close(c.ready)
			c.ready = nil
		}
		c.mu.Unlock()
		c.cfg.Logger.Warn("websocket closed, reconnect budget exhausted", "cause", cause)
		return
	}

	delay := c.backoff(c.attempts)
	c.attempts++
	attempt := c.attempts
	c.state = StateConnecting
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.cfg.Logger.Info("websocket reconnecting",
			"attempt", attempt, "max", c.cfg.MaxReconnectAttempts)
		if err := c.dial(context.Background()); err != nil {
			c.onDisconnect(err)
		}
	})
	c.mu.Unlock()
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.BackoffBase << attempt
	if delay > c.cfg.BackoffCap || delay <= 0 {
		delay = c.cfg.BackoffCap
	}
	return delay
}

// Send writes one envelope. It fails with ErrNotConnected unless the client
// is open.
func (c *Client) Send(ctx context.Context, msgType string, data any) error {
	c.mu.Lock()
	sock := c.sock
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || sock == nil {
		return ErrNotConnected
	}
	return wsjson.Write(ctx, sock, map[string]any{"type": msgType, "data": data})
}

// Ping asks the server for a pong; LastPong observes the reply.
func (c *Client) Ping(ctx context.Context) error {
	return c.Send(ctx, "ping", nil)
}

// Subscribe records interest in logical channels on the server.
func (c *Client) Subscribe(ctx context.Context, channels ...string) error {
	return c.Send(ctx, "subscribe", map[string]any{"channels": channels})
}

// Disconnect closes the connection and cancels any pending reconnect. Safe
// to call in any state, any number of times.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closedByUser = true
	c.state = StateClosed
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	sock := c.sock
	c.sock = nil
	if c.ready != nil {
		close(c.ready)
		c.ready = nil
	}
	c.mu.Unlock()

	if sock != nil {
		_ = sock.Close(websocket.StatusNormalClosure, "client disconnected")
	}
}

// State reports the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err reports the terminal connection error, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LastPong reports when the last pong arrived.
func (c *Client) LastPong() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPong
}
