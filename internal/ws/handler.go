package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"shopgenie/internal/auth"
)

// TokenValidator validates the bearer credential presented at connect time.
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// Handler upgrades /ws requests, authenticates them, and runs the connection
// lifecycle: Connecting -> Authenticating -> Open -> Closed. An
// unauthenticated connection is closed with 1008 before it ever enters the
// registry.
type Handler struct {
	registry     *Registry
	tokens       TokenValidator
	logger       *slog.Logger
	writeTimeout time.Duration
}

func NewHandler(registry *Registry, tokens TokenValidator, logger *slog.Logger, writeTimeout time.Duration) *Handler {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Handler{
		registry:     registry,
		tokens:       tokens,
		logger:       logger,
		writeTimeout: writeTimeout,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	token := bearerToken(r)
	if token == "" {
		h.registry.metrics.authFailed()
		_ = sock.Close(websocket.StatusPolicyViolation, "authentication required")
		return
	}

	claims, err := h.tokens.Validate(token)
	if err != nil {
		h.registry.metrics.authFailed()
		h.logger.Warn("websocket authentication failed", "error", err)
		_ = sock.Close(websocket.StatusPolicyViolation, "authentication failed")
		return
	}

	c := newConn(claims.UserID, claims.Role, claims.ShopDomain, h.registry.buffer)
	h.registry.add(c)
	defer func() {
		c.close()
		h.registry.remove(c)
		h.logger.Debug("websocket disconnected", "user_id", c.UserID)
	}()

	h.logger.Info("websocket authenticated", "user_id", c.UserID, "role", c.Role)

	ctx := r.Context()

	if err := h.write(ctx, sock, Envelope{
		Type: TypeConnected,
		Data: map[string]string{"message": "WebSocket connected successfully"},
	}); err != nil {
		_ = sock.Close(websocket.StatusNormalClosure, "write_failed")
		return
	}

	go h.writeLoop(ctx, sock, c)
	h.readLoop(ctx, sock, c)
}

// writeLoop drains the connection's outbound queue. Each write carries its
// own timeout so a stalled peer only costs this connection, not the
// broadcaster.
func (h *Handler) writeLoop(ctx context.Context, sock *websocket.Conn, c *Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			_ = sock.Close(websocket.StatusNormalClosure, "closed")
			return
		case env := <-c.send:
			if err := h.write(ctx, sock, env); err != nil {
				c.close()
				_ = sock.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, sock *websocket.Conn, c *Conn) {
	for {
		var env Envelope
		if err := wsjson.Read(ctx, sock, &env); err != nil {
			return
		}
		switch env.Type {
		case TypePing:
			c.enqueue(Envelope{Type: TypePong, Data: map[string]int64{"timestamp": time.Now().UnixMilli()}})
		case TypeSubscribe:
			c.subscribe(subscribeChannels(env.Data)...)
			h.logger.Debug("subscription recorded", "user_id", c.UserID, "channels", c.Channels())
		default:
			h.logger.Debug("unknown websocket message type", "type", env.Type, "user_id", c.UserID)
		}
	}
}

func (h *Handler) write(ctx context.Context, sock *websocket.Conn, env Envelope) error {
	wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, sock, env)
}

// bearerToken extracts the credential from the token query parameter or the
// Authorization header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// subscribeChannels tolerates both shapes clients send: a bare channel name
// or {"channels": [...]}.
func subscribeChannels(data any) []string {
	switch v := data.(type) {
	case string:
		return []string{v}
	case map[string]any:
		raw, ok := v["channels"].([]any)
		if !ok {
			return nil
		}
		channels := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				channels = append(channels, s)
			}
		}
		return channels
	default:
		return nil
	}
}
