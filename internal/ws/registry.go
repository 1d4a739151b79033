package ws

import (
	"log/slog"
	"sync"
)

// Registry tracks every live connection keyed by user ID. A user may hold any
// number of concurrent connections (tabs, devices); none are shared across
// users. All structural mutation goes through the registry's lock, while
// actual message delivery happens on per-connection queues so one slow
// connection cannot stall a broadcast.
type Registry struct {
	mu    sync.RWMutex
	users map[string][]*Conn

	buffer  int
	logger  *slog.Logger
	metrics *Metrics
}

// NewRegistry builds an empty registry. buffer is the per-connection outbound
// queue depth; metrics may be nil.
func NewRegistry(buffer int, logger *slog.Logger, metrics *Metrics) *Registry {
	return &Registry{
		users:   make(map[string][]*Conn),
		buffer:  buffer,
		logger:  logger,
		metrics: metrics,
	}
}

func (r *Registry) add(c *Conn) {
	r.mu.Lock()
	r.users[c.UserID] = append(r.users[c.UserID], c)
	r.mu.Unlock()
	r.metrics.connOpened()
}

// remove detaches the connection; the user entry disappears entirely when its
// last connection goes. A broadcast already iterating a snapshot may still
// hold the Conn, which is fine: enqueue on a closed Conn is a no-op.
func (r *Registry) remove(c *Conn) {
	r.mu.Lock()
	conns := r.users[c.UserID]
	for i, existing := range conns {
		if existing == c {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(r.users, c.UserID)
	} else {
		r.users[c.UserID] = conns
	}
	r.mu.Unlock()
	r.metrics.connClosed()
}

// SendToUser delivers the envelope to every open connection of one user.
// Zero deliveries when the user has none; there is no store-and-forward.
func (r *Registry) SendToUser(userID string, env Envelope) {
	r.mu.RLock()
	targets := append([]*Conn(nil), r.users[userID]...)
	r.mu.RUnlock()

	r.deliver(targets, env)
}

// SendToRole delivers the envelope to every open connection bound to the
// role, optionally skipping one user (so an actor does not hear its own
// action echoed back).
func (r *Registry) SendToRole(role string, env Envelope, excludeUserID string) {
	var targets []*Conn
	r.mu.RLock()
	for userID, conns := range r.users {
		if userID == excludeUserID {
			continue
		}
		for _, c := range conns {
			if c.Role == role {
				targets = append(targets, c)
			}
		}
	}
	r.mu.RUnlock()

	r.deliver(targets, env)
}

// SendToAll delivers the envelope to every open connection system-wide, with
// the same exclusion semantics as SendToRole.
func (r *Registry) SendToAll(env Envelope, excludeUserID string) {
	var targets []*Conn
	r.mu.RLock()
	for userID, conns := range r.users {
		if userID == excludeUserID {
			continue
		}
		targets = append(targets, conns...)
	}
	r.mu.RUnlock()

	r.deliver(targets, env)
}

func (r *Registry) deliver(targets []*Conn, env Envelope) {
	for _, c := range targets {
		if c.enqueue(env) {
			r.metrics.messageSent()
			continue
		}
		r.metrics.messageDropped()
		if !c.closed() {
			r.logger.Debug("dropping message for slow connection",
				"user_id", c.UserID, "type", env.Type)
		}
	}
}

// Connections reports how many connections a user currently holds.
func (r *Registry) Connections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID])
}

// Size reports how many users currently hold at least one connection.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
