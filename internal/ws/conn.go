package ws

import "sync"

// Conn is one live client connection. Identity fields are bound at accept
// time and never change; the registry owns the Conn for its whole lifetime.
type Conn struct {
	UserID     string
	Role       string
	ShopDomain string

	// send is drained by the connection's writer goroutine. Enqueueing never
	// blocks: a consumer that cannot keep up loses messages instead of
	// stalling delivery to everyone else.
	send chan Envelope
	done chan struct{}

	closeOnce sync.Once

	mu       sync.Mutex
	channels []string
}

func newConn(userID, role, shopDomain string, buffer int) *Conn {
	if buffer <= 0 {
		buffer = 32
	}
	return &Conn{
		UserID:     userID,
		Role:       role,
		ShopDomain: shopDomain,
		send:       make(chan Envelope, buffer),
		done:       make(chan struct{}),
	}
}

// enqueue offers an envelope to the connection's outbound queue. It reports
// false when the connection is closed or the queue is full; the message is
// simply not delivered to this connection.
func (c *Conn) enqueue(env Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// close marks the connection finished. Idempotent; safe to call from the
// read loop, the writer, or a forced eviction.
func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// subscribe records logical channels of interest. Subscriptions are advisory:
// broadcasts are not filtered against them yet.
func (c *Conn) subscribe(channels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		if ch == "" {
			continue
		}
		found := false
		for _, existing := range c.channels {
			if existing == ch {
				found = true
				break
			}
		}
		if !found {
			c.channels = append(c.channels, ch)
		}
	}
}

// Channels returns a copy of the recorded subscriptions.
func (c *Conn) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.channels...)
}
