package ws

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testRegistry() *Registry {
	return NewRegistry(8, testLogger(), nil)
}

func addConn(r *Registry, userID, role string) *Conn {
	c := newConn(userID, role, "", r.buffer)
	r.add(c)
	return c
}

func received(t *testing.T, c *Conn) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case env := <-c.send:
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	r := testRegistry()
	c1 := addConn(r, "u1", "staff")
	c2 := addConn(r, "u1", "staff")
	other := addConn(r, "u2", "staff")

	r.SendToUser("u1", Envelope{Type: TypeNotification})

	assert.Len(t, received(t, c1), 1)
	assert.Len(t, received(t, c2), 1)
	assert.Empty(t, received(t, other))
}

func TestSendToUserWithNoConnectionsIsANoOp(t *testing.T) {
	r := testRegistry()
	r.SendToUser("ghost", Envelope{Type: TypeNotification})
	assert.Equal(t, 0, r.Size())
}

func TestSendToRoleExcludesUser(t *testing.T) {
	r := testRegistry()
	admin := addConn(r, "u1", "admin")
	actor := addConn(r, "u2", "admin")
	staff := addConn(r, "u3", "staff")

	r.SendToRole("admin", Envelope{Type: TypeSystemAlert}, "u2")

	assert.Len(t, received(t, admin), 1)
	assert.Empty(t, received(t, actor), "excluded user hears nothing")
	assert.Empty(t, received(t, staff))
}

func TestSendToAllExcludesUser(t *testing.T) {
	r := testRegistry()
	c1 := addConn(r, "u1", "admin")
	c2 := addConn(r, "u2", "customer")
	actor := addConn(r, "u3", "admin")

	r.SendToAll(Envelope{Type: TypeDataUpdate}, "u3")

	assert.Len(t, received(t, c1), 1)
	assert.Len(t, received(t, c2), 1)
	assert.Empty(t, received(t, actor))
}

func TestRemoveLeavesSiblingConnections(t *testing.T) {
	r := testRegistry()
	c1 := addConn(r, "u1", "staff")
	c2 := addConn(r, "u1", "staff")

	r.remove(c1)
	assert.Equal(t, 1, r.Connections("u1"))
	assert.Equal(t, 1, r.Size())

	r.SendToUser("u1", Envelope{Type: TypeNotification})
	assert.Len(t, received(t, c2), 1)

	r.remove(c2)
	assert.Equal(t, 0, r.Connections("u1"))
	assert.Equal(t, 0, r.Size(), "user disappears with its last connection")
}

func TestSlowConnectionLosesMessagesWithoutStallingOthers(t *testing.T) {
	r := NewRegistry(2, testLogger(), nil)
	slow := addConn(r, "u1", "staff")
	fast := addConn(r, "u2", "staff")

	for i := 0; i < 5; i++ {
		r.SendToRole("staff", Envelope{Type: TypeStockAlert, Data: i}, "")
		// The fast consumer keeps draining; the slow one never does.
		<-fast.send
	}

	assert.Len(t, received(t, slow), 2, "slow connection keeps only what fits its queue")
}

func TestEnqueueOnClosedConnection(t *testing.T) {
	r := testRegistry()
	c := addConn(r, "u1", "staff")
	c.close()

	r.SendToUser("u1", Envelope{Type: TypeNotification})
	assert.False(t, c.enqueue(Envelope{Type: TypeNotification}))
}

func TestBroadcastStockAlertTargetsOperationalRoles(t *testing.T) {
	r := testRegistry()
	admin := addConn(r, "u1", "admin")
	staff := addConn(r, "u2", "staff")
	superadmin := addConn(r, "u3", "superadmin")
	customer := addConn(r, "u4", "customer")

	r.BroadcastStockAlert("p1", "Widget", 2)

	for _, c := range []*Conn{admin, staff, superadmin} {
		msgs := received(t, c)
		require.Len(t, msgs, 1)
		assert.Equal(t, TypeStockAlert, msgs[0].Type)
		data, ok := msgs[0].Data.(stockAlertData)
		require.True(t, ok)
		assert.Equal(t, "Low stock alert: Widget has only 2 units left", data.Message)
	}
	assert.Empty(t, received(t, customer))
}

func TestBroadcastVendorUpdateSkipsStaff(t *testing.T) {
	r := testRegistry()
	admin := addConn(r, "u1", "admin")
	staff := addConn(r, "u2", "staff")

	r.BroadcastVendorUpdate("v1", "Acme")

	assert.Len(t, received(t, admin), 1)
	assert.Empty(t, received(t, staff))
}

func TestBroadcastNotificationUnicastVersusGlobal(t *testing.T) {
	r := testRegistry()
	target := addConn(r, "u1", "customer")
	bystander := addConn(r, "u2", "customer")

	r.BroadcastNotification(NotificationEvent{ID: "n1", UserID: "u1"})
	assert.Len(t, received(t, target), 1)
	assert.Empty(t, received(t, bystander))

	r.BroadcastNotification(NotificationEvent{ID: "n2"})
	assert.Len(t, received(t, target), 1)
	assert.Len(t, received(t, bystander), 1)
}

func TestBroadcastOrderUpdateDefaultsCustomerName(t *testing.T) {
	r := testRegistry()
	staff := addConn(r, "u1", "staff")

	r.BroadcastOrderUpdate("o1", "", "12.00")

	msgs := received(t, staff)
	require.Len(t, msgs, 1)
	data, ok := msgs[0].Data.(orderUpdateData)
	require.True(t, ok)
	assert.Equal(t, "Unknown", data.CustomerName)
	assert.Equal(t, "New order received: $12.00", data.Message)
}

func TestConnSubscriptionsAreDeduplicated(t *testing.T) {
	c := newConn("u1", "staff", "", 8)
	c.subscribe("orders", "inventory", "orders", "")

	assert.Equal(t, []string{"orders", "inventory"}, c.Channels())
}

func TestManyUsersBroadcast(t *testing.T) {
	r := testRegistry()
	conns := make([]*Conn, 0, 20)
	for i := 0; i < 20; i++ {
		conns = append(conns, addConn(r, fmt.Sprintf("u%d", i), "staff"))
	}

	r.SendToAll(Envelope{Type: TypeDataUpdate}, "")

	for _, c := range conns {
		assert.Len(t, received(t, c), 1)
	}
	assert.Equal(t, 20, r.Size())
}
