package ws

// Envelope is the wire format in both directions: a type tag and a free-form
// payload. Unknown types are ignored by both sides so the vocabulary can grow
// without lockstep deploys.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Server -> client message types.
const (
	TypeConnected    = "connected"
	TypeNotification = "notification"
	TypeDataUpdate   = "data_update"
	TypeSystemAlert  = "system_alert"
	TypeStockAlert   = "stock_alert"
	TypeNewOrder     = "new_order"
	TypeVendorUpdate = "vendor_update"
	TypePong         = "pong"
)

// Client -> server message types.
const (
	TypePing      = "ping"
	TypeSubscribe = "subscribe"
)
