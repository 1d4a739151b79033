package ws

import (
	"fmt"
	"time"
)

// NotificationEvent is the payload pushed for a stored notification. UserID
// selects unicast delivery; empty means everyone.
type NotificationEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	UserID string `json:"-"`
}

type stockAlertData struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	CurrentStock int    `json:"currentStock"`
	Message      string `json:"message"`
}

type orderUpdateData struct {
	OrderID      string `json:"orderId"`
	CustomerName string `json:"customerName"`
	Total        string `json:"total"`
	Message      string `json:"message"`
}

type vendorUpdateData struct {
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
	Message    string `json:"message"`
}

type systemAlertData struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

type dataUpdateData struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Changes   any       `json:"changes,omitempty"`
}

// operationalRoles receive inventory and order events.
var operationalRoles = []string{"admin", "staff", "superadmin"}

// managementRoles receive vendor and system events.
var managementRoles = []string{"admin", "superadmin"}

// BroadcastStockAlert routes a low-stock event to the operational roles.
func (r *Registry) BroadcastStockAlert(productID, productName string, currentStock int) {
	env := Envelope{Type: TypeStockAlert, Data: stockAlertData{
		ProductID:    productID,
		ProductName:  productName,
		CurrentStock: currentStock,
		Message:      fmt.Sprintf("Low stock alert: %s has only %d units left", productName, currentStock),
	}}
	for _, role := range operationalRoles {
		r.SendToRole(role, env, "")
	}
}

// BroadcastOrderUpdate routes a new-order event to the operational roles.
func (r *Registry) BroadcastOrderUpdate(orderID, customerName, total string) {
	if customerName == "" {
		customerName = "Unknown"
	}
	env := Envelope{Type: TypeNewOrder, Data: orderUpdateData{
		OrderID:      orderID,
		CustomerName: customerName,
		Total:        total,
		Message:      fmt.Sprintf("New order received: $%s", total),
	}}
	for _, role := range operationalRoles {
		r.SendToRole(role, env, "")
	}
}

// BroadcastVendorUpdate routes a vendor change to the management roles.
func (r *Registry) BroadcastVendorUpdate(vendorID, vendorName string) {
	env := Envelope{Type: TypeVendorUpdate, Data: vendorUpdateData{
		VendorID:   vendorID,
		VendorName: vendorName,
		Message:    fmt.Sprintf("Vendor update: %s", vendorName),
	}}
	for _, role := range managementRoles {
		r.SendToRole(role, env, "")
	}
}

// BroadcastSystemAlert routes a system alert to the management roles.
func (r *Registry) BroadcastSystemAlert(id, title, message, severity string) {
	env := Envelope{Type: TypeSystemAlert, Data: systemAlertData{
		ID:        id,
		Title:     title,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now(),
	}}
	for _, role := range managementRoles {
		r.SendToRole(role, env, "")
	}
}

// BroadcastNotification pushes a stored notification: unicast when it targets
// a user, otherwise to everyone.
func (r *Registry) BroadcastNotification(n NotificationEvent) {
	env := Envelope{Type: TypeNotification, Data: n}
	if n.UserID != "" {
		r.SendToUser(n.UserID, env)
		return
	}
	r.SendToAll(env, "")
}

// BroadcastDataUpdate tells every connected client that a record changed so
// open views can refresh.
func (r *Registry) BroadcastDataUpdate(entity, action, id string, changes any) {
	r.SendToAll(Envelope{Type: TypeDataUpdate, Data: dataUpdateData{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
		Changes:   changes,
	}}, "")
}
