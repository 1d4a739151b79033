package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowStock(t *testing.T) {
	d := LowStock("p1", "Widget", 3)

	assert.Equal(t, "low_stock", d.Type)
	assert.Equal(t, "Widget is running low with only 3 units remaining.", d.Message)
	assert.Equal(t, PriorityHigh, d.Priority)
	assert.Equal(t, "p1", d.Data["productId"])
	assert.Equal(t, LowStockThreshold, d.Data["threshold"])
	assert.Empty(t, d.UserID, "stock alerts are not targeted at one user")
}

func TestNewOrder(t *testing.T) {
	d := NewOrder("c1", "Ada", "42.50")

	assert.Equal(t, "new_order", d.Type)
	assert.Equal(t, "New order from Ada for $42.50", d.Message)
	assert.Equal(t, PriorityNormal, d.Priority)
	assert.Equal(t, "c1", d.Data["customerId"])
}

func TestLoyaltyMilestoneTargetsCustomer(t *testing.T) {
	d := LoyaltyMilestone("c1", "Ada", 500)

	assert.Equal(t, "c1", d.UserID)
	assert.Equal(t, "loyalty_milestone", d.Type)
	assert.Equal(t, "Congratulations! You've reached 500 loyalty points.", d.Message)
	assert.Equal(t, 500, d.Data["points"])
}

func TestSystemAlertSeverity(t *testing.T) {
	d := SystemAlert("Maintenance", "Back at noon", PriorityUrgent)
	assert.Equal(t, PriorityUrgent, d.Priority)
	assert.Equal(t, "urgent", d.Data["severity"])

	d = SystemAlert("Maintenance", "Back at noon", "")
	assert.Equal(t, PriorityNormal, d.Priority)
}

func TestVendorPaymentDue(t *testing.T) {
	d := VendorPaymentDue("v1", "Acme", "1200.00", "2026-04-01")

	assert.Equal(t, "vendor_payment", d.Type)
	assert.Equal(t, "Payment of $1200.00 is due to Acme by 2026-04-01", d.Message)
	assert.Equal(t, PriorityHigh, d.Priority)
	assert.Equal(t, "Acme", d.Data["vendorName"])
}
