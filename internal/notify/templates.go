package notify

import "fmt"

// Template helpers build the canonical notification shapes for domain
// events. Each is a pure function from event fields to a Draft; the service
// assigns identity and timestamp on Create.

// LowStockThreshold is the stock level below which the inventory service
// raises an alert.
const LowStockThreshold = 10

func LowStock(productID, productName string, currentStock int) Draft {
	return Draft{
		Type:    "low_stock",
		Title:   "Low Stock Alert",
		Message: fmt.Sprintf("%s is running low with only %d units remaining.", productName, currentStock),
		Data: map[string]any{
			"productId":    productID,
			"productName":  productName,
			"currentStock": currentStock,
			"threshold":    LowStockThreshold,
		},
		Priority: PriorityHigh,
	}
}

func NewOrder(customerID, customerName, orderTotal string) Draft {
	return Draft{
		Type:    "new_order",
		Title:   "New Order Received",
		Message: fmt.Sprintf("New order from %s for $%s", customerName, orderTotal),
		Data: map[string]any{
			"customerId":   customerID,
			"customerName": customerName,
			"orderTotal":   orderTotal,
		},
		Priority: PriorityNormal,
	}
}

func LoyaltyMilestone(customerID, customerName string, points int) Draft {
	return Draft{
		UserID:  customerID,
		Type:    "loyalty_milestone",
		Title:   "Loyalty Milestone Reached!",
		Message: fmt.Sprintf("Congratulations! You've reached %d loyalty points.", points),
		Data: map[string]any{
			"points":    points,
			"milestone": points,
		},
		Priority: PriorityNormal,
	}
}

func SystemAlert(title, message string, severity Priority) Draft {
	if severity == "" {
		severity = PriorityNormal
	}
	return Draft{
		Type:    "system_alert",
		Title:   title,
		Message: message,
		Data: map[string]any{
			"severity": string(severity),
		},
		Priority: severity,
	}
}

func VendorPaymentDue(vendorID, vendorName, amount, dueDate string) Draft {
	return Draft{
		Type:    "vendor_payment",
		Title:   "Vendor Payment Due",
		Message: fmt.Sprintf("Payment of $%s is due to %s by %s", amount, vendorName, dueDate),
		Data: map[string]any{
			"vendorId":   vendorID,
			"vendorName": vendorName,
			"amount":     amount,
			"dueDate":    dueDate,
		},
		Priority: PriorityHigh,
	}
}
