package enums

import (
	"fmt"
	"slices"
	"strings"
)

// OrderStatus tracks an order from submission to delivery.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool { return slices.Contains(validOrderStatuses, s) }

// CountsTowardRevenue reports whether orders in this status contribute to revenue totals.
func (s OrderStatus) CountsTowardRevenue() bool {
	return s != OrderStatusCancelled
}

// ParseOrderStatus matches case-insensitively and accepts the "canceled" spelling.
func ParseOrderStatus(value string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "canceled") {
		return OrderStatusCancelled, nil
	}
	for _, candidate := range validOrderStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
