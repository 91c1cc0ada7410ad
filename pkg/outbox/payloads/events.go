package payloads

import (
	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/enums"
)

// OrderCreatedEvent is emitted in the checkout transaction.
type OrderCreatedEvent struct {
	OrderID      uuid.UUID  `json:"order_id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	IsGuest      bool       `json:"is_guest"`
	CustomerName string     `json:"customer_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Total        int        `json:"total"`
	ItemCount    int        `json:"item_count"`
}

// OrderStatusChangedEvent is emitted when the back office moves an order.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// ProductsImportedEvent summarizes a finished bulk import.
type ProductsImportedEvent struct {
	ImportID  uuid.UUID `json:"import_id"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Source    string    `json:"source"`
}
