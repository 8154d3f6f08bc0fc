package payloads

import (
	"github.com/shopspring/decimal"

	"github.com/edelguur/admin-backend/pkg/enums"
)

// OrderCreatedEvent announces a new storefront order.
type OrderCreatedEvent struct {
	OrderID   int64           `json:"order_id"`
	Name      string          `json:"name"`
	Email     *string         `json:"email,omitempty"`
	Phone     string          `json:"phone"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// OrderStatusChangedEvent is emitted when an admin moves an order to a new status.
type OrderStatusChangedEvent struct {
	OrderID int64             `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}
