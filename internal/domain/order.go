package domain

import "time"

type OrderStatus string

const (
	StatusActive    OrderStatus = "ACTIVE"
	StatusReady     OrderStatus = "READY"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Known reports whether s is one of the defined order statuses.
func (s OrderStatus) Known() bool {
	switch s {
	case StatusActive, StatusReady, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses admit no further transition.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

type Table struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	RestaurantID string `json:"restaurant_id"`
}

type Order struct {
	ID           string      `json:"id"`
	RestaurantID string      `json:"restaurant_id"`
	TableID      *string     `json:"table_id,omitempty"`
	Table        *Table      `json:"table,omitempty"`
	WaiterName   *string     `json:"waiter_name,omitempty"`
	Notes        *string     `json:"notes,omitempty"`
	Total        float64     `json:"total"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem carries the dish price as it was at order creation; a later
// price change on the dish must not affect an existing order.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order_id"`
	DishID    *string `json:"dish_id,omitempty"`
	DishName  string  `json:"dish_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Notes     *string `json:"notes,omitempty"`
}

// OrderDraft is the input to order creation. Prices are deliberately
// absent: the repository snapshots them from the dish catalog.
type OrderDraft struct {
	RestaurantID string
	TableID      *string
	WaiterName   *string
	Notes        *string
	Items        []OrderItemDraft
}

type OrderItemDraft struct {
	DishID   string
	Quantity int
	Notes    *string
}
