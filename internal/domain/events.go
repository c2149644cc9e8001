package domain

import "time"

type EventType string

const (
	EventOrderCreated       EventType = "ORDER_CREATED"
	EventOrderStatusChanged EventType = "ORDER_STATUS_CHANGED"
	EventOrderDeleted       EventType = "ORDER_DELETED"
)

// OrderEvent is the wire unit of the synchronization channel. Delivery is
// at-least-once; consumers must apply events idempotently.
//
// Order is nil for partial payloads (delete, or a status change that carries
// only the id/status pair). Consumers branch on Full() rather than probing
// the payload shape.
type OrderEvent struct {
	Type         EventType   `json:"type"`
	RestaurantID string      `json:"restaurant_id"`
	OrderID      string      `json:"order_id"`
	Status       OrderStatus `json:"status,omitempty"`
	Order        *Order      `json:"order,omitempty"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// Full reports whether the event carries the complete order record.
func (e OrderEvent) Full() bool { return e.Order != nil }

func NewOrderCreated(o Order) OrderEvent {
	return OrderEvent{
		Type:         EventOrderCreated,
		RestaurantID: o.RestaurantID,
		OrderID:      o.ID,
		Status:       o.Status,
		Order:        &o,
		OccurredAt:   time.Now().UTC(),
	}
}

func NewStatusChanged(o Order) OrderEvent {
	return OrderEvent{
		Type:         EventOrderStatusChanged,
		RestaurantID: o.RestaurantID,
		OrderID:      o.ID,
		Status:       o.Status,
		Order:        &o,
		OccurredAt:   time.Now().UTC(),
	}
}

// NewStatusChangedPartial builds a status-changed event without the order
// record. Reconcilers ignore it for orders they have never seen.
func NewStatusChangedPartial(restaurantID, orderID string, status OrderStatus) OrderEvent {
	return OrderEvent{
		Type:         EventOrderStatusChanged,
		RestaurantID: restaurantID,
		OrderID:      orderID,
		Status:       status,
		OccurredAt:   time.Now().UTC(),
	}
}

func NewOrderDeleted(restaurantID, orderID string) OrderEvent {
	return OrderEvent{
		Type:         EventOrderDeleted,
		RestaurantID: restaurantID,
		OrderID:      orderID,
		OccurredAt:   time.Now().UTC(),
	}
}
