// Package hub is the per-restaurant event broker. It is a stateless fan-out
// relay: it holds no order state and no durable queue. A client that was
// offline misses events and repairs itself through a snapshot resync.
package hub

import (
	"context"
	"sync"

	"qr-menu/internal/domain"
	"qr-menu/internal/logger"
)

type Role string

const (
	// RoleMenu serves the customer menu and the admin dashboard.
	RoleMenu Role = "menu"
	// RoleWaiter serves the waiter console.
	RoleWaiter Role = "waiter"
)

type roomKey struct {
	restaurantID string
	role         Role
}

// connBuffer bounds each subscriber's in-flight events. A consumer that
// falls this far behind loses deliveries and must resync.
const connBuffer = 64

// Conn is one subscriber's membership in a room.
type Conn struct {
	hub    *Hub
	key    roomKey
	events chan domain.OrderEvent

	mu     sync.Mutex
	closed bool
}

// Events delivers this connection's share of the broadcast. The channel is
// closed when the connection closes.
func (c *Conn) Events() <-chan domain.OrderEvent { return c.events }

// Connected reports transport liveness to the owning view.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Conn) Close() {
	c.hub.disconnect(c)
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[roomKey]map[*Conn]struct{}
	log   *logger.Logger
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[roomKey]map[*Conn]struct{}),
		log:   log,
	}
}

// Connect joins a restaurant room under the given role.
func (h *Hub) Connect(restaurantID string, role Role) *Conn {
	key := roomKey{restaurantID: restaurantID, role: role}
	c := &Conn{hub: h, key: key, events: make(chan domain.OrderEvent, connBuffer)}

	h.mu.Lock()
	room := h.rooms[key]
	if room == nil {
		room = make(map[*Conn]struct{})
		h.rooms[key] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("hub_connected", map[string]any{
		"restaurant_id": restaurantID, "role": string(role),
	})
	return c
}

func (h *Hub) disconnect(c *Conn) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	h.mu.Lock()
	if room, ok := h.rooms[c.key]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.key)
		}
	}
	h.mu.Unlock()

	close(c.events)
}

// PublishFrom fans the event out to every other connection in the event's
// restaurant. Both roles receive every order event: waiters and menu views
// all observe the full order stream. Delivery to a subscriber whose buffer
// is full is dropped; snapshot resync compensates.
func (h *Hub) PublishFrom(from *Conn, ev domain.OrderEvent) {
	h.mu.RLock()
	targets := make([]*Conn, 0, 8)
	for _, role := range []Role{RoleMenu, RoleWaiter} {
		for c := range h.rooms[roomKey{restaurantID: ev.RestaurantID, role: role}] {
			if c != from {
				targets = append(targets, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			continue
		}
		select {
		case c.events <- ev:
		default:
			h.log.Debug("hub_delivery_dropped", map[string]any{
				"restaurant_id": ev.RestaurantID, "order_id": ev.OrderID, "type": string(ev.Type),
			})
		}
		c.mu.Unlock()
	}
}

// Publish broadcasts an event that did not originate on a local connection
// (server-side mutations, events relayed from another process). Implements
// service.Publisher.
func (h *Hub) Publish(_ context.Context, ev domain.OrderEvent) error {
	h.PublishFrom(nil, ev)
	return nil
}

// SyncOrders replays an authoritative order list as creation events so late
// joiners converge; duplicate deliveries settle in each reconciler.
func (h *Hub) SyncOrders(restaurantID string, orders []domain.Order) {
	for _, o := range orders {
		if o.RestaurantID != restaurantID {
			continue
		}
		h.PublishFrom(nil, domain.NewOrderCreated(o))
	}
}
