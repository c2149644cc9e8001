package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"qr-menu/internal/connections/rabbitmq"
	"qr-menu/internal/domain"
	"qr-menu/internal/logger"
)

const (
	// EventExchange is the topic exchange order events travel on between
	// service instances. Routing key: restaurant.<restaurant_id>.
	EventExchange = "orders.events"

	sourceHeader = "x-source"
)

// Bridge joins this process's hub to the hubs of every other instance via
// RabbitMQ: local publishes are mirrored onto the exchange, and consumed
// deliveries are re-broadcast locally. Messages stamped with our own
// instance id are skipped so an event is applied exactly once per process.
type Bridge struct {
	client     *rabbitmq.Client
	hub        *Hub
	log        *logger.Logger
	instanceID string
}

func NewBridge(client *rabbitmq.Client, h *Hub, log *logger.Logger) *Bridge {
	return &Bridge{
		client:     client,
		hub:        h,
		log:        log,
		instanceID: uuid.NewString(),
	}
}

// Publish mirrors an event onto the exchange. Implements service.Publisher.
func (b *Bridge) Publish(ctx context.Context, ev domain.OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key := "restaurant." + ev.RestaurantID
	headers := amqp.Table{sourceHeader: b.instanceID}
	if err := b.client.Publish(ctx, EventExchange, key, body, headers); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// Run declares the topology, then consumes relayed events until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.client.DeclareEventExchange(EventExchange); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	queue, err := b.client.DeclareTransientQueue(EventExchange, "restaurant.#")
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	deliveries, err := b.client.Consume(queue, "hub-bridge-"+b.instanceID)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	b.log.Info("bridge_started", map[string]any{"queue": queue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if src, _ := d.Headers[sourceHeader].(string); src == b.instanceID {
				continue
			}
			var ev domain.OrderEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				b.log.Error("bridge_bad_event", err, map[string]any{"routing_key": d.RoutingKey})
				continue
			}
			b.hub.PublishFrom(nil, ev)
		}
	}
}
