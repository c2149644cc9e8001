package service

import (
	"context"
	"errors"

	"qr-menu/internal/domain"
	"qr-menu/internal/logger"
	"qr-menu/internal/repository"
)

// Publisher pushes a domain event toward connected views. Publishing is
// fire-and-forget from the caller's perspective: a failed delivery is
// logged and swallowed, since reconnecting clients resync anyway.
type Publisher interface {
	Publish(ctx context.Context, ev domain.OrderEvent) error
}

// MultiPublisher fans a publish out to several transports (the in-process
// hub plus the AMQP bridge).
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, ev domain.OrderEvent) error {
	var firstErr error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OrderService drives the order lifecycle: it persists through the
// repository first and publishes the resulting event second. Local view
// state is never mutated ahead of the repository's answer.
type OrderService struct {
	repo repository.Orders
	pub  Publisher
	log  *logger.Logger
}

func NewOrderService(repo repository.Orders, pub Publisher, log *logger.Logger) *OrderService {
	return &OrderService{repo: repo, pub: pub, log: log}
}

func (s *OrderService) Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	if draft.RestaurantID == "" {
		return domain.Order{}, domain.Validation("restaurant id is required")
	}
	if len(draft.Items) == 0 {
		return domain.Order{}, domain.Validation("at least one item is required")
	}
	for _, it := range draft.Items {
		if it.DishID == "" {
			return domain.Order{}, domain.Validation("item dish id is required")
		}
		if it.Quantity <= 0 {
			return domain.Order{}, domain.Validation("invalid quantity %d for dish %s", it.Quantity, it.DishID)
		}
	}

	order, err := s.repo.Create(ctx, draft)
	if err != nil {
		return domain.Order{}, err
	}
	s.publish(ctx, domain.NewOrderCreated(order))
	s.log.Info("order_created", map[string]any{
		"order_id": order.ID, "restaurant_id": order.RestaurantID, "total": order.Total,
	})
	return order, nil
}

func (s *OrderService) List(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID)
}

func (s *OrderService) ChangeStatus(ctx context.Context, orderID string, target domain.OrderStatus) (domain.Order, error) {
	if !target.Known() {
		return domain.Order{}, domain.Validation("unknown status %q", string(target))
	}
	order, err := s.repo.UpdateStatus(ctx, orderID, target)
	if err != nil {
		return domain.Order{}, err
	}
	s.publish(ctx, domain.NewStatusChanged(order))
	s.log.Info("order_status_changed", map[string]any{
		"order_id": order.ID, "status": string(order.Status),
	})
	return order, nil
}

// Delete removes an order. Deleting an id that is already gone counts as
// success so that retried deletes stay idempotent.
func (s *OrderService) Delete(ctx context.Context, restaurantID, orderID string) error {
	err := s.repo.Delete(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.publish(ctx, domain.NewOrderDeleted(restaurantID, orderID))
	s.log.Info("order_deleted", map[string]any{"order_id": orderID})
	return nil
}

// SettleTable marks every non-terminal order at the table as paid in one
// repository transaction and republishes a status event per settled order.
func (s *OrderService) SettleTable(ctx context.Context, tableID string) ([]domain.Order, error) {
	settled, err := s.repo.MarkTablePaid(ctx, tableID)
	if err != nil {
		return nil, err
	}
	for _, o := range settled {
		s.publish(ctx, domain.NewStatusChanged(o))
	}
	s.log.Info("table_settled", map[string]any{"table_id": tableID, "orders": len(settled)})
	return settled, nil
}

// Resync fetches the authoritative list and republishes it as creation
// events; reconcilers absorb the duplicates. Returns the number of orders
// replayed.
func (s *OrderService) Resync(ctx context.Context, restaurantID string) (int, error) {
	orders, err := s.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return 0, err
	}
	for _, o := range orders {
		s.publish(ctx, domain.NewOrderCreated(o))
	}
	s.log.Info("orders_resynced", map[string]any{
		"restaurant_id": restaurantID, "orders": len(orders),
	})
	return len(orders), nil
}

func (s *OrderService) publish(ctx context.Context, ev domain.OrderEvent) {
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Error("event_publish_failed", err, map[string]any{
			"type": string(ev.Type), "order_id": ev.OrderID,
		})
	}
}
