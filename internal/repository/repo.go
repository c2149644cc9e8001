// Package repository is the durable side of the order subsystem. Every
// mutation of an order's status or existence goes through here; client
// replicas are advisory copies of what these queries return.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"qr-menu/internal/domain"
)

// Orders is the transactional store contract the core consumes.
type Orders interface {
	// Create snapshots current dish prices into the items, computes the
	// total and persists order and items in one transaction.
	Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
	// ListByRestaurant returns the restaurant's orders, newest first.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error)
	// UpdateStatus validates the transition against the current row under
	// lock and persists the target status.
	UpdateStatus(ctx context.Context, orderID string, target domain.OrderStatus) (domain.Order, error)
	Delete(ctx context.Context, orderID string) error
	// MarkTablePaid settles every non-terminal order at the table in one
	// transaction and returns the orders whose status changed.
	MarkTablePaid(ctx context.Context, tableID string) ([]domain.Order, error)
}

// DishPrice is the catalog's answer at order-creation time; the price is
// copied into the item, never referenced live.
type DishPrice struct {
	Name  string
	Price float64
}

type Dishes interface {
	PricesByIDs(ctx context.Context, ids []string) (map[string]DishPrice, error)
}

type Specials interface {
	// CreateBatch persists occurrences, skipping any that already exist
	// for the same (restaurant, dish, date); returns how many were new.
	CreateBatch(ctx context.Context, specials []domain.DailySpecial) (int, error)
	DeleteGroup(ctx context.Context, groupID string) (int, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx alike.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
