package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qr-menu/internal/domain"
)

type OrdersPG struct {
	pool *pgxpool.Pool
}

func NewOrdersPG(pool *pgxpool.Pool) *OrdersPG { return &OrdersPG{pool: pool} }

var _ Orders = (*OrdersPG)(nil)

func (r *OrdersPG) Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	if len(draft.Items) == 0 {
		return domain.Order{}, domain.Validation("at least one item is required")
	}

	dishIDs := make([]string, 0, len(draft.Items))
	for _, it := range draft.Items {
		if it.Quantity <= 0 {
			return domain.Order{}, domain.Validation("invalid quantity %d for dish %s", it.Quantity, it.DishID)
		}
		dishIDs = append(dishIDs, it.DishID)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Order{}, domain.WrapRepo("orders.create.begin", err)
	}
	defer tx.Rollback(ctx)

	prices, err := dishPrices(ctx, tx, dishIDs)
	if err != nil {
		return domain.Order{}, err
	}

	table, err := tableByID(ctx, tx, draft.TableID)
	if err != nil {
		return domain.Order{}, err
	}
	if draft.TableID != nil && table == nil {
		return domain.Order{}, fmt.Errorf("table %s: %w", *draft.TableID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:           uuid.NewString(),
		RestaurantID: draft.RestaurantID,
		TableID:      draft.TableID,
		Table:        table,
		WaiterName:   draft.WaiterName,
		Notes:        draft.Notes,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, it := range draft.Items {
		dp, ok := prices[it.DishID]
		if !ok {
			return domain.Order{}, fmt.Errorf("dish %s: %w", it.DishID, domain.ErrNotFound)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			DishID:    strPtr(it.DishID),
			DishName:  dp.Name,
			Quantity:  it.Quantity,
			UnitPrice: dp.Price,
			Notes:     it.Notes,
		})
		order.Total += float64(it.Quantity) * dp.Price
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, restaurant_id, table_id, waiter_name, notes, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.RestaurantID, order.TableID, order.WaiterName, order.Notes,
		order.Total, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, domain.WrapRepo("orders.create.insert", err)
	}
	for _, it := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, dish_id, dish_name, quantity, unit_price, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.OrderID, it.DishID, it.DishName, it.Quantity, it.UnitPrice, it.Notes,
		)
		if err != nil {
			return domain.Order{}, domain.WrapRepo("orders.create.insert_item", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, domain.WrapRepo("orders.create.commit", err)
	}
	return order, nil
}

func (r *OrdersPG) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	return fetchOrders(ctx, r.pool, "o.restaurant_id = $1", restaurantID)
}

func (r *OrdersPG) UpdateStatus(ctx context.Context, orderID string, target domain.OrderStatus) (domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Order{}, domain.WrapRepo("orders.update_status.begin", err)
	}
	defer tx.Rollback(ctx)

	var current domain.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, domain.WrapRepo("orders.update_status.lock", err)
	}

	if _, err := domain.Transition(domain.Order{ID: orderID, Status: current}, target); err != nil {
		return domain.Order{}, err
	}

	updatedAt := time.Now().UTC()
	_, err = tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, target, updatedAt)
	if err != nil {
		return domain.Order{}, domain.WrapRepo("orders.update_status.update", err)
	}

	orders, err := fetchOrders(ctx, tx, "o.id = $1", orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, domain.WrapRepo("orders.update_status.commit", err)
	}
	return orders[0], nil
}

func (r *OrdersPG) Delete(ctx context.Context, orderID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return domain.WrapRepo("orders.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return nil
}

func (r *OrdersPG) MarkTablePaid(ctx context.Context, tableID string) ([]domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, domain.WrapRepo("orders.mark_table_paid.begin", err)
	}
	defer tx.Rollback(ctx)

	var one int
	err = tx.QueryRow(ctx, `SELECT 1 FROM tables WHERE id = $1`, tableID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("table %s: %w", tableID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.WrapRepo("orders.mark_table_paid.table", err)
	}

	rows, err := tx.Query(ctx, `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE table_id = $1 AND status = ANY($4)
		RETURNING id`,
		tableID, domain.StatusPaid, time.Now().UTC(),
		[]string{string(domain.StatusActive), string(domain.StatusReady)},
	)
	if err != nil {
		return nil, domain.WrapRepo("orders.mark_table_paid.update", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, domain.WrapRepo("orders.mark_table_paid.scan", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, domain.WrapRepo("orders.mark_table_paid.rows", err)
	}

	var settled []domain.Order
	if len(ids) > 0 {
		settled, err = fetchOrders(ctx, tx, "o.id = ANY($1)", ids)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.WrapRepo("orders.mark_table_paid.commit", err)
	}
	return settled, nil
}

// fetchOrders loads fully-populated orders (items and table included)
// matching cond, newest first.
func fetchOrders(ctx context.Context, q querier, cond string, args ...any) ([]domain.Order, error) {
	rows, err := q.Query(ctx, `
		SELECT o.id, o.restaurant_id, o.table_id, o.waiter_name, o.notes,
		       o.total, o.status, o.created_at, o.updated_at,
		       t.id, t.label, t.restaurant_id
		FROM orders o
		LEFT JOIN tables t ON t.id = o.table_id
		WHERE `+cond+`
		ORDER BY o.created_at DESC`, args...)
	if err != nil {
		return nil, domain.WrapRepo("orders.fetch", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		index  = map[string]int{}
		ids    []string
	)
	for rows.Next() {
		var (
			o                        domain.Order
			tblID, tblLabel, tblRest *string
		)
		err := rows.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.WaiterName, &o.Notes,
			&o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&tblID, &tblLabel, &tblRest)
		if err != nil {
			return nil, domain.WrapRepo("orders.fetch.scan", err)
		}
		if tblID != nil {
			o.Table = &domain.Table{ID: *tblID, Label: *tblLabel, RestaurantID: *tblRest}
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapRepo("orders.fetch.rows", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := q.Query(ctx, `
		SELECT id, order_id, dish_id, dish_name, quantity, unit_price, notes
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return nil, domain.WrapRepo("orders.fetch.items", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it domain.OrderItem
		err := itemRows.Scan(&it.ID, &it.OrderID, &it.DishID, &it.DishName,
			&it.Quantity, &it.UnitPrice, &it.Notes)
		if err != nil {
			return nil, domain.WrapRepo("orders.fetch.items.scan", err)
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, domain.WrapRepo("orders.fetch.items.rows", err)
	}
	return orders, nil
}

func tableByID(ctx context.Context, q querier, id *string) (*domain.Table, error) {
	if id == nil {
		return nil, nil
	}
	var t domain.Table
	err := q.QueryRow(ctx, `SELECT id, label, restaurant_id FROM tables WHERE id = $1`, *id).
		Scan(&t.ID, &t.Label, &t.RestaurantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // table deleted out from under the order
	}
	if err != nil {
		return nil, domain.WrapRepo("tables.get", err)
	}
	return &t, nil
}

func strPtr(s string) *string { return &s }
