package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"qr-menu/internal/domain"
)

type DishesPG struct {
	pool *pgxpool.Pool
}

func NewDishesPG(pool *pgxpool.Pool) *DishesPG { return &DishesPG{pool: pool} }

var _ Dishes = (*DishesPG)(nil)

func (r *DishesPG) PricesByIDs(ctx context.Context, ids []string) (map[string]DishPrice, error) {
	return dishPrices(ctx, r.pool, ids)
}

func dishPrices(ctx context.Context, q querier, ids []string) (map[string]DishPrice, error) {
	rows, err := q.Query(ctx, `SELECT id, name, price FROM dishes WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, domain.WrapRepo("dishes.prices", err)
	}
	defer rows.Close()

	out := make(map[string]DishPrice, len(ids))
	for rows.Next() {
		var (
			id string
			dp DishPrice
		)
		if err := rows.Scan(&id, &dp.Name, &dp.Price); err != nil {
			return nil, domain.WrapRepo("dishes.prices.scan", err)
		}
		out[id] = dp
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapRepo("dishes.prices.rows", err)
	}
	return out, nil
}
