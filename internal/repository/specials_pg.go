package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qr-menu/internal/domain"
)

type SpecialsPG struct {
	pool *pgxpool.Pool
}

func NewSpecialsPG(pool *pgxpool.Pool) *SpecialsPG { return &SpecialsPG{pool: pool} }

var _ Specials = (*SpecialsPG)(nil)

// CreateBatch inserts the expanded occurrences. The unique index on
// (restaurant_id, dish_id, date) makes re-running an identical expansion a
// no-op for dates that already exist.
func (r *SpecialsPG) CreateBatch(ctx context.Context, specials []domain.DailySpecial) (int, error) {
	if len(specials) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, s := range specials {
		batch.Queue(`
			INSERT INTO daily_specials
			    (id, restaurant_id, dish_id, date, active, recurrence, weekdays, end_date, group_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (restaurant_id, dish_id, date) DO NOTHING`,
			s.ID, s.RestaurantID, s.DishID, s.Date, s.Active,
			s.Recurrence, weekdayInts(s.Weekdays), s.EndDate, s.GroupID,
		)
	}

	res := r.pool.SendBatch(ctx, batch)
	defer res.Close()

	inserted := 0
	for range specials {
		tag, err := res.Exec()
		if err != nil {
			return inserted, domain.WrapRepo("specials.create_batch", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *SpecialsPG) DeleteGroup(ctx context.Context, groupID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM daily_specials WHERE group_id = $1`, groupID)
	if err != nil {
		return 0, domain.WrapRepo("specials.delete_group", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *SpecialsPG) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM daily_specials WHERE id = ANY($1)`, ids)
	if err != nil {
		return domain.WrapRepo("specials.delete_by_ids", err)
	}
	return nil
}

func weekdayInts(wds []time.Weekday) []int32 {
	if len(wds) == 0 {
		return nil
	}
	out := make([]int32, len(wds))
	for i, wd := range wds {
		out[i] = int32(wd)
	}
	return out
}
