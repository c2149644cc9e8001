package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qr-menu/internal/domain"
	"qr-menu/internal/logger"
	"qr-menu/internal/recurrence"
)

// fakeSpecials dedupes on (restaurant, dish, date) the way the unique
// index does in Postgres.
type fakeSpecials struct {
	byKey map[string]domain.DailySpecial
}

func newFakeSpecials() *fakeSpecials {
	return &fakeSpecials{byKey: map[string]domain.DailySpecial{}}
}

func key(s domain.DailySpecial) string {
	return s.RestaurantID + "|" + s.DishID + "|" + s.Date.Format(time.DateOnly)
}

func (f *fakeSpecials) CreateBatch(_ context.Context, specials []domain.DailySpecial) (int, error) {
	inserted := 0
	for _, s := range specials {
		if _, ok := f.byKey[key(s)]; ok {
			continue
		}
		f.byKey[key(s)] = s
		inserted++
	}
	return inserted, nil
}

func (f *fakeSpecials) DeleteGroup(_ context.Context, groupID string) (int, error) {
	deleted := 0
	for k, s := range f.byKey {
		if s.GroupID == groupID {
			delete(f.byKey, k)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeSpecials) DeleteByIDs(_ context.Context, ids []string) error {
	for k, s := range f.byKey {
		for _, id := range ids {
			if s.ID == id {
				delete(f.byKey, k)
			}
		}
	}
	return nil
}

func weeklyRequest() recurrence.Request {
	return recurrence.Request{
		RestaurantID: "r1",
		DishID:       "d1",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Recurring:    true,
		Type:         domain.RecurrenceWeekly,
		Weekdays:     []time.Weekday{time.Monday, time.Wednesday},
		EndDate:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestSchedule(t *testing.T) {
	repo := newFakeSpecials()
	svc := NewSpecialService(repo, logger.New("specials-test"))

	got, err := svc.Schedule(context.Background(), weeklyRequest())
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Len(t, repo.byKey, 10)
}

func TestSchedule_RerunDoesNotDuplicate(t *testing.T) {
	repo := newFakeSpecials()
	svc := NewSpecialService(repo, logger.New("specials-test"))

	_, err := svc.Schedule(context.Background(), weeklyRequest())
	require.NoError(t, err)
	_, err = svc.Schedule(context.Background(), weeklyRequest())
	require.NoError(t, err)

	assert.Len(t, repo.byKey, 10)
}

func TestSchedule_ValidationPropagates(t *testing.T) {
	svc := NewSpecialService(newFakeSpecials(), logger.New("specials-test"))

	req := weeklyRequest()
	req.Weekdays = nil
	_, err := svc.Schedule(context.Background(), req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUnscheduleGroup(t *testing.T) {
	repo := newFakeSpecials()
	svc := NewSpecialService(repo, logger.New("specials-test"))

	got, err := svc.Schedule(context.Background(), weeklyRequest())
	require.NoError(t, err)

	deleted, err := svc.UnscheduleGroup(context.Background(), got[0].GroupID)
	require.NoError(t, err)
	assert.Equal(t, 10, deleted)
	assert.Empty(t, repo.byKey)
}

func TestRemove_EmptyIDs(t *testing.T) {
	svc := NewSpecialService(newFakeSpecials(), logger.New("specials-test"))
	err := svc.Remove(context.Background(), nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
