package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qr-menu/internal/domain"
	"qr-menu/internal/logger"
	"qr-menu/internal/repository"
)

// fakeOrders is an in-memory stand-in for the Postgres repository. Prices
// come from a fixed catalog snapshot, like the real store's dishes table.
type fakeOrders struct {
	prices  map[string]repository.DishPrice
	orders  map[string]domain.Order
	seq     int
	failAll bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		prices: map[string]repository.DishPrice{
			"dish-a": {Name: "Margherita", Price: 5.00},
			"dish-b": {Name: "Lemonade", Price: 3.50},
		},
		orders: map[string]domain.Order{},
	}
}

func (f *fakeOrders) Create(_ context.Context, draft domain.OrderDraft) (domain.Order, error) {
	if f.failAll {
		return domain.Order{}, domain.WrapRepo("orders.create", errors.New("boom"))
	}
	f.seq++
	o := domain.Order{
		ID:           fmt.Sprintf("o%d", f.seq),
		RestaurantID: draft.RestaurantID,
		TableID:      draft.TableID,
		WaiterName:   draft.WaiterName,
		Status:       domain.StatusActive,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	for _, it := range draft.Items {
		dp, ok := f.prices[it.DishID]
		if !ok {
			return domain.Order{}, fmt.Errorf("dish %s: %w", it.DishID, domain.ErrNotFound)
		}
		dishID := it.DishID
		o.Items = append(o.Items, domain.OrderItem{
			OrderID: o.ID, DishID: &dishID, DishName: dp.Name,
			Quantity: it.Quantity, UnitPrice: dp.Price,
		})
		o.Total += float64(it.Quantity) * dp.Price
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrders) ListByRestaurant(_ context.Context, restaurantID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.RestaurantID == restaurantID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID string, target domain.OrderStatus) (domain.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	updated, err := domain.Transition(o, target)
	if err != nil {
		return domain.Order{}, err
	}
	f.orders[orderID] = updated
	return updated, nil
}

func (f *fakeOrders) Delete(_ context.Context, orderID string) error {
	if _, ok := f.orders[orderID]; !ok {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeOrders) MarkTablePaid(_ context.Context, tableID string) ([]domain.Order, error) {
	var settled []domain.Order
	for id, o := range f.orders {
		if o.TableID != nil && *o.TableID == tableID && !o.Status.Terminal() {
			o.Status = domain.StatusPaid
			o.UpdatedAt = time.Now().UTC()
			f.orders[id] = o
			settled = append(settled, o)
		}
	}
	return settled, nil
}

type capturePublisher struct {
	events []domain.OrderEvent
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, ev domain.OrderEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func newService(repo repository.Orders, pub Publisher) *OrderService {
	return NewOrderService(repo, pub, logger.New("orders-test"))
}

func TestCreate_SnapshotsPricesAndPublishes(t *testing.T) {
	repo := newFakeOrders()
	pub := &capturePublisher{}
	svc := newService(repo, pub)

	order, err := svc.Create(context.Background(), domain.OrderDraft{
		RestaurantID: "r1",
		Items: []domain.OrderItemDraft{
			{DishID: "dish-a", Quantity: 2},
			{DishID: "dish-b", Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 13.50, order.Total, 1e-9)
	assert.Equal(t, domain.StatusActive, order.Status)

	// a later price change must not touch the created order
	repo.prices["dish-a"] = repository.DishPrice{Name: "Margherita", Price: 9.99}
	assert.InDelta(t, 13.50, repo.orders[order.ID].Total, 1e-9)

	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.EventOrderCreated, pub.events[0].Type)
	assert.True(t, pub.events[0].Full())
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(newFakeOrders(), &capturePublisher{})

	cases := []domain.OrderDraft{
		{RestaurantID: "", Items: []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 1}}},
		{RestaurantID: "r1"},
		{RestaurantID: "r1", Items: []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 0}}},
		{RestaurantID: "r1", Items: []domain.OrderItemDraft{{DishID: "", Quantity: 1}}},
	}
	for _, draft := range cases {
		_, err := svc.Create(context.Background(), draft)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestCreate_NoEventOnRepositoryFailure(t *testing.T) {
	repo := newFakeOrders()
	repo.failAll = true
	pub := &capturePublisher{}
	svc := newService(repo, pub)

	_, err := svc.Create(context.Background(), domain.OrderDraft{
		RestaurantID: "r1",
		Items:        []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 1}},
	})
	var rerr *domain.RepositoryError
	require.ErrorAs(t, err, &rerr)
	assert.Empty(t, pub.events)
}

func TestChangeStatus_PublishesFullPayload(t *testing.T) {
	repo := newFakeOrders()
	pub := &capturePublisher{}
	svc := newService(repo, pub)

	order, err := svc.Create(context.Background(), domain.OrderDraft{
		RestaurantID: "r1",
		Items:        []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(context.Background(), order.ID, domain.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, updated.Status)

	last := pub.events[len(pub.events)-1]
	assert.Equal(t, domain.EventOrderStatusChanged, last.Type)
	require.True(t, last.Full())
	assert.Equal(t, domain.StatusReady, last.Order.Status)
}

func TestChangeStatus_IllegalTransition(t *testing.T) {
	repo := newFakeOrders()
	pub := &capturePublisher{}
	svc := newService(repo, pub)

	order, err := svc.Create(context.Background(), domain.OrderDraft{
		RestaurantID: "r1",
		Items:        []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(context.Background(), order.ID, domain.StatusPaid)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), order.ID, domain.StatusActive)
	var terr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Len(t, pub.events, 2) // created + first status change only
}

func TestDelete_AbsentIdIsSuccess(t *testing.T) {
	pub := &capturePublisher{}
	svc := newService(newFakeOrders(), pub)

	err := svc.Delete(context.Background(), "r1", "ghost")
	require.NoError(t, err)
	assert.Empty(t, pub.events)
}

func TestSettleTable(t *testing.T) {
	repo := newFakeOrders()
	pub := &capturePublisher{}
	svc := newService(repo, pub)

	table := "t1"
	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), domain.OrderDraft{
			RestaurantID: "r1", TableID: &table,
			Items: []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 1}},
		})
		require.NoError(t, err)
	}
	paid, err := svc.Create(context.Background(), domain.OrderDraft{
		RestaurantID: "r1", TableID: &table,
		Items: []domain.OrderItemDraft{{DishID: "dish-b", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(context.Background(), paid.ID, domain.StatusPaid)
	require.NoError(t, err)
	pub.events = nil

	settled, err := svc.SettleTable(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, settled, 2) // the already-paid order is untouched
	assert.Len(t, pub.events, 2)
	for _, ev := range pub.events {
		assert.Equal(t, domain.EventOrderStatusChanged, ev.Type)
		assert.Equal(t, domain.StatusPaid, ev.Status)
	}

	// second settlement finds nothing non-terminal
	settled, err = svc.SettleTable(context.Background(), table)
	require.NoError(t, err)
	assert.Empty(t, settled)
}

func TestResync_RepublishesAsCreated(t *testing.T) {
	repo := newFakeOrders()
	pub := &capturePublisher{}
	svc := newService(repo, pub)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), domain.OrderDraft{
			RestaurantID: "r1",
			Items:        []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 1}},
		})
		require.NoError(t, err)
	}
	pub.events = nil

	n, err := svc.Resync(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, pub.events, 3)
	for _, ev := range pub.events {
		assert.Equal(t, domain.EventOrderCreated, ev.Type)
		assert.True(t, ev.Full())
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	repo := newFakeOrders()
	pub := &capturePublisher{err: errors.New("broker down")}
	svc := newService(repo, pub)

	order, err := svc.Create(context.Background(), domain.OrderDraft{
		RestaurantID: "r1",
		Items:        []domain.OrderItemDraft{{DishID: "dish-a", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
}

func TestMultiPublisher(t *testing.T) {
	a := &capturePublisher{}
	b := &capturePublisher{err: errors.New("nack")}
	m := MultiPublisher{a, b}

	err := m.Publish(context.Background(), domain.NewOrderDeleted("r1", "o1"))
	require.Error(t, err)
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}
