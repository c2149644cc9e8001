// Package reconciler maintains a view's local replica of a restaurant's
// orders. The replica is advisory: the repository owns the truth, and the
// replica converges on it by applying at-least-once events idempotently.
package reconciler

import (
	"sync"
	"time"

	"qr-menu/internal/domain"
)

// Reconciler is owned by exactly one view instance. It keys orders by id
// and keeps them newest-first, matching the repository's list order.
type Reconciler struct {
	mu   sync.Mutex
	byID map[string]*domain.Order
	ids  []string // newest first
}

func New() *Reconciler {
	return &Reconciler{byID: make(map[string]*domain.Order)}
}

// Apply folds one event into the replica. Duplicate deliveries and snapshot
// replays are no-ops by construction.
func (r *Reconciler) Apply(ev domain.OrderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case domain.EventOrderCreated:
		if _, ok := r.byID[ev.OrderID]; ok {
			return // duplicate delivery or snapshot replay
		}
		if !ev.Full() {
			return
		}
		r.insert(*ev.Order)

	case domain.EventOrderStatusChanged:
		if o, ok := r.byID[ev.OrderID]; ok {
			o.Status = ev.Status
			o.UpdatedAt = ev.OccurredAt
			return
		}
		// First sight of this order. Insert only a full payload; a bare
		// id/status pair would make a malformed record.
		if ev.Full() {
			r.insert(*ev.Order)
		}

	case domain.EventOrderDeleted:
		if _, ok := r.byID[ev.OrderID]; !ok {
			return
		}
		delete(r.byID, ev.OrderID)
		for i, id := range r.ids {
			if id == ev.OrderID {
				r.ids = append(r.ids[:i], r.ids[i+1:]...)
				break
			}
		}
	}
}

func (r *Reconciler) insert(o domain.Order) {
	r.byID[o.ID] = &o
	r.ids = append([]string{o.ID}, r.ids...)
}

// Orders returns a copy of the replica, newest first.
func (r *Reconciler) Orders() []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, *r.byID[id])
	}
	return out
}

func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// TableStats are the derived counters a table-scoped view renders.
type TableStats struct {
	ActiveOrders int
	ReadyOrders  int
	ItemCount    int
}

func (r *Reconciler) TableStats(tableID string) TableStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var st TableStats
	for _, o := range r.byID {
		if o.TableID == nil || *o.TableID != tableID {
			continue
		}
		switch o.Status {
		case domain.StatusActive:
			st.ActiveOrders++
		case domain.StatusReady:
			st.ReadyOrders++
		}
		for _, it := range o.Items {
			st.ItemCount += it.Quantity
		}
	}
	return st
}

// Age returns the time elapsed since an order's creation, computed at render
// time rather than stored.
func (r *Reconciler) Age(orderID string, now time.Time) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return 0, false
	}
	return now.Sub(o.CreatedAt), true
}
