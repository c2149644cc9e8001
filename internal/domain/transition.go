package domain

import "time"

// transitions lists the legal target statuses per current status.
// PAID and CANCELLED are terminal. ACTIVE -> PAID is allowed so that table
// settlement can close orders the kitchen never marked ready.
var transitions = map[OrderStatus][]OrderStatus{
	StatusActive:    {StatusReady, StatusPaid, StatusCancelled},
	StatusReady:     {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition applies a status change to a copy of the order and returns it.
// It performs no I/O: callers persist the result and publish the event.
func Transition(o Order, target OrderStatus) (Order, error) {
	if !target.Known() {
		return o, Validation("unknown status %q", string(target))
	}
	if !CanTransition(o.Status, target) {
		return o, &InvalidTransitionError{From: o.Status, To: target}
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return o, nil
}
