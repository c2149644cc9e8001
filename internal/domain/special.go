package domain

import "time"

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// DailySpecial is one dated occurrence of a promotional dish. Occurrences
// produced by a single recurring request share GroupID so the whole batch
// can be deleted as a unit.
type DailySpecial struct {
	ID           string         `json:"id"`
	RestaurantID string         `json:"restaurant_id"`
	DishID       string         `json:"dish_id"`
	Date         time.Time      `json:"date"` // date-only, midnight UTC
	Active       bool           `json:"active"`
	Recurrence   RecurrenceType `json:"recurrence"`
	Weekdays     []time.Weekday `json:"weekdays,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	GroupID      string         `json:"group_id"`
}
