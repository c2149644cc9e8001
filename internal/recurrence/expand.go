// Package recurrence expands a recurring daily-special request into
// concrete dated occurrences. Expansion is pure: persistence (and the
// existence check that makes re-runs idempotent) belongs to the repository.
package recurrence

import (
	"time"

	"github.com/google/uuid"

	"qr-menu/internal/domain"
)

type Request struct {
	RestaurantID string
	DishID       string
	StartDate    time.Time
	Recurring    bool
	Type         domain.RecurrenceType
	Weekdays     []time.Weekday
	EndDate      time.Time
}

// Expand produces one occurrence per matching date. All occurrences of a
// single call share a freshly generated recurrence-group id.
func Expand(req Request) ([]domain.DailySpecial, error) {
	if req.DishID == "" {
		return nil, domain.Validation("dish id is required")
	}
	if req.StartDate.IsZero() {
		return nil, domain.Validation("start date is required")
	}

	start := truncateToDay(req.StartDate)
	groupID := uuid.NewString()

	if !req.Recurring || req.Type == domain.RecurrenceNone || req.Type == "" {
		return []domain.DailySpecial{occurrence(req, start, groupID, nil)}, nil
	}

	if req.EndDate.IsZero() {
		return nil, domain.Validation("end date is required for a recurring special")
	}
	end := truncateToDay(req.EndDate)
	if end.Before(start) {
		return nil, domain.Validation("end date %s precedes start date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	switch req.Type {
	case domain.RecurrenceWeekly:
		return expandWeekly(req, start, end, groupID)
	case domain.RecurrenceMonthly:
		return expandMonthly(req, start, end, groupID), nil
	default:
		return nil, domain.Validation("unknown recurrence type %q", string(req.Type))
	}
}

func expandWeekly(req Request, start, end time.Time, groupID string) ([]domain.DailySpecial, error) {
	if len(req.Weekdays) == 0 {
		return nil, domain.Validation("weekly recurrence requires at least one weekday")
	}
	wanted := make(map[time.Weekday]bool, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		wanted[wd] = true
	}

	var out []domain.DailySpecial
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wanted[d.Weekday()] {
			out = append(out, occurrence(req, d, groupID, &end))
		}
	}
	return out, nil
}

// expandMonthly yields one occurrence per month on the start date's
// day-of-month. Months without that day (the 31st, Feb 30) are skipped
// rather than rolled over into the next month.
func expandMonthly(req Request, start, end time.Time, groupID string) []domain.DailySpecial {
	year, month, day := start.Date()

	var out []domain.DailySpecial
	for i := 0; ; i++ {
		anchor := time.Date(year, month+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		if anchor.After(end) {
			break
		}
		d := time.Date(year, month+time.Month(i), day, 0, 0, 0, 0, time.UTC)
		if d.Day() != day {
			continue // normalized past the month's end
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, occurrence(req, d, groupID, &end))
	}
	return out
}

func occurrence(req Request, date time.Time, groupID string, end *time.Time) domain.DailySpecial {
	s := domain.DailySpecial{
		ID:           uuid.NewString(),
		RestaurantID: req.RestaurantID,
		DishID:       req.DishID,
		Date:         date,
		Active:       true,
		Recurrence:   req.Type,
		GroupID:      groupID,
	}
	if !req.Recurring || req.Type == "" {
		s.Recurrence = domain.RecurrenceNone
	}
	if s.Recurrence == domain.RecurrenceWeekly {
		s.Weekdays = append([]time.Weekday(nil), req.Weekdays...)
	}
	if end != nil {
		e := *end
		s.EndDate = &e
	}
	return s
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
