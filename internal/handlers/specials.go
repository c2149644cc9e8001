package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"qr-menu/internal/domain"
	"qr-menu/internal/recurrence"
)

type scheduleSpecialRequest struct {
	RestaurantID string                `json:"restaurant_id"`
	DishID       string                `json:"dish_id"`
	StartDate    string                `json:"start_date"` // YYYY-MM-DD
	Recurring    bool                  `json:"recurring"`
	Recurrence   domain.RecurrenceType `json:"recurrence,omitempty"`
	Weekdays     []int                 `json:"weekdays,omitempty"` // 0=Sunday .. 6=Saturday
	EndDate      string                `json:"end_date,omitempty"`
}

func (h *Handler) scheduleSpecial(c echo.Context) error {
	var req scheduleSpecialRequest
	if err := c.Bind(&req); err != nil {
		return h.problem(c, domain.Validation("invalid request payload"))
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return h.problem(c, domain.Validation("invalid start_date %q", req.StartDate))
	}
	var end time.Time
	if req.EndDate != "" {
		if end, err = parseDate(req.EndDate); err != nil {
			return h.problem(c, domain.Validation("invalid end_date %q", req.EndDate))
		}
	}
	weekdays := make([]time.Weekday, 0, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		if wd < 0 || wd > 6 {
			return h.problem(c, domain.Validation("invalid weekday index %d", wd))
		}
		weekdays = append(weekdays, time.Weekday(wd))
	}

	specials, err := h.specials.Schedule(c.Request().Context(), recurrence.Request{
		RestaurantID: req.RestaurantID,
		DishID:       req.DishID,
		StartDate:    start,
		Recurring:    req.Recurring,
		Type:         req.Recurrence,
		Weekdays:     weekdays,
		EndDate:      end,
	})
	if err != nil {
		return h.problem(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"occurrences": specials})
}

func (h *Handler) unscheduleGroup(c echo.Context) error {
	deleted, err := h.specials.UnscheduleGroup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.problem(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": deleted})
}

type removeSpecialsRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) removeSpecials(c echo.Context) error {
	var req removeSpecialsRequest
	if err := c.Bind(&req); err != nil {
		return h.problem(c, domain.Validation("invalid request payload"))
	}
	if err := h.specials.Remove(c.Request().Context(), req.IDs); err != nil {
		return h.problem(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
