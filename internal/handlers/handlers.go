// Package handlers exposes the order lifecycle over HTTP. Authorization is
// the gateway's problem: every mutating route assumes the caller already
// holds the matching capability.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"qr-menu/internal/domain"
	"qr-menu/internal/logger"
	"qr-menu/internal/recurrence"
)

type OrderAPI interface {
	Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
	List(ctx context.Context, restaurantID string) ([]domain.Order, error)
	ChangeStatus(ctx context.Context, orderID string, target domain.OrderStatus) (domain.Order, error)
	Delete(ctx context.Context, restaurantID, orderID string) error
	SettleTable(ctx context.Context, tableID string) ([]domain.Order, error)
	Resync(ctx context.Context, restaurantID string) (int, error)
}

type SpecialAPI interface {
	Schedule(ctx context.Context, req recurrence.Request) ([]domain.DailySpecial, error)
	UnscheduleGroup(ctx context.Context, groupID string) (int, error)
	Remove(ctx context.Context, ids []string) error
}

type Handler struct {
	orders   OrderAPI
	specials SpecialAPI
	healthy  func(ctx context.Context) error
	log      *logger.Logger
}

func New(orders OrderAPI, specials SpecialAPI, healthy func(ctx context.Context) error, log *logger.Logger) *Handler {
	return &Handler{orders: orders, specials: specials, healthy: healthy, log: log}
}

func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.POST("/orders", h.createOrder)
	v1.PATCH("/orders/:id/status", h.changeStatus)
	v1.DELETE("/orders/:id", h.deleteOrder)
	v1.GET("/restaurants/:id/orders", h.listOrders)
	v1.POST("/restaurants/:id/sync-orders", h.syncOrders)
	v1.POST("/tables/:id/settle", h.settleTable)
	v1.POST("/specials", h.scheduleSpecial)
	v1.DELETE("/specials/groups/:id", h.unscheduleGroup)
	v1.DELETE("/specials", h.removeSpecials)

	e.GET("/healthz", h.health)
}

// problem maps a domain error onto a problem-JSON response.
func (h *Handler) problem(c echo.Context, err error) error {
	var (
		verr *domain.ValidationError
		terr *domain.InvalidTransitionError
	)
	code := http.StatusInternalServerError
	typ := "internal_error"
	switch {
	case errors.As(err, &verr):
		code, typ = http.StatusBadRequest, "validation_error"
	case errors.As(err, &terr):
		code, typ = http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		code, typ = http.StatusNotFound, "not_found"
	default:
		h.log.Error("request_failed", err, map[string]any{"path": c.Path()})
	}
	return c.JSON(code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": err.Error(),
	})
}

func (h *Handler) health(c echo.Context) error {
	if h.healthy != nil {
		if err := h.healthy(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "degraded", "detail": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}
