package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"qr-menu/internal/domain"
)

type createOrderRequest struct {
	RestaurantID string            `json:"restaurant_id"`
	TableID      *string           `json:"table_id,omitempty"`
	WaiterName   *string           `json:"waiter_name,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	Items        []createOrderItem `json:"items"`
}

type createOrderItem struct {
	DishID   string  `json:"dish_id"`
	Quantity int     `json:"quantity"`
	Notes    *string `json:"notes,omitempty"`
}

func (h *Handler) createOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return h.problem(c, domain.Validation("invalid request payload"))
	}

	draft := domain.OrderDraft{
		RestaurantID: req.RestaurantID,
		TableID:      req.TableID,
		WaiterName:   req.WaiterName,
		Notes:        req.Notes,
	}
	for _, it := range req.Items {
		draft.Items = append(draft.Items, domain.OrderItemDraft{
			DishID: it.DishID, Quantity: it.Quantity, Notes: it.Notes,
		})
	}

	order, err := h.orders.Create(c.Request().Context(), draft)
	if err != nil {
		return h.problem(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) listOrders(c echo.Context) error {
	orders, err := h.orders.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.problem(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

type changeStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) changeStatus(c echo.Context) error {
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return h.problem(c, domain.Validation("invalid request payload"))
	}
	order, err := h.orders.ChangeStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return h.problem(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) deleteOrder(c echo.Context) error {
	restaurantID := c.QueryParam("restaurant_id")
	if err := h.orders.Delete(c.Request().Context(), restaurantID, c.Param("id")); err != nil {
		return h.problem(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) settleTable(c echo.Context) error {
	settled, err := h.orders.SettleTable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.problem(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"settled": settled})
}

func (h *Handler) syncOrders(c echo.Context) error {
	n, err := h.orders.Resync(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.problem(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"republished": n})
}
