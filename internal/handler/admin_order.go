package handler

import (
	"net/http"

	"orchid-shop/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	orderService service.OrderService
}

func NewAdminOrderHandler(orderService service.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{
		orderService: orderService,
	}
}

func (h *AdminOrderHandler) List(c echo.Context) error {
	orders, err := h.orderService.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) ListByStatus(c echo.Context) error {
	orders, err := h.orderService.ListByStatus(c.Request().Context(), c.Param("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) ListByDateRange(c echo.Context) error {
	start, err := timeQuery(c, "start")
	if err != nil {
		return err
	}
	end, err := timeQuery(c, "end")
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListByDateRange(c.Request().Context(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) ListByAccountAndStatus(c echo.Context) error {
	accountID, err := uintParam(c, "accountId")
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListByAccountAndStatus(c.Request().Context(), accountID, c.Param("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) ListByAmountRange(c echo.Context) error {
	min, err := decimalQuery(c, "minAmount")
	if err != nil {
		return err
	}
	max, err := decimalQuery(c, "maxAmount")
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListByAmountRange(c.Request().Context(), min, max)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) ListNewestFirst(c echo.Context) error {
	orders, err := h.orderService.ListNewestFirst(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) TotalAmountByStatus(c echo.Context) error {
	total, err := h.orderService.TotalAmountByStatus(c.Request().Context(), c.Param("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, total)
}

func (h *AdminOrderHandler) CountByAccount(c echo.Context) error {
	accountID, err := uintParam(c, "accountId")
	if err != nil {
		return err
	}
	count, err := h.orderService.CountByAccount(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, count)
}

func (h *AdminOrderHandler) UpdateStatus(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orderService.UpdateStatus(c.Request().Context(), id, c.Param("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminOrderHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.orderService.DeleteOrderAdmin(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
