package handler

import (
	"net/http"

	"orchid-shop/internal/dto"
	"orchid-shop/internal/service"

	"github.com/labstack/echo/v4"
)

// OrderHandler serves the signed-in account's own orders.
type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) AddItem(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.AddOrderItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, msg, err := h.orderService.AddLineItem(c.Request().Context(), caller.AccountID, req.OrchidID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.AddOrderItemResponse{Message: msg, Order: order})
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListMine(c.Request().Context(), caller.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListMineByStatus(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListMineByStatus(c.Request().Context(), caller.AccountID, c.Param("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orderService.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AddOrderItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), caller.AccountID, id, req.OrchidID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.orderService.DeleteOrder(c.Request().Context(), caller.AccountID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
