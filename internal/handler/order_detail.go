package handler

import (
	"net/http"
	"strconv"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderDetailHandler struct {
	detailService service.OrderDetailService
}

func NewOrderDetailHandler(detailService service.OrderDetailService) *OrderDetailHandler {
	return &OrderDetailHandler{
		detailService: detailService,
	}
}

func (h *OrderDetailHandler) List(c echo.Context) error {
	details, err := h.detailService.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderDetailHandler) Get(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.detailService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *OrderDetailHandler) ListByOrder(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uintParam(c, "orderId")
	if err != nil {
		return err
	}
	details, err := h.detailService.ListByOrder(c.Request().Context(), caller, orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderDetailHandler) ListByOrchid(c echo.Context) error {
	orchidID, err := uintParam(c, "orchidId")
	if err != nil {
		return err
	}
	details, err := h.detailService.ListByOrchid(c.Request().Context(), orchidID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderDetailHandler) GetByOrderAndOrchid(c echo.Context) error {
	orderID, err := uintParam(c, "orderId")
	if err != nil {
		return err
	}
	orchidID, err := uintParam(c, "orchidId")
	if err != nil {
		return err
	}
	detail, err := h.detailService.GetByOrderAndOrchid(c.Request().Context(), orderID, orchidID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *OrderDetailHandler) TotalQuantityByOrchid(c echo.Context) error {
	orchidID, err := uintParam(c, "orchidId")
	if err != nil {
		return err
	}
	total, err := h.detailService.TotalQuantityByOrchid(c.Request().Context(), orchidID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, total)
}

func (h *OrderDetailHandler) TotalAmountByOrder(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uintParam(c, "orderId")
	if err != nil {
		return err
	}
	total, err := h.detailService.TotalAmountByOrder(c.Request().Context(), caller, orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, total)
}

func (h *OrderDetailHandler) ListByPriceRange(c echo.Context) error {
	min, err := decimalQuery(c, "minPrice")
	if err != nil {
		return err
	}
	max, err := decimalQuery(c, "maxPrice")
	if err != nil {
		return err
	}
	details, err := h.detailService.ListByPriceRange(c.Request().Context(), min, max)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderDetailHandler) ListByMinQuantity(c echo.Context) error {
	quantity, err := strconv.Atoi(c.Param("quantity"))
	if err != nil {
		return apperr.InvalidArgument("Invalid quantity: %q", c.Param("quantity"))
	}
	details, err := h.detailService.ListByMinQuantity(c.Request().Context(), quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}
