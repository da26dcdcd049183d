package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/dto"
	"orchid-shop/internal/service"

	"github.com/labstack/echo/v4"
)

const maxCallbackBody = 64 << 10

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePaymentURL accepts {"orderId": n} or a bare order id as the body.
func (h *PaymentHandler) CreatePaymentURL(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCallbackBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	orderID, err := parseOrderIDBody(body)
	if err != nil {
		return err
	}

	url, err := h.paymentService.CreatePaymentURL(ctx, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.PaymentURLResponse{URL: url})
}

func parseOrderIDBody(body []byte) (uint, error) {
	body = bytes.TrimSpace(body)

	var bare uint
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var req dto.PaymentURLRequest
	if err := json.Unmarshal(body, &req); err != nil || req.OrderID == 0 {
		return 0, apperr.InvalidArgument("Invalid payload: orderId is required")
	}
	return req.OrderID, nil
}

// HandlePayment receives the gateway's notification. Fields may arrive as
// strings or numbers.
func (h *PaymentHandler) HandlePayment(c echo.Context) error {
	ctx := c.Request().Context()

	dec := json.NewDecoder(io.LimitReader(c.Request().Body, maxCallbackBody))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return apperr.InvalidArgument("Invalid payload: body must be a JSON object")
	}

	msg, err := h.paymentService.HandlePayment(ctx, dto.PaymentCallback{
		OrderID:    field(payload, "orderId"),
		OrderInfo:  field(payload, "orderInfo"),
		Message:    field(payload, "message"),
		ResultCode: field(payload, "resultCode"),
		TransID:    field(payload, "transId"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

func field(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
