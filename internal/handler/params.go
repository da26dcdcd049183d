package handler

import (
	"strconv"
	"time"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/middleware"
	"orchid-shop/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func uintParam(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.InvalidArgument("Invalid %s: %q", name, raw)
	}
	return uint(v), nil
}

func decimalQuery(c echo.Context, name string) (decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return decimal.Zero, apperr.InvalidArgument("Missing query parameter %s", name)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.InvalidArgument("Invalid %s: %q", name, raw)
	}
	return v, nil
}

func timeQuery(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, apperr.InvalidArgument("Missing query parameter %s", name)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.InvalidArgument("Invalid %s: expected RFC3339 time", name)
	}
	return t, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// callerFrom returns the identity the auth middleware attached. Routes that
// reach here have already passed the policy check.
func callerFrom(c echo.Context) (service.Caller, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return service.Caller{}, apperr.Unauthorized("Authentication required")
	}
	return service.Caller{
		AccountID:   id.AccountID,
		AccountName: id.AccountName,
		Role:        id.Role,
	}, nil
}
