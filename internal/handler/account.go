package handler

import (
	"net/http"

	"orchid-shop/internal/dto"
	"orchid-shop/internal/service"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

func (h *AccountHandler) Me(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	account, err := h.accountService.Get(c.Request().Context(), caller.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.accountService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) Get(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	account, err := h.accountService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) ChangeRole(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accountService.ChangeRole(c.Request().Context(), id, req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}
