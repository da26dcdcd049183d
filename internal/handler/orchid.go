package handler

import (
	"net/http"
	"strconv"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/dto"
	"orchid-shop/internal/service"

	"github.com/labstack/echo/v4"
)

type OrchidHandler struct {
	orchidService service.OrchidService
}

func NewOrchidHandler(orchidService service.OrchidService) *OrchidHandler {
	return &OrchidHandler{
		orchidService: orchidService,
	}
}

func (h *OrchidHandler) List(c echo.Context) error {
	orchids, err := h.orchidService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchids)
}

func (h *OrchidHandler) Get(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	orchid, err := h.orchidService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchid)
}

func (h *OrchidHandler) GetByName(c echo.Context) error {
	orchid, err := h.orchidService.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchid)
}

func (h *OrchidHandler) ListByCategory(c echo.Context) error {
	categoryID, err := uintParam(c, "categoryId")
	if err != nil {
		return err
	}
	orchids, err := h.orchidService.ListByCategory(c.Request().Context(), categoryID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchids)
}

func (h *OrchidHandler) ListByNatural(c echo.Context) error {
	natural, err := strconv.ParseBool(c.Param("isNatural"))
	if err != nil {
		return apperr.InvalidArgument("Invalid isNatural: %q", c.Param("isNatural"))
	}
	orchids, err := h.orchidService.ListByNatural(c.Request().Context(), natural)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchids)
}

func (h *OrchidHandler) ListByPriceRange(c echo.Context) error {
	min, err := decimalQuery(c, "minPrice")
	if err != nil {
		return err
	}
	max, err := decimalQuery(c, "maxPrice")
	if err != nil {
		return err
	}
	orchids, err := h.orchidService.ListByPriceRange(c.Request().Context(), min, max)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchids)
}

func (h *OrchidHandler) SearchByName(c echo.Context) error {
	orchids, err := h.orchidService.SearchByName(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchids)
}

func (h *OrchidHandler) SearchByDescription(c echo.Context) error {
	orchids, err := h.orchidService.SearchByDescription(c.Request().Context(), c.QueryParam("description"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchids)
}

func (h *OrchidHandler) SortedByPriceAsc(c echo.Context) error {
	return h.sortedByPrice(c, true)
}

func (h *OrchidHandler) SortedByPriceDesc(c echo.Context) error {
	return h.sortedByPrice(c, false)
}

func (h *OrchidHandler) sortedByPrice(c echo.Context, ascending bool) error {
	orchids, err := h.orchidService.ListSortedByPrice(c.Request().Context(), ascending)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchids)
}

func (h *OrchidHandler) Exists(c echo.Context) error {
	exists, err := h.orchidService.Exists(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exists)
}

func (h *OrchidHandler) Create(c echo.Context) error {
	var req dto.OrchidRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	orchid, err := h.orchidService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, orchid)
}

func (h *OrchidHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.OrchidRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	orchid, err := h.orchidService.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orchid)
}

func (h *OrchidHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.orchidService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
