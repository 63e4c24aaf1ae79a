package packages

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
	"skycarry/internal/storage"
	"skycarry/pkg/utils"
)

// Handler handles HTTP requests for packages.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new package handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	var req models.CreatePackageRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	pkg, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, pkg)
}

// List handles GET /api/packages with the optional query filters senderCity,
// receiverCity, maxWeight and status.
func (h *Handler) List(c echo.Context) error {
	var filter storage.PackageFilter

	if v := c.QueryParam("senderCity"); v != "" {
		filter.SenderCity = &v
	}
	if v := c.QueryParam("receiverCity"); v != "" {
		filter.ReceiverCity = &v
	}
	if v := c.QueryParam("maxWeight"); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid maxWeight"})
		}
		filter.MaxWeight = &weight
	}
	if v := c.QueryParam("status"); v != "" {
		status := models.PackageStatus(v)
		filter.Status = &status
	}

	pkgs, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, pkgs)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid package ID"})
	}

	pkg, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, pkg)
}

// ListByUser returns a user's packages; without the :userId param it defaults
// to the authenticated user.
func (h *Handler) ListByUser(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	if param := c.Param("userId"); param != "" {
		userID, err = strconv.Atoi(param)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid user ID"})
		}
	}

	pkgs, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, pkgs)
}

func (h *Handler) Update(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid package ID"})
	}

	var data models.PackageUpdateData
	if !utils.BindAndValidate(c, &data) {
		return nil
	}

	pkg, err := h.svc.Update(c.Request().Context(), id, userID, data)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, pkg)
}
