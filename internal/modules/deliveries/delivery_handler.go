package deliveries

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
	"skycarry/pkg/utils"
)

// Handler handles HTTP requests for deliveries.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new delivery handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateDeliveryRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	delivery, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, delivery)
}

func (h *Handler) Get(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid delivery ID"})
	}

	detail, err := h.svc.Get(c.Request().Context(), id, userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) ListMine(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	deliveries, err := h.svc.ListMine(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, deliveries)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid delivery ID"})
	}

	var req models.UpdateDeliveryStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	delivery, err := h.svc.UpdateStatus(c.Request().Context(), id, userID, req.Status)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, delivery)
}

func (h *Handler) UpdatePayment(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid delivery ID"})
	}

	var req models.UpdatePaymentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	delivery, err := h.svc.UpdatePayment(c.Request().Context(), id, userID, req.PaymentStatus)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, delivery)
}
