package messages

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
	"skycarry/pkg/utils"
)

// Handler handles HTTP requests for messages.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new message handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Send(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	var req models.SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	msg, err := h.svc.Send(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, msg)
}

func (h *Handler) ListConversations(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	conversations, err := h.svc.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, conversations)
}

// GetThread returns the exchange with one counterpart and marks their
// messages read.
func (h *Handler) GetThread(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	counterpartID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid user ID"})
	}

	msgs, err := h.svc.GetThread(c.Request().Context(), userID, counterpartID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, msgs)
}
