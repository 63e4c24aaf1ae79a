package reviews

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
	"skycarry/pkg/utils"
)

// Handler handles HTTP requests for reviews.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new review handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateReviewRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	review, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, review)
}

func (h *Handler) ListByUser(c echo.Context) error {
	revieweeID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid user ID"})
	}

	reviews, err := h.svc.ListByReviewee(c.Request().Context(), revieweeID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, reviews)
}
