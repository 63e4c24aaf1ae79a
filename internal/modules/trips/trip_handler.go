package trips

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
	"skycarry/internal/storage"
	"skycarry/pkg/utils"
)

// Handler handles HTTP requests for trips.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new trip handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateTripRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	trip, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, trip)
}

// List handles GET /api/trips with the optional query filters
// departureAirport, destinationCity, minWeight and departureDate. An omitted
// parameter places no constraint on that field.
func (h *Handler) List(c echo.Context) error {
	var filter storage.TripFilter

	if v := c.QueryParam("departureAirport"); v != "" {
		filter.DepartureAirport = &v
	}
	if v := c.QueryParam("destinationCity"); v != "" {
		filter.DestinationCity = &v
	}
	if v := c.QueryParam("minWeight"); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid minWeight"})
		}
		filter.MinWeight = &weight
	}
	if v := c.QueryParam("departureDate"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid departureDate, expected YYYY-MM-DD"})
		}
		filter.DepartureDate = &date
	}

	trips, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, trips)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid trip ID"})
	}

	trip, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, trip)
}

// ListByUser returns a user's trips; without the :userId param it defaults to
// the authenticated user.
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

	trips, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, trips)
}

func (h *Handler) Update(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid trip ID"})
	}

	var data models.TripUpdateData
	if !utils.BindAndValidate(c, &data) {
		return nil
	}

	trip, err := h.svc.Update(c.Request().Context(), id, userID, data)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, trip)
}
