package utils

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the process-wide request validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// BindAndValidate binds the request body into dst and runs struct validation,
// writing the 400 response itself on failure. Handlers should return
// immediately when ok is false.
func BindAndValidate(c echo.Context, dst interface{}) (ok bool) {
	if err := c.Bind(dst); err != nil {
		_ = c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
		return false
	}
	if err := GetValidator().Struct(dst); err != nil {
		_ = c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
		return false
	}
	return true
}

// ExtractUserID pulls the authenticated user id placed into the context by
// the JWT middleware. A missing id means the route was wired without the
// middleware; treat it as unauthenticated.
func ExtractUserID(c echo.Context) (int, error) {
	userID, ok := c.Get("userID").(int)
	if !ok || userID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return userID, nil
}

// HandleServiceError maps the service-layer sentinel errors onto HTTP status
// codes. Anything unrecognized becomes a generic 500 so internal detail never
// leaks to the client.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Resource not found"})
	case errors.Is(err, models.ErrForbidden):
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "You are not allowed to perform this action"})
	case errors.Is(err, models.ErrConflict):
		return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Resource already exists"})
	case errors.Is(err, models.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid email or password"})
	case errors.Is(err, models.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Status transition not allowed"})
	case errors.Is(err, models.ErrPackageUnavailable):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Package is not available for matching"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Something went wrong"})
	}
}
