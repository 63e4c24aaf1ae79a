package users

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
	"skycarry/pkg/utils"
)

type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new user handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	authResponse, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, authResponse)
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	authResponse, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, authResponse)
}

// GoogleLogin initiates the Google OAuth 2.0 login flow by redirecting the
// user to Google's consent screen. The state parameter is persisted in a
// short-lived cookie and checked on the callback.
func (h *Handler) GoogleLogin(c echo.Context) error {
	authURL, state, err := h.service.HandleGoogleLogin()
	if err != nil {
		c.Logger().Error("Handler.GoogleLogin: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Could not initiate Google login"})
	}

	cookie := new(http.Cookie)
	cookie.Name = "oauthstate"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)

	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback handles the redirect back from Google, validates the state
// cookie, and exchanges the code for our own JWT.
func (h *Handler) GoogleCallback(c echo.Context) error {
	oauthStateCookie, err := c.Cookie("oauthstate")
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid or missing state cookie"})
	}
	if c.QueryParam("state") != oauthStateCookie.Value {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid state parameter"})
	}

	// The state cookie is single use.
	oauthStateCookie.Value = ""
	oauthStateCookie.Expires = time.Unix(0, 0)
	c.SetCookie(oauthStateCookie)

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Authorization code not provided"})
	}

	authResponse, err := h.service.HandleGoogleCallback(c.Request().Context(), code)
	if err != nil {
		c.Logger().Error("Handler.GoogleCallback: ", err)
		return c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/login/error", h.service.GetClientOrigin()))
	}

	redirectURL := fmt.Sprintf("%s/login/success?token=%s", h.service.GetClientOrigin(), authResponse.AccessToken)
	return c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// Me returns the authenticated user's own record.
func (h *Handler) Me(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	var data models.UserUpdateData
	if !utils.BindAndValidate(c, &data) {
		return nil
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), userID, data)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *Handler) GetVerification(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	status, err := h.service.GetVerification(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, status)
}

func (h *Handler) SubmitVerification(c echo.Context) error {
	userID, err := utils.ExtractUserID(c)
	if err != nil {
		return err
	}

	var req models.VerificationRequest
	if !utils.BindAndValidate(c, &req) {
		return nil
	}

	status, err := h.service.SubmitVerification(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, status)
}
