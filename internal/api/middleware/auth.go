package middleware

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
)

// JWTAuth configures and returns Echo's JWT middleware. On success it copies
// the custom claims into the request context under "userID" and "userEmail".
func JWTAuth(jwtSecretKey string) echo.MiddlewareFunc {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.JwtCustomClaims)
		},
		SigningKey: []byte(jwtSecretKey),

		SuccessHandler: func(c echo.Context) {
			// "user" is the default context key used by echo-jwt.
			userToken := c.Get("user").(*jwt.Token)
			claims := userToken.Claims.(*models.JwtCustomClaims)

			c.Set("userID", claims.UserID)
			c.Set("userEmail", claims.Email)
		},

		ErrorHandler: func(c echo.Context, err error) error {
			c.Logger().Errorf("JWT error: %v", err)

			if errors.Is(err, echojwt.ErrJWTMissing) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing or malformed JWT"})
			}
			if errors.Is(err, jwt.ErrTokenExpired) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Token has expired"})
			}
			if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid token signature"})
			}
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid or expired JWT"})
		},
	}
	return echojwt.WithConfig(config)
}
