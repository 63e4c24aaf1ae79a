package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"skycarry/internal/airports"
	"skycarry/internal/api/middleware"
	"skycarry/internal/modules/deliveries"
	"skycarry/internal/modules/messages"
	"skycarry/internal/modules/packages"
	"skycarry/internal/modules/reviews"
	"skycarry/internal/modules/trips"
	"skycarry/internal/modules/users"
	"skycarry/internal/realtime"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	userHandler *users.Handler,
	tripHandler *trips.Handler,
	packageHandler *packages.Handler,
	deliveryHandler *deliveries.Handler,
	messageHandler *messages.Handler,
	reviewHandler *reviews.Handler,
	airportHandler *airports.Handler,
	wsHandler *realtime.Handler,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to SkyCarry!"})
	})

	apiGroup := e.Group("/api")

	// --- Auth (public) ---
	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", userHandler.Register)
		authGroup.POST("/login", userHandler.Login)
		authGroup.GET("/google", userHandler.GoogleLogin)
		authGroup.GET("/google/callback", userHandler.GoogleCallback)
		authGroup.GET("/me", userHandler.Me, authMiddleware)
		authGroup.PUT("/me", userHandler.UpdateProfile, authMiddleware)
	}

	// --- Trips ---
	tripGroup := apiGroup.Group("/trips")
	{
		tripGroup.GET("", tripHandler.List)
		tripGroup.GET("/:id", tripHandler.Get)
		tripGroup.POST("", tripHandler.Create, authMiddleware)
		tripGroup.PUT("/:id", tripHandler.Update, authMiddleware)
		tripGroup.GET("/user/:userId", tripHandler.ListByUser, authMiddleware)
		tripGroup.GET("/user", tripHandler.ListByUser, authMiddleware)
	}

	// --- Packages ---
	packageGroup := apiGroup.Group("/packages")
	{
		packageGroup.GET("", packageHandler.List)
		packageGroup.GET("/:id", packageHandler.Get)
		packageGroup.POST("", packageHandler.Create, authMiddleware)
		packageGroup.PUT("/:id", packageHandler.Update, authMiddleware)
		packageGroup.GET("/user/:userId", packageHandler.ListByUser, authMiddleware)
		packageGroup.GET("/user", packageHandler.ListByUser, authMiddleware)
	}

	// --- Deliveries ---
	deliveryGroup := apiGroup.Group("/deliveries", authMiddleware)
	{
		deliveryGroup.GET("", deliveryHandler.ListMine)
		deliveryGroup.POST("", deliveryHandler.Create)
		deliveryGroup.GET("/:id", deliveryHandler.Get)
		deliveryGroup.PUT("/:id/status", deliveryHandler.UpdateStatus)
		deliveryGroup.PUT("/:id/payment", deliveryHandler.UpdatePayment)
	}

	// --- Messages ---
	messageGroup := apiGroup.Group("/messages", authMiddleware)
	{
		messageGroup.GET("", messageHandler.ListConversations)
		messageGroup.GET("/:userId", messageHandler.GetThread)
		messageGroup.POST("", messageHandler.Send)
	}

	// --- Reviews ---
	reviewGroup := apiGroup.Group("/reviews")
	{
		reviewGroup.GET("/user/:userId", reviewHandler.ListByUser)
		reviewGroup.POST("", reviewHandler.Create, authMiddleware)
	}

	// --- Verification ---
	verificationGroup := apiGroup.Group("/verification", authMiddleware)
	{
		verificationGroup.GET("", userHandler.GetVerification)
		verificationGroup.POST("", userHandler.SubmitVerification)
	}

	// --- Airports (static lookup, public) ---
	apiGroup.GET("/airports", airportHandler.Search)

	// --- Realtime chat ---
	e.GET("/ws", wsHandler.Serve)
}
