package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"skycarry/internal/airports"
	"skycarry/internal/api"
	"skycarry/internal/config"
	"skycarry/internal/modules/deliveries"
	"skycarry/internal/modules/messages"
	"skycarry/internal/modules/packages"
	"skycarry/internal/modules/reviews"
	"skycarry/internal/modules/trips"
	"skycarry/internal/modules/users"
	"skycarry/internal/realtime"
	"skycarry/internal/storage"
	emailSvc "skycarry/pkg/email"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// --- Storage selection ---
	// A configured DATABASE_URL selects Postgres; otherwise everything runs
	// on the in-memory store.
	var store storage.Storage
	if cfg.DatabaseURL != "" {
		dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to parse database configuration")
		}
		dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to create connection pool")
		}
		defer dbPool.Close()

		if err := dbPool.Ping(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("unable to ping database")
		}
		logger.Info().Msg("connected to postgres")
		store = storage.NewPostgres(dbPool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory storage")
		store = storage.NewMemory()
	}

	// --- Email ---
	var emailer emailSvc.ServiceInterface = emailSvc.NoopSender{}
	if cfg.AWSRegion != "" && cfg.EmailFrom != "" {
		sender, err := emailSvc.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize SES sender")
		}
		emailer = sender
	}
	templateManager, err := emailSvc.NewTemplateManager()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse email templates")
	}

	// --- Google OAuth ---
	var googleOAuthConfig *oauth2.Config
	if cfg.GoogleClientID != "" {
		googleOAuthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	// --- Dependency injection ---
	userService := users.NewService(store, cfg.JWTSecret, cfg.ClientOrigin, googleOAuthConfig)
	userHandler := users.NewHandler(userService)

	tripService := trips.NewService(store)
	tripHandler := trips.NewHandler(tripService)

	packageService := packages.NewService(store)
	packageHandler := packages.NewHandler(packageService)

	deliveryService := deliveries.NewService(store, emailer, templateManager)
	deliveryHandler := deliveries.NewHandler(deliveryService)

	messageService := messages.NewService(store, nil)
	messageHandler := messages.NewHandler(messageService)

	reviewService := reviews.NewService(store)
	reviewHandler := reviews.NewHandler(reviewService)

	airportHandler := airports.NewHandler()

	// The hub pushes through the message service and the service persists
	// frames arriving on the hub, so wire the two after construction.
	hub := realtime.NewHub(logger)
	messageService.SetPusher(hub)
	go hub.Run()
	wsHandler := realtime.NewHandler(hub, messageService, cfg.JWTSecret)

	api.SetupRoutes(e, cfg.JWTSecret,
		userHandler,
		tripHandler,
		packageHandler,
		deliveryHandler,
		messageHandler,
		reviewHandler,
		airportHandler,
		wsHandler,
	)

	// --- Start server with graceful shutdown ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server exiting")
}
