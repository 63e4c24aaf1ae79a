package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skycarry/internal/airports"
	"skycarry/internal/models"
	"skycarry/internal/modules/deliveries"
	"skycarry/internal/modules/messages"
	"skycarry/internal/modules/packages"
	"skycarry/internal/modules/reviews"
	"skycarry/internal/modules/trips"
	"skycarry/internal/modules/users"
	"skycarry/internal/realtime"
	"skycarry/internal/storage"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	store := storage.NewMemory()
	logger := zerolog.Nop()

	userService := users.NewService(store, testSecret, "http://localhost:3000", nil)
	tripService := trips.NewService(store)
	packageService := packages.NewService(store)
	deliveryService := deliveries.NewService(store, nil, nil)
	messageService := messages.NewService(store, nil)
	reviewService := reviews.NewService(store)

	hub := realtime.NewHub(logger)
	messageService.SetPusher(hub)
	go hub.Run()

	e := echo.New()
	SetupRoutes(e, testSecret,
		users.NewHandler(userService),
		trips.NewHandler(tripService),
		packages.NewHandler(packageService),
		deliveries.NewHandler(deliveryService),
		messages.NewHandler(messageService),
		reviews.NewHandler(reviewService),
		airports.NewHandler(),
		realtime.NewHandler(hub, messageService, testSecret),
	)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, e *echo.Echo, email, name string) models.AuthResponse {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email:    email,
		Password: "password123",
		FullName: name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	auth := decode[models.AuthResponse](t, rec)
	require.NotEmpty(t, auth.AccessToken)
	return auth
}

func TestMarketplaceEndToEnd(t *testing.T) {
	e := newTestServer(t)

	traveler := register(t, e, "traveler@example.com", "Abebe Traveler")
	sender := register(t, e, "sender@example.com", "Sara Sender")

	// Traveler posts a trip.
	departure := time.Now().Add(72 * time.Hour).UTC()
	rec := do(t, e, http.MethodPost, "/api/trips", traveler.AccessToken, models.CreateTripRequest{
		DepartureAirport: "JFK",
		DepartureCity:    "New York",
		DestinationCity:  "Addis Ababa",
		DepartureDate:    departure,
		ArrivalDate:      departure.Add(14 * time.Hour),
		AvailableWeight:  10,
		PricePerKg:       15,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	trip := decode[models.Trip](t, rec)

	// Sender posts a package.
	rec = do(t, e, http.MethodPost, "/api/packages", sender.AccessToken, models.CreatePackageRequest{
		SenderCity:     "New York",
		ReceiverCity:   "Addis Ababa",
		PackageType:    "documents",
		Weight:         5,
		OfferedPayment: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pkg := decode[models.Package](t, rec)
	assert.Equal(t, models.PackagePending, pkg.Status)

	// Both listings are publicly visible, with redacted owner profiles.
	rec = do(t, e, http.MethodGet, "/api/trips?destinationCity=addis&minWeight=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]models.TripWithTraveler](t, rec)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Traveler)
	assert.Equal(t, "Abebe Traveler", listed[0].Traveler.FullName)

	// Sender requests the match.
	rec = do(t, e, http.MethodPost, "/api/deliveries", sender.AccessToken, models.CreateDeliveryRequest{
		TripID:    trip.ID,
		PackageID: pkg.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	delivery := decode[models.Delivery](t, rec)
	assert.Equal(t, models.DeliveryPending, delivery.Status)

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/api/packages/%d", pkg.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	matched := decode[models.PackageWithSender](t, rec)
	assert.Equal(t, models.PackageMatched, matched.Status)

	// Traveler carries and completes the delivery.
	statusPath := fmt.Sprintf("/api/deliveries/%d/status", delivery.ID)
	rec = do(t, e, http.MethodPut, statusPath, traveler.AccessToken, models.UpdateDeliveryStatusRequest{
		Status: models.DeliveryInTransit,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodPut, statusPath, traveler.AccessToken, models.UpdateDeliveryStatusRequest{
		Status: models.DeliveryDelivered,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/api/packages/%d", pkg.ID), "", nil)
	delivered := decode[models.PackageWithSender](t, rec)
	assert.Equal(t, models.PackageDelivered, delivered.Status)

	// Sender reviews the traveler; the aggregate lands on the profile.
	rec = do(t, e, http.MethodPost, "/api/reviews", sender.AccessToken, models.CreateReviewRequest{
		RevieweeID: traveler.User.ID,
		DeliveryID: &delivery.ID,
		Rating:     5,
		Comment:    "arrived intact",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/auth/me", traveler.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[models.User](t, rec)
	assert.Equal(t, 1, profile.ReviewCount)
	assert.InDelta(t, 5.0, profile.Rating, 1e-9)
}

func TestAuthRequired(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/trips", "", models.CreateTripRequest{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/deliveries", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
		FullName: "X",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	register(t, e, "dup@example.com", "First User")
	rec = do(t, e, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
		FullName: "Second User",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	e := newTestServer(t)
	register(t, e, "alice@example.com", "Alice")

	rec := do(t, e, http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	auth := decode[models.AuthResponse](t, rec)
	assert.NotEmpty(t, auth.AccessToken)

	rec = do(t, e, http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateForeignListingForbidden(t *testing.T) {
	e := newTestServer(t)
	owner := register(t, e, "owner@example.com", "Owner User")
	intruder := register(t, e, "intruder@example.com", "Intruder User")

	rec := do(t, e, http.MethodPost, "/api/packages", owner.AccessToken, models.CreatePackageRequest{
		SenderCity:     "London",
		ReceiverCity:   "Addis Ababa",
		PackageType:    "clothing",
		Weight:         2,
		OfferedPayment: 40,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pkg := decode[models.Package](t, rec)

	desc := "hijacked"
	rec = do(t, e, http.MethodPut, fmt.Sprintf("/api/packages/%d", pkg.ID), intruder.AccessToken, models.PackageUpdateData{
		Description: &desc,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerificationFlow(t *testing.T) {
	e := newTestServer(t)
	user := register(t, e, "verify@example.com", "Verify User")

	rec := do(t, e, http.MethodGet, "/api/verification", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[models.VerificationStatus](t, rec)
	assert.False(t, status.IsVerified)

	rec = do(t, e, http.MethodPost, "/api/verification", user.AccessToken, models.VerificationRequest{
		IDDocument:   "passport.jpg",
		PhoneCode:    "123456",
		AddressProof: "utility-bill.pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status = decode[models.VerificationStatus](t, rec)
	assert.True(t, status.IsVerified)
}

func TestAirportLookup(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/airports?q=addis", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]airports.Airport](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "ADD", results[0].Code)
}
