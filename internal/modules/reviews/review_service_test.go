package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skycarry/internal/models"
	"skycarry/internal/storage"
)

func setup(t *testing.T) (*storage.Memory, ServiceInterface, *models.User, *models.User) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemory()
	svc := NewService(store)

	traveler, err := store.CreateUser(ctx, &models.User{Email: "traveler@example.com", FullName: "Traveler"})
	require.NoError(t, err)
	sender, err := store.CreateUser(ctx, &models.User{Email: "sender@example.com", FullName: "Sender"})
	require.NoError(t, err)
	return store, svc, traveler, sender
}

func TestCreateReviewUpdatesAggregate(t *testing.T) {
	store, svc, traveler, sender := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, sender.ID, models.CreateReviewRequest{
		RevieweeID: traveler.ID,
		Rating:     5,
		Comment:    "smooth handoff",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, sender.ID, models.CreateReviewRequest{
		RevieweeID: traveler.ID,
		Rating:     2,
	})
	require.NoError(t, err)

	reviewee, err := store.GetUser(ctx, traveler.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reviewee.ReviewCount)
	assert.InDelta(t, 3.5, reviewee.Rating, 1e-9)
}

func TestCreateReviewRejectsSelfReview(t *testing.T) {
	_, svc, traveler, _ := setup(t)

	_, err := svc.Create(context.Background(), traveler.ID, models.CreateReviewRequest{
		RevieweeID: traveler.ID,
		Rating:     5,
	})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCreateReviewUnknownReviewee(t *testing.T) {
	_, svc, _, sender := setup(t)

	_, err := svc.Create(context.Background(), sender.ID, models.CreateReviewRequest{
		RevieweeID: 999,
		Rating:     4,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateReviewDeliveryParticipants(t *testing.T) {
	store, svc, traveler, sender := setup(t)
	ctx := context.Background()

	outsider, err := store.CreateUser(ctx, &models.User{Email: "outsider@example.com", FullName: "Outsider"})
	require.NoError(t, err)

	departure := time.Now().Add(24 * time.Hour)
	trip, err := store.CreateTrip(ctx, traveler.ID, models.CreateTripRequest{
		DepartureAirport: "JFK",
		DepartureCity:    "New York",
		DestinationCity:  "Addis Ababa",
		DepartureDate:    departure,
		ArrivalDate:      departure.Add(14 * time.Hour),
		AvailableWeight:  10,
		PricePerKg:       15,
	})
	require.NoError(t, err)
	pkg, err := store.CreatePackage(ctx, sender.ID, models.CreatePackageRequest{
		SenderCity:     "New York",
		ReceiverCity:   "Addis Ababa",
		PackageType:    "documents",
		Weight:         3,
		OfferedPayment: 60,
	})
	require.NoError(t, err)
	delivery, err := store.CreateDelivery(ctx, trip, pkg)
	require.NoError(t, err)

	_, err = svc.Create(ctx, sender.ID, models.CreateReviewRequest{
		RevieweeID: traveler.ID,
		DeliveryID: &delivery.ID,
		Rating:     5,
	})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, outsider.ID, models.CreateReviewRequest{
		RevieweeID: traveler.ID,
		DeliveryID: &delivery.ID,
		Rating:     1,
	})
	assert.ErrorIs(t, err, models.ErrForbidden, "only the delivery's participants may review it")
}

func TestListByRevieweeIncludesReviewerProfile(t *testing.T) {
	_, svc, traveler, sender := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, sender.ID, models.CreateReviewRequest{
		RevieweeID: traveler.ID,
		Rating:     4,
		Comment:    "on time",
	})
	require.NoError(t, err)

	reviews, err := svc.ListByReviewee(ctx, traveler.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].Reviewer)
	assert.Equal(t, "Sender", reviews[0].Reviewer.FullName)
	assert.Equal(t, 4, reviews[0].Rating)
}
