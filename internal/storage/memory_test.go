package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skycarry/internal/models"
)

func seedUser(t *testing.T, store *Memory, email, name string) *models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), &models.User{
		Email:        email,
		PasswordHash: "x",
		FullName:     name,
		AuthProvider: "email",
	})
	require.NoError(t, err)
	return user
}

func seedTrip(t *testing.T, store *Memory, travelerID int, req models.CreateTripRequest) *models.Trip {
	t.Helper()
	trip, err := store.CreateTrip(context.Background(), travelerID, req)
	require.NoError(t, err)
	return trip
}

func seedPackage(t *testing.T, store *Memory, senderID int, req models.CreatePackageRequest) *models.Package {
	t.Helper()
	pkg, err := store.CreatePackage(context.Background(), senderID, req)
	require.NoError(t, err)
	return pkg
}

func tripRequest(airport, destination string, weight float64, departure time.Time) models.CreateTripRequest {
	return models.CreateTripRequest{
		DepartureAirport: airport,
		DepartureCity:    "Origin",
		DestinationCity:  destination,
		DepartureDate:    departure,
		ArrivalDate:      departure.Add(14 * time.Hour),
		AvailableWeight:  weight,
		PricePerKg:       15,
	}
}

func packageRequest(from, to string, weight float64) models.CreatePackageRequest {
	return models.CreatePackageRequest{
		SenderCity:     from,
		ReceiverCity:   to,
		PackageType:    "documents",
		Weight:         weight,
		OfferedPayment: 100,
	}
}

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func boolPtr(b bool) *bool          { return &b }
func timePtr(t time.Time) *time.Time { return &t }

func TestGetReturnsNotFoundForUnknownIDs(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_, err := store.GetUser(ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.GetTrip(ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.GetPackage(ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.GetDelivery(ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateUserAssignsSequentialIDs(t *testing.T) {
	store := NewMemory()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")

	assert.Equal(t, 1, alice.ID)
	assert.Equal(t, 2, bob.ID)
	assert.False(t, alice.CreatedAt.IsZero())
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := NewMemory()
	seedUser(t, store, "alice@example.com", "Alice")

	_, err := store.CreateUser(context.Background(), &models.User{
		Email: "ALICE@example.com", FullName: "Imposter",
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUpdateUserVerificationUnknownUser(t *testing.T) {
	store := NewMemory()

	_, err := store.UpdateUserVerification(context.Background(), 99, models.VerificationUpdate{
		IDVerified: boolPtr(true),
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateUserVerificationMergesFlags(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	user := seedUser(t, store, "alice@example.com", "Alice")

	updated, err := store.UpdateUserVerification(ctx, user.ID, models.VerificationUpdate{
		IDVerified:    boolPtr(true),
		PhoneVerified: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.IDVerified)
	assert.True(t, updated.PhoneVerified)
	assert.False(t, updated.AddressVerified)
	assert.False(t, updated.IsVerified())

	updated, err = store.UpdateUserVerification(ctx, user.ID, models.VerificationUpdate{
		AddressVerified: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.IDVerified, "earlier flags must survive a partial update")
	assert.True(t, updated.IsVerified())
}

func TestListTripsFilters(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	traveler := seedUser(t, store, "traveler@example.com", "Traveler")

	mar := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	jfk := seedTrip(t, store, traveler.ID, tripRequest("JFK", "Addis Ababa", 10, mar))
	lhr := seedTrip(t, store, traveler.ID, tripRequest("LHR", "Addis Ababa", 3, jun))
	seedTrip(t, store, traveler.ID, tripRequest("DXB", "Dire Dawa", 20, jun))

	inactive := seedTrip(t, store, traveler.ID, tripRequest("JFK", "Addis Ababa", 25, mar))
	_, err := store.UpdateTrip(ctx, inactive.ID, models.TripUpdateData{IsActive: boolPtr(false)})
	require.NoError(t, err)

	t.Run("no filters returns all active trips", func(t *testing.T) {
		trips, err := store.ListTrips(ctx, TripFilter{})
		require.NoError(t, err)
		assert.Len(t, trips, 3)
		for _, trip := range trips {
			assert.True(t, trip.IsActive)
		}
	})

	t.Run("airport match is a case-insensitive substring", func(t *testing.T) {
		trips, err := store.ListTrips(ctx, TripFilter{DepartureAirport: strPtr("jf")})
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, jfk.ID, trips[0].ID)
	})

	t.Run("destination match is a case-insensitive substring", func(t *testing.T) {
		trips, err := store.ListTrips(ctx, TripFilter{DestinationCity: strPtr("addis")})
		require.NoError(t, err)
		assert.Len(t, trips, 2)
	})

	t.Run("available weight is a minimum threshold", func(t *testing.T) {
		trips, err := store.ListTrips(ctx, TripFilter{MinWeight: floatPtr(10)})
		require.NoError(t, err)
		assert.Len(t, trips, 2)
		for _, trip := range trips {
			assert.GreaterOrEqual(t, trip.AvailableWeight, 10.0)
		}
	})

	t.Run("departure date is inclusive on-or-after", func(t *testing.T) {
		trips, err := store.ListTrips(ctx, TripFilter{DepartureDate: timePtr(jun)})
		require.NoError(t, err)
		assert.Len(t, trips, 2)
	})

	t.Run("filters combine conjunctively", func(t *testing.T) {
		trips, err := store.ListTrips(ctx, TripFilter{
			DestinationCity: strPtr("Addis"),
			MinWeight:       floatPtr(2),
			DepartureDate:   timePtr(jun),
		})
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, lhr.ID, trips[0].ID)
	})
}

func TestListPackagesFilters(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	sender := seedUser(t, store, "sender@example.com", "Sender")

	light := seedPackage(t, store, sender.ID, packageRequest("New York", "Addis Ababa", 2))
	seedPackage(t, store, sender.ID, packageRequest("London", "Addis Ababa", 8))
	seedPackage(t, store, sender.ID, packageRequest("New York", "Mekelle", 30))

	inactive := seedPackage(t, store, sender.ID, packageRequest("New York", "Addis Ababa", 1))
	_, err := store.UpdatePackage(ctx, inactive.ID, models.PackageUpdateData{IsActive: boolPtr(false)})
	require.NoError(t, err)

	t.Run("weight is a maximum threshold", func(t *testing.T) {
		pkgs, err := store.ListPackages(ctx, PackageFilter{MaxWeight: floatPtr(8)})
		require.NoError(t, err)
		assert.Len(t, pkgs, 2)
		for _, pkg := range pkgs {
			assert.LessOrEqual(t, pkg.Weight, 8.0)
		}
	})

	t.Run("cities combine conjunctively", func(t *testing.T) {
		pkgs, err := store.ListPackages(ctx, PackageFilter{
			SenderCity:   strPtr("new york"),
			ReceiverCity: strPtr("ADDIS"),
		})
		require.NoError(t, err)
		require.Len(t, pkgs, 1)
		assert.Equal(t, light.ID, pkgs[0].ID)
	})

	t.Run("inactive packages are always excluded", func(t *testing.T) {
		pkgs, err := store.ListPackages(ctx, PackageFilter{})
		require.NoError(t, err)
		assert.Len(t, pkgs, 3)
	})
}

func TestCreateDeliveryForcesPackageMatched(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	traveler := seedUser(t, store, "traveler@example.com", "Traveler")
	sender := seedUser(t, store, "sender@example.com", "Sender")

	trip := seedTrip(t, store, traveler.ID, tripRequest("JFK", "Addis Ababa", 10, time.Now()))
	pkg := seedPackage(t, store, sender.ID, packageRequest("New York", "Addis Ababa", 5))

	// The side effect is last-write-wins: even a delivered package snaps
	// back to matched.
	require.NoError(t, store.UpdatePackageStatus(ctx, pkg.ID, models.PackageDelivered))

	delivery, err := store.CreateDelivery(ctx, trip, pkg)
	require.NoError(t, err)
	assert.Equal(t, trip.TravelerID, delivery.TravelerID)
	assert.Equal(t, pkg.SenderID, delivery.SenderID)
	assert.Equal(t, models.DeliveryPending, delivery.Status)
	assert.Equal(t, models.PaymentPending, delivery.PaymentStatus)

	stored, err := store.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PackageMatched, stored.Status)
}

func TestUpdateDeliveryStatusPropagation(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	traveler := seedUser(t, store, "traveler@example.com", "Traveler")
	sender := seedUser(t, store, "sender@example.com", "Sender")

	trip := seedTrip(t, store, traveler.ID, tripRequest("JFK", "Addis Ababa", 10, time.Now()))
	pkg := seedPackage(t, store, sender.ID, packageRequest("New York", "Addis Ababa", 5))
	delivery, err := store.CreateDelivery(ctx, trip, pkg)
	require.NoError(t, err)

	// Any status other than delivered leaves the package untouched.
	_, err = store.UpdateDeliveryStatus(ctx, delivery.ID, models.DeliveryInTransit)
	require.NoError(t, err)
	stored, err := store.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PackageMatched, stored.Status)

	updated, err := store.UpdateDeliveryStatus(ctx, delivery.ID, models.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, updated.Status)

	stored, err = store.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PackageDelivered, stored.Status)
}

func TestListDeliveriesByUserCoversBothRoles(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	traveler := seedUser(t, store, "traveler@example.com", "Traveler")
	sender := seedUser(t, store, "sender@example.com", "Sender")
	outsider := seedUser(t, store, "outsider@example.com", "Outsider")

	trip := seedTrip(t, store, traveler.ID, tripRequest("JFK", "Addis Ababa", 10, time.Now()))
	pkg := seedPackage(t, store, sender.ID, packageRequest("New York", "Addis Ababa", 5))
	_, err := store.CreateDelivery(ctx, trip, pkg)
	require.NoError(t, err)

	forTraveler, err := store.ListDeliveriesByUser(ctx, traveler.ID)
	require.NoError(t, err)
	assert.Len(t, forTraveler, 1)

	forSender, err := store.ListDeliveriesByUser(ctx, sender.ID)
	require.NoError(t, err)
	assert.Len(t, forSender, 1)

	forOutsider, err := store.ListDeliveriesByUser(ctx, outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, forOutsider)
}

func TestReviewAggregationIsFullMean(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	reviewee := seedUser(t, store, "traveler@example.com", "Traveler")
	reviewer := seedUser(t, store, "sender@example.com", "Sender")

	ratings := []int{5, 3, 4, 2, 5}
	var sum int
	for i, rating := range ratings {
		_, err := store.CreateReview(ctx, reviewer.ID, models.CreateReviewRequest{
			RevieweeID: reviewee.ID,
			Rating:     rating,
		})
		require.NoError(t, err)
		sum += rating

		user, err := store.GetUser(ctx, reviewee.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, user.ReviewCount)
		assert.InDelta(t, float64(sum)/float64(i+1), user.Rating, 1e-9)
	}
}

func TestMessageOrdering(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	carol := seedUser(t, store, "carol@example.com", "Carol")

	first, err := store.CreateMessage(ctx, alice.ID, models.SendMessageRequest{ReceiverID: bob.ID, Content: "hi"})
	require.NoError(t, err)
	second, err := store.CreateMessage(ctx, bob.ID, models.SendMessageRequest{ReceiverID: alice.ID, Content: "hello"})
	require.NoError(t, err)
	third, err := store.CreateMessage(ctx, alice.ID, models.SendMessageRequest{ReceiverID: bob.ID, Content: "how are you"})
	require.NoError(t, err)
	// Noise from an unrelated thread.
	_, err = store.CreateMessage(ctx, carol.ID, models.SendMessageRequest{ReceiverID: alice.ID, Content: "unrelated"})
	require.NoError(t, err)

	t.Run("thread is symmetric in argument order, ascending", func(t *testing.T) {
		ab, err := store.GetMessagesBetweenUsers(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		ba, err := store.GetMessagesBetweenUsers(ctx, bob.ID, alice.ID)
		require.NoError(t, err)

		require.Len(t, ab, 3)
		assert.Equal(t, ab, ba)
		assert.Equal(t, []int{first.ID, second.ID, third.ID}, []int{ab[0].ID, ab[1].ID, ab[2].ID})
	})

	t.Run("per-user listing is descending", func(t *testing.T) {
		msgs, err := store.GetMessagesByUser(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, third.ID, msgs[0].ID)
		assert.Equal(t, first.ID, msgs[2].ID)
	})
}

func TestMarkMessagesReadOnlyTouchesCounterpart(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")

	inbound, err := store.CreateMessage(ctx, bob.ID, models.SendMessageRequest{ReceiverID: alice.ID, Content: "hi"})
	require.NoError(t, err)
	outbound, err := store.CreateMessage(ctx, alice.ID, models.SendMessageRequest{ReceiverID: bob.ID, Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, store.MarkMessagesRead(ctx, alice.ID, bob.ID))

	msgs, err := store.GetMessagesBetweenUsers(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	for _, msg := range msgs {
		switch msg.ID {
		case inbound.ID:
			assert.True(t, msg.IsRead)
		case outbound.ID:
			assert.False(t, msg.IsRead, "the reader's own messages stay unread for the counterpart")
		}
	}
}

func TestUpdateTripPartialMerge(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	traveler := seedUser(t, store, "traveler@example.com", "Traveler")
	trip := seedTrip(t, store, traveler.ID, tripRequest("JFK", "Addis Ababa", 10, time.Now()))

	updated, err := store.UpdateTrip(ctx, trip.ID, models.TripUpdateData{
		AvailableWeight: floatPtr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 7.0, updated.AvailableWeight)
	assert.Equal(t, trip.PricePerKg, updated.PricePerKg, "unset fields keep their values")
	assert.Equal(t, trip.DestinationCity, updated.DestinationCity)
}
