package storage

import (
	"context"
	"time"

	"skycarry/internal/models"
)

// TripFilter narrows ListTrips. A nil field means no constraint on that field.
// String fields match case-insensitively on substrings. AvailableWeight is a
// minimum threshold: a traveler's posted capacity must exceed a sender's need.
// DepartureDate is an inclusive on-or-after bound.
type TripFilter struct {
	DepartureAirport *string
	DestinationCity  *string
	MinWeight        *float64
	DepartureDate    *time.Time
}

// PackageFilter narrows ListPackages. Weight is a maximum threshold: a
// sender's declared weight must fit within the requested capacity.
type PackageFilter struct {
	SenderCity   *string
	ReceiverCity *string
	MaxWeight    *float64
	Status       *models.PackageStatus
}

// Storage is the persistence surface shared by every request handler. It is
// implemented by the map-backed Memory store and the Postgres store; the two
// must behave identically. Construct one in main and pass it by handle —
// never hold it in package-level state.
//
// Get* methods return models.ErrNotFound for unknown ids. Referential
// integrity of create payloads is the caller's responsibility; the only
// existence check performed here is UpdateUserVerification's.
type Storage interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int, data models.UserUpdateData) (*models.User, error)
	UpdateUserVerification(ctx context.Context, id int, update models.VerificationUpdate) (*models.User, error)

	// Trips
	CreateTrip(ctx context.Context, travelerID int, req models.CreateTripRequest) (*models.Trip, error)
	GetTrip(ctx context.Context, id int) (*models.Trip, error)
	ListTrips(ctx context.Context, filter TripFilter) ([]*models.Trip, error)
	ListTripsByUser(ctx context.Context, travelerID int) ([]*models.Trip, error)
	UpdateTrip(ctx context.Context, id int, data models.TripUpdateData) (*models.Trip, error)

	// Packages
	CreatePackage(ctx context.Context, senderID int, req models.CreatePackageRequest) (*models.Package, error)
	GetPackage(ctx context.Context, id int) (*models.Package, error)
	ListPackages(ctx context.Context, filter PackageFilter) ([]*models.Package, error)
	ListPackagesByUser(ctx context.Context, senderID int) ([]*models.Package, error)
	UpdatePackage(ctx context.Context, id int, data models.PackageUpdateData) (*models.Package, error)
	UpdatePackageStatus(ctx context.Context, id int, status models.PackageStatus) error

	// Deliveries. CreateDelivery unconditionally sets the linked package's
	// status to matched; UpdateDeliveryStatus propagates "delivered" (and
	// only "delivered") to the linked package. Both side effects run inside
	// a single transaction in the Postgres implementation.
	CreateDelivery(ctx context.Context, trip *models.Trip, pkg *models.Package) (*models.Delivery, error)
	GetDelivery(ctx context.Context, id int) (*models.Delivery, error)
	ListDeliveriesByUser(ctx context.Context, userID int) ([]*models.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, id int, status models.DeliveryStatus) (*models.Delivery, error)
	UpdateDeliveryPaymentStatus(ctx context.Context, id int, status models.PaymentStatus) (*models.Delivery, error)

	// Messages
	CreateMessage(ctx context.Context, senderID int, req models.SendMessageRequest) (*models.Message, error)
	GetMessagesBetweenUsers(ctx context.Context, userA, userB int) ([]*models.Message, error)
	GetMessagesByUser(ctx context.Context, userID int) ([]*models.Message, error)
	MarkMessagesRead(ctx context.Context, readerID, counterpartID int) error

	// Reviews. CreateReview recomputes the reviewee's aggregate rating as
	// the arithmetic mean over all of their reviews, including the new one.
	CreateReview(ctx context.Context, reviewerID int, req models.CreateReviewRequest) (*models.Review, error)
	ListReviewsByReviewee(ctx context.Context, revieweeID int) ([]*models.Review, error)
}
