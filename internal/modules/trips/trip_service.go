package trips

import (
	"context"
	"errors"
	"fmt"

	"skycarry/internal/models"
	"skycarry/internal/storage"
)

// ServiceInterface defines trip business logic.
type ServiceInterface interface {
	Create(ctx context.Context, travelerID int, req models.CreateTripRequest) (*models.Trip, error)
	Get(ctx context.Context, id int) (*models.TripWithTraveler, error)
	List(ctx context.Context, filter storage.TripFilter) ([]*models.TripWithTraveler, error)
	ListByUser(ctx context.Context, travelerID int) ([]*models.Trip, error)
	Update(ctx context.Context, id, requesterID int, data models.TripUpdateData) (*models.Trip, error)
}

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) ServiceInterface {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, travelerID int, req models.CreateTripRequest) (*models.Trip, error) {
	trip, err := s.store.CreateTrip(ctx, travelerID, req)
	if err != nil {
		return nil, fmt.Errorf("service.CreateTrip: %w", err)
	}
	return trip, nil
}

func (s *Service) Get(ctx context.Context, id int) (*models.TripWithTraveler, error) {
	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.GetTrip: %w", err)
	}
	return s.withTraveler(ctx, trip), nil
}

// List returns active trips matching the filter, each enriched with the
// redacted profile of its traveler.
func (s *Service) List(ctx context.Context, filter storage.TripFilter) ([]*models.TripWithTraveler, error) {
	trips, err := s.store.ListTrips(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service.ListTrips: %w", err)
	}

	enriched := make([]*models.TripWithTraveler, 0, len(trips))
	for _, trip := range trips {
		enriched = append(enriched, s.withTraveler(ctx, trip))
	}
	return enriched, nil
}

func (s *Service) ListByUser(ctx context.Context, travelerID int) ([]*models.Trip, error) {
	trips, err := s.store.ListTripsByUser(ctx, travelerID)
	if err != nil {
		return nil, fmt.Errorf("service.ListTripsByUser: %w", err)
	}
	return trips, nil
}

// Update applies a partial update after verifying the requester owns the trip.
func (s *Service) Update(ctx context.Context, id, requesterID int, data models.TripUpdateData) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.UpdateTrip.Get: %w", err)
	}
	if trip.TravelerID != requesterID {
		return nil, models.ErrForbidden
	}

	updated, err := s.store.UpdateTrip(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateTrip: %w", err)
	}
	return updated, nil
}

func (s *Service) withTraveler(ctx context.Context, trip *models.Trip) *models.TripWithTraveler {
	out := &models.TripWithTraveler{Trip: *trip}
	if user, err := s.store.GetUser(ctx, trip.TravelerID); err == nil {
		out.Traveler = user.Profile()
	}
	return out
}
