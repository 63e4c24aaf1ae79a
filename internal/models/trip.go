package models

import "time"

// Trip is a traveler's offered luggage capacity on a specific flight.
type Trip struct {
	ID               int       `json:"id" db:"id"`
	TravelerID       int       `json:"traveler_id" db:"traveler_id"`
	DepartureAirport string    `json:"departure_airport" db:"departure_airport"`
	DepartureCity    string    `json:"departure_city" db:"departure_city"`
	DestinationCity  string    `json:"destination_city" db:"destination_city"`
	DepartureDate    time.Time `json:"departure_date" db:"departure_date"`
	ArrivalDate      time.Time `json:"arrival_date" db:"arrival_date"`
	AvailableWeight  float64   `json:"available_weight" db:"available_weight"`
	PricePerKg       float64   `json:"price_per_kg" db:"price_per_kg"`
	Notes            string    `json:"notes,omitempty" db:"notes"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// CreateTripRequest is the validated insert shape for a Trip.
type CreateTripRequest struct {
	DepartureAirport string    `json:"departure_airport" validate:"required,len=3,alpha"`
	DepartureCity    string    `json:"departure_city" validate:"required,min=2,max=100"`
	DestinationCity  string    `json:"destination_city" validate:"required,min=2,max=100"`
	DepartureDate    time.Time `json:"departure_date" validate:"required"`
	ArrivalDate      time.Time `json:"arrival_date" validate:"required,gtecsfield=DepartureDate"`
	AvailableWeight  float64   `json:"available_weight" validate:"required,gt=0,lte=50"`
	PricePerKg       float64   `json:"price_per_kg" validate:"required,gt=0"`
	Notes            string    `json:"notes,omitempty" validate:"max=500"`
}

// TripUpdateData defines the fields an owner may change on an existing Trip.
// Clearing IsActive is the only form of deletion the system supports.
type TripUpdateData struct {
	DepartureDate   *time.Time `json:"departure_date,omitempty"`
	ArrivalDate     *time.Time `json:"arrival_date,omitempty"`
	AvailableWeight *float64   `json:"available_weight,omitempty" validate:"omitempty,gt=0,lte=50"`
	PricePerKg      *float64   `json:"price_per_kg,omitempty" validate:"omitempty,gt=0"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
	IsActive        *bool      `json:"is_active,omitempty"`
}

// TripWithTraveler pairs a Trip with the redacted profile of its owner for
// listing responses.
type TripWithTraveler struct {
	Trip
	Traveler *UserProfile `json:"traveler,omitempty"`
}
