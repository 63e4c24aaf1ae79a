package models

import "time"

// Delivery links exactly one Trip and one Package plus the two participating
// users. Carriage state and payment state advance independently.
type Delivery struct {
	ID            int            `json:"id" db:"id"`
	TripID        int            `json:"trip_id" db:"trip_id"`
	PackageID     int            `json:"package_id" db:"package_id"`
	TravelerID    int            `json:"traveler_id" db:"traveler_id"`
	SenderID      int            `json:"sender_id" db:"sender_id"`
	Status        DeliveryStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus  `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateDeliveryRequest is the validated insert shape for a Delivery. The
// traveler and sender are derived from the referenced trip and package.
type CreateDeliveryRequest struct {
	TripID    int `json:"trip_id" validate:"required,gt=0"`
	PackageID int `json:"package_id" validate:"required,gt=0"`
}

// UpdateDeliveryStatusRequest is the body for PUT /api/deliveries/:id/status.
type UpdateDeliveryStatusRequest struct {
	Status DeliveryStatus `json:"status" validate:"required,oneof=pending in_transit delivered cancelled"`
}

// UpdatePaymentStatusRequest is the body for PUT /api/deliveries/:id/payment.
type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required,oneof=pending in_escrow released refunded"`
}

// DeliveryDetail joins a Delivery with its trip, package and the redacted
// profiles of both participants.
type DeliveryDetail struct {
	Delivery
	Trip     *Trip        `json:"trip,omitempty"`
	Package  *Package     `json:"package,omitempty"`
	Traveler *UserProfile `json:"traveler,omitempty"`
	Sender   *UserProfile `json:"sender,omitempty"`
}
