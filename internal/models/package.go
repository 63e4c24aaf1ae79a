package models

import "time"

// Package is a sender's request to move an item to a destination.
type Package struct {
	ID             int           `json:"id" db:"id"`
	SenderID       int           `json:"sender_id" db:"sender_id"`
	SenderCity     string        `json:"sender_city" db:"sender_city"`
	ReceiverCity   string        `json:"receiver_city" db:"receiver_city"`
	PackageType    string        `json:"package_type" db:"package_type"`
	Weight         float64       `json:"weight" db:"weight"`
	Dimensions     string        `json:"dimensions,omitempty" db:"dimensions"`
	OfferedPayment float64       `json:"offered_payment" db:"offered_payment"`
	Description    string        `json:"description,omitempty" db:"description"`
	Status         PackageStatus `json:"status" db:"status"`
	IsActive       bool          `json:"is_active" db:"is_active"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// CreatePackageRequest is the validated insert shape for a Package.
type CreatePackageRequest struct {
	SenderCity     string  `json:"sender_city" validate:"required,min=2,max=100"`
	ReceiverCity   string  `json:"receiver_city" validate:"required,min=2,max=100"`
	PackageType    string  `json:"package_type" validate:"required,oneof=documents electronics clothing food medicine other"`
	Weight         float64 `json:"weight" validate:"required,gt=0,lte=50"`
	Dimensions     string  `json:"dimensions,omitempty" validate:"max=100"`
	OfferedPayment float64 `json:"offered_payment" validate:"required,gt=0"`
	Description    string  `json:"description,omitempty" validate:"max=500"`
}

// PackageUpdateData defines the fields an owner may change on a Package.
type PackageUpdateData struct {
	SenderCity     *string  `json:"sender_city,omitempty" validate:"omitempty,min=2,max=100"`
	ReceiverCity   *string  `json:"receiver_city,omitempty" validate:"omitempty,min=2,max=100"`
	PackageType    *string  `json:"package_type,omitempty" validate:"omitempty,oneof=documents electronics clothing food medicine other"`
	Weight         *float64 `json:"weight,omitempty" validate:"omitempty,gt=0,lte=50"`
	Dimensions     *string  `json:"dimensions,omitempty" validate:"omitempty,max=100"`
	OfferedPayment *float64 `json:"offered_payment,omitempty" validate:"omitempty,gt=0"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// PackageWithSender pairs a Package with the redacted profile of its owner.
type PackageWithSender struct {
	Package
	Sender *UserProfile `json:"sender,omitempty"`
}
