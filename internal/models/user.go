package models

import "time"

// User is a registered account. A user can act as a traveler (posting Trips)
// and as a sender (posting Packages) at the same time.
type User struct {
	ID              int       `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	FullName        string    `json:"full_name" db:"full_name"`
	Phone           string    `json:"phone,omitempty" db:"phone"`
	PhotoURL        string    `json:"photo_url,omitempty" db:"photo_url"`
	AuthProvider    string    `json:"auth_provider" db:"auth_provider"`
	IDVerified      bool      `json:"id_verified" db:"id_verified"`
	PhoneVerified   bool      `json:"phone_verified" db:"phone_verified"`
	AddressVerified bool      `json:"address_verified" db:"address_verified"`
	Rating          float64   `json:"rating" db:"rating"`
	ReviewCount     int       `json:"review_count" db:"review_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// IsVerified reports whether all three verification checks have passed.
func (u *User) IsVerified() bool {
	return u.IDVerified && u.PhoneVerified && u.AddressVerified
}

// UserProfile is the redacted view of a user embedded in listing responses.
// It omits credentials and contact details.
type UserProfile struct {
	ID          int     `json:"id"`
	FullName    string  `json:"full_name"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	IsVerified  bool    `json:"is_verified"`
}

// Profile returns the redacted view of the user.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:          u.ID,
		FullName:    u.FullName,
		PhotoURL:    u.PhotoURL,
		Rating:      u.Rating,
		ReviewCount: u.ReviewCount,
		IsVerified:  u.IsVerified(),
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// UserUpdateData defines the profile fields a user may change.
type UserUpdateData struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	PhotoURL *string `json:"photo_url,omitempty" validate:"omitempty,url"`
}

// VerificationUpdate merges partial verification flags into a user record.
// A nil field leaves the stored flag untouched.
type VerificationUpdate struct {
	IDVerified      *bool `json:"id_verified,omitempty"`
	PhoneVerified   *bool `json:"phone_verified,omitempty"`
	AddressVerified *bool `json:"address_verified,omitempty"`
}

// VerificationRequest is the body for submitting verification documents.
// There is no production verification provider; submitted checks are
// auto-approved by the mock provider in the users service.
type VerificationRequest struct {
	IDDocument   string `json:"id_document,omitempty"`
	PhoneCode    string `json:"phone_code,omitempty"`
	AddressProof string `json:"address_proof,omitempty"`
}

// VerificationStatus is the response shape for GET /api/verification.
type VerificationStatus struct {
	IDVerified      bool `json:"id_verified"`
	PhoneVerified   bool `json:"phone_verified"`
	AddressVerified bool `json:"address_verified"`
	IsVerified      bool `json:"is_verified"`
}
