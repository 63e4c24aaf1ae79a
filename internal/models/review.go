package models

import "time"

// Review is a rating left by one user about another, optionally tied to a
// completed delivery.
type Review struct {
	ID         int       `json:"id" db:"id"`
	ReviewerID int       `json:"reviewer_id" db:"reviewer_id"`
	RevieweeID int       `json:"reviewee_id" db:"reviewee_id"`
	DeliveryID *int      `json:"delivery_id,omitempty" db:"delivery_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CreateReviewRequest is the validated insert shape for a Review.
type CreateReviewRequest struct {
	RevieweeID int    `json:"reviewee_id" validate:"required,gt=0"`
	DeliveryID *int   `json:"delivery_id,omitempty" validate:"omitempty,gt=0"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment,omitempty" validate:"max=1000"`
}

// ReviewWithReviewer pairs a Review with the redacted profile of its author.
type ReviewWithReviewer struct {
	Review
	Reviewer *UserProfile `json:"reviewer,omitempty"`
}
