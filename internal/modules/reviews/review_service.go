package reviews

import (
	"context"
	"errors"
	"fmt"

	"skycarry/internal/models"
	"skycarry/internal/storage"
)

// ServiceInterface defines review business logic.
type ServiceInterface interface {
	Create(ctx context.Context, reviewerID int, req models.CreateReviewRequest) (*models.Review, error)
	ListByReviewee(ctx context.Context, revieweeID int) ([]*models.ReviewWithReviewer, error)
}

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) ServiceInterface {
	return &Service{store: store}
}

// Create inserts a review and lets the storage layer recompute the
// reviewee's aggregate rating. Self-reviews are rejected; when the review is
// tied to a delivery, reviewer and reviewee must be its two participants.
func (s *Service) Create(ctx context.Context, reviewerID int, req models.CreateReviewRequest) (*models.Review, error) {
	if reviewerID == req.RevieweeID {
		return nil, models.ErrForbidden
	}

	if _, err := s.store.GetUser(ctx, req.RevieweeID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.CreateReview.GetUser: %w", err)
	}

	if req.DeliveryID != nil {
		delivery, err := s.store.GetDelivery(ctx, *req.DeliveryID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.ErrNotFound
			}
			return nil, fmt.Errorf("service.CreateReview.GetDelivery: %w", err)
		}
		participants := map[int]bool{delivery.TravelerID: true, delivery.SenderID: true}
		if !participants[reviewerID] || !participants[req.RevieweeID] {
			return nil, models.ErrForbidden
		}
	}

	review, err := s.store.CreateReview(ctx, reviewerID, req)
	if err != nil {
		return nil, fmt.Errorf("service.CreateReview: %w", err)
	}
	return review, nil
}

func (s *Service) ListByReviewee(ctx context.Context, revieweeID int) ([]*models.ReviewWithReviewer, error) {
	reviews, err := s.store.ListReviewsByReviewee(ctx, revieweeID)
	if err != nil {
		return nil, fmt.Errorf("service.ListReviews: %w", err)
	}

	enriched := make([]*models.ReviewWithReviewer, 0, len(reviews))
	for _, review := range reviews {
		out := &models.ReviewWithReviewer{Review: *review}
		if user, err := s.store.GetUser(ctx, review.ReviewerID); err == nil {
			out.Reviewer = user.Profile()
		}
		enriched = append(enriched, out)
	}
	return enriched, nil
}
