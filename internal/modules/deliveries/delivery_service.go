package deliveries

import (
	"context"
	"errors"
	"fmt"
	"log"

	"skycarry/internal/models"
	"skycarry/internal/storage"
	emailSvc "skycarry/pkg/email"
)

// ServiceInterface defines delivery business logic: matching a trip with a
// package and driving the two status state machines.
type ServiceInterface interface {
	Create(ctx context.Context, requesterID int, req models.CreateDeliveryRequest) (*models.Delivery, error)
	Get(ctx context.Context, id, requesterID int) (*models.DeliveryDetail, error)
	ListMine(ctx context.Context, userID int) ([]*models.DeliveryDetail, error)
	UpdateStatus(ctx context.Context, id, requesterID int, status models.DeliveryStatus) (*models.Delivery, error)
	UpdatePayment(ctx context.Context, id, requesterID int, status models.PaymentStatus) (*models.Delivery, error)
}

type Service struct {
	store           storage.Storage
	emailer         emailSvc.ServiceInterface
	templateManager *emailSvc.TemplateManager
}

func NewService(store storage.Storage, emailer emailSvc.ServiceInterface, tm *emailSvc.TemplateManager) ServiceInterface {
	return &Service{
		store:           store,
		emailer:         emailer,
		templateManager: tm,
	}
}

// Create matches a trip with a package. The requester must own one side of
// the match; traveler and sender are derived from the referenced records.
// Creating the delivery marks the package matched.
func (s *Service) Create(ctx context.Context, requesterID int, req models.CreateDeliveryRequest) (*models.Delivery, error) {
	trip, err := s.store.GetTrip(ctx, req.TripID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.CreateDelivery.GetTrip: %w", err)
	}

	pkg, err := s.store.GetPackage(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.CreateDelivery.GetPackage: %w", err)
	}

	if requesterID != trip.TravelerID && requesterID != pkg.SenderID {
		return nil, models.ErrForbidden
	}
	if !trip.IsActive || !pkg.IsActive {
		return nil, models.ErrPackageUnavailable
	}

	delivery, err := s.store.CreateDelivery(ctx, trip, pkg)
	if err != nil {
		return nil, fmt.Errorf("service.CreateDelivery: %w", err)
	}

	s.notifyMatched(delivery, trip)

	return delivery, nil
}

func (s *Service) Get(ctx context.Context, id, requesterID int) (*models.DeliveryDetail, error) {
	delivery, err := s.store.GetDelivery(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.GetDelivery: %w", err)
	}
	if requesterID != delivery.TravelerID && requesterID != delivery.SenderID {
		return nil, models.ErrForbidden
	}
	return s.detail(ctx, delivery), nil
}

func (s *Service) ListMine(ctx context.Context, userID int) ([]*models.DeliveryDetail, error) {
	deliveries, err := s.store.ListDeliveriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListDeliveries: %w", err)
	}

	details := make([]*models.DeliveryDetail, 0, len(deliveries))
	for _, delivery := range deliveries {
		details = append(details, s.detail(ctx, delivery))
	}
	return details, nil
}

// UpdateStatus advances the carriage state machine. Transitions are forward
// only; the traveler drives carriage, either participant may cancel. Entry
// into delivered propagates to the linked package inside the storage layer.
func (s *Service) UpdateStatus(ctx context.Context, id, requesterID int, status models.DeliveryStatus) (*models.Delivery, error) {
	delivery, err := s.store.GetDelivery(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.UpdateDeliveryStatus.Get: %w", err)
	}

	if requesterID != delivery.TravelerID && requesterID != delivery.SenderID {
		return nil, models.ErrForbidden
	}
	if status != models.DeliveryCancelled && requesterID != delivery.TravelerID {
		return nil, models.ErrForbidden
	}
	if !delivery.Status.CanTransitionTo(status) {
		return nil, models.ErrInvalidTransition
	}

	updated, err := s.store.UpdateDeliveryStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateDeliveryStatus: %w", err)
	}

	if status == models.DeliveryDelivered {
		s.notifyDelivered(ctx, updated)
	}

	return updated, nil
}

// UpdatePayment advances the escrow state machine. Only the sender moves
// money: funding escrow, releasing it after delivery, or asking for a refund
// of a cancelled match.
func (s *Service) UpdatePayment(ctx context.Context, id, requesterID int, status models.PaymentStatus) (*models.Delivery, error) {
	delivery, err := s.store.GetDelivery(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.UpdateDeliveryPayment.Get: %w", err)
	}

	if requesterID != delivery.SenderID {
		return nil, models.ErrForbidden
	}
	if !delivery.PaymentStatus.CanTransitionTo(status) {
		return nil, models.ErrInvalidTransition
	}

	updated, err := s.store.UpdateDeliveryPaymentStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateDeliveryPayment: %w", err)
	}
	return updated, nil
}

func (s *Service) detail(ctx context.Context, delivery *models.Delivery) *models.DeliveryDetail {
	out := &models.DeliveryDetail{Delivery: *delivery}
	if trip, err := s.store.GetTrip(ctx, delivery.TripID); err == nil {
		out.Trip = trip
	}
	if pkg, err := s.store.GetPackage(ctx, delivery.PackageID); err == nil {
		out.Package = pkg
	}
	if traveler, err := s.store.GetUser(ctx, delivery.TravelerID); err == nil {
		out.Traveler = traveler.Profile()
	}
	if sender, err := s.store.GetUser(ctx, delivery.SenderID); err == nil {
		out.Sender = sender.Profile()
	}
	return out
}

// notifyMatched emails both participants. Best effort: failures are logged,
// never surfaced to the request.
func (s *Service) notifyMatched(delivery *models.Delivery, trip *models.Trip) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}

	go func() {
		ctx := context.Background()
		traveler, errT := s.store.GetUser(ctx, delivery.TravelerID)
		sender, errS := s.store.GetUser(ctx, delivery.SenderID)
		if errT != nil || errS != nil {
			log.Printf("match notification: participant lookup failed: %v %v", errT, errS)
			return
		}

		htmlContent, err := s.templateManager.GeneratePackageMatchedHTML(emailSvc.TemplateData{
			Name:            sender.FullName,
			CounterpartName: traveler.FullName,
			DestinationCity: trip.DestinationCity,
		})
		if err != nil {
			log.Printf("match notification: template failed: %v", err)
			return
		}

		subject := "Your package has been matched"
		plain := fmt.Sprintf("%s will carry your package to %s.", traveler.FullName, trip.DestinationCity)
		if err := s.emailer.SendEmail(ctx, sender.Email, subject, plain, htmlContent); err != nil {
			log.Printf("match notification to %s failed: %v", sender.Email, err)
		}
	}()
}

func (s *Service) notifyDelivered(ctx context.Context, delivery *models.Delivery) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}

	trip, err := s.store.GetTrip(ctx, delivery.TripID)
	if err != nil {
		return
	}

	go func() {
		ctx := context.Background()
		traveler, errT := s.store.GetUser(ctx, delivery.TravelerID)
		sender, errS := s.store.GetUser(ctx, delivery.SenderID)
		if errT != nil || errS != nil {
			log.Printf("delivered notification: participant lookup failed: %v %v", errT, errS)
			return
		}

		htmlContent, err := s.templateManager.GeneratePackageDeliveredHTML(emailSvc.TemplateData{
			Name:            sender.FullName,
			CounterpartName: traveler.FullName,
			DestinationCity: trip.DestinationCity,
		})
		if err != nil {
			log.Printf("delivered notification: template failed: %v", err)
			return
		}

		subject := "Your package was delivered"
		plain := fmt.Sprintf("%s marked your delivery to %s as completed.", traveler.FullName, trip.DestinationCity)
		if err := s.emailer.SendEmail(ctx, sender.Email, subject, plain, htmlContent); err != nil {
			log.Printf("delivered notification to %s failed: %v", sender.Email, err)
		}
	}()
}
