package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"skycarry/internal/models"
)

// Memory is a map-backed Storage used when no DATABASE_URL is configured and
// in tests. Handlers run on concurrent goroutines, so every method takes the
// store lock; id counters are only touched under the write lock.
type Memory struct {
	mu sync.RWMutex

	users      map[int]*models.User
	trips      map[int]*models.Trip
	packages   map[int]*models.Package
	deliveries map[int]*models.Delivery
	messages   map[int]*models.Message
	reviews    map[int]*models.Review

	userSeq     int
	tripSeq     int
	packageSeq  int
	deliverySeq int
	messageSeq  int
	reviewSeq   int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int]*models.User),
		trips:      make(map[int]*models.Trip),
		packages:   make(map[int]*models.Package),
		deliveries: make(map[int]*models.Delivery),
		messages:   make(map[int]*models.Message),
		reviews:    make(map[int]*models.Review),
	}
}

// containsFold is the case-insensitive substring match used by every string
// filter field.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ------------------- Users -------------------

func (m *Memory) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, models.ErrConflict
		}
	}

	m.userSeq++
	stored := *user
	stored.ID = m.userSeq
	stored.CreatedAt = time.Now()
	m.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *Memory) GetUser(_ context.Context, id int) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			out := *user
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) UpdateUserProfile(_ context.Context, id int, data models.UserUpdateData) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if data.FullName != nil {
		user.FullName = *data.FullName
	}
	if data.Phone != nil {
		user.Phone = *data.Phone
	}
	if data.PhotoURL != nil {
		user.PhotoURL = *data.PhotoURL
	}
	out := *user
	return &out, nil
}

func (m *Memory) UpdateUserVerification(_ context.Context, id int, update models.VerificationUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if update.IDVerified != nil {
		user.IDVerified = *update.IDVerified
	}
	if update.PhoneVerified != nil {
		user.PhoneVerified = *update.PhoneVerified
	}
	if update.AddressVerified != nil {
		user.AddressVerified = *update.AddressVerified
	}
	out := *user
	return &out, nil
}

// ------------------- Trips -------------------

func (m *Memory) CreateTrip(_ context.Context, travelerID int, req models.CreateTripRequest) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tripSeq++
	trip := &models.Trip{
		ID:               m.tripSeq,
		TravelerID:       travelerID,
		DepartureAirport: strings.ToUpper(req.DepartureAirport),
		DepartureCity:    req.DepartureCity,
		DestinationCity:  req.DestinationCity,
		DepartureDate:    req.DepartureDate,
		ArrivalDate:      req.ArrivalDate,
		AvailableWeight:  req.AvailableWeight,
		PricePerKg:       req.PricePerKg,
		Notes:            req.Notes,
		IsActive:         true,
		CreatedAt:        time.Now(),
	}
	m.trips[trip.ID] = trip

	out := *trip
	return &out, nil
}

func (m *Memory) GetTrip(_ context.Context, id int) (*models.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trip, ok := m.trips[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *trip
	return &out, nil
}

func (m *Memory) ListTrips(_ context.Context, filter TripFilter) ([]*models.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var trips []*models.Trip
	for _, trip := range m.trips {
		if !trip.IsActive {
			continue
		}
		if filter.DepartureAirport != nil && !containsFold(trip.DepartureAirport, *filter.DepartureAirport) {
			continue
		}
		if filter.DestinationCity != nil && !containsFold(trip.DestinationCity, *filter.DestinationCity) {
			continue
		}
		if filter.MinWeight != nil && trip.AvailableWeight < *filter.MinWeight {
			continue
		}
		if filter.DepartureDate != nil && trip.DepartureDate.Before(*filter.DepartureDate) {
			continue
		}
		out := *trip
		trips = append(trips, &out)
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })
	return trips, nil
}

func (m *Memory) ListTripsByUser(_ context.Context, travelerID int) ([]*models.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var trips []*models.Trip
	for _, trip := range m.trips {
		if trip.TravelerID == travelerID {
			out := *trip
			trips = append(trips, &out)
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })
	return trips, nil
}

func (m *Memory) UpdateTrip(_ context.Context, id int, data models.TripUpdateData) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, ok := m.trips[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if data.DepartureDate != nil {
		trip.DepartureDate = *data.DepartureDate
	}
	if data.ArrivalDate != nil {
		trip.ArrivalDate = *data.ArrivalDate
	}
	if data.AvailableWeight != nil {
		trip.AvailableWeight = *data.AvailableWeight
	}
	if data.PricePerKg != nil {
		trip.PricePerKg = *data.PricePerKg
	}
	if data.Notes != nil {
		trip.Notes = *data.Notes
	}
	if data.IsActive != nil {
		trip.IsActive = *data.IsActive
	}
	out := *trip
	return &out, nil
}

// ------------------- Packages -------------------

func (m *Memory) CreatePackage(_ context.Context, senderID int, req models.CreatePackageRequest) (*models.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.packageSeq++
	pkg := &models.Package{
		ID:             m.packageSeq,
		SenderID:       senderID,
		SenderCity:     req.SenderCity,
		ReceiverCity:   req.ReceiverCity,
		PackageType:    req.PackageType,
		Weight:         req.Weight,
		Dimensions:     req.Dimensions,
		OfferedPayment: req.OfferedPayment,
		Description:    req.Description,
		Status:         models.PackagePending,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	m.packages[pkg.ID] = pkg

	out := *pkg
	return &out, nil
}

func (m *Memory) GetPackage(_ context.Context, id int) (*models.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pkg, ok := m.packages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *pkg
	return &out, nil
}

func (m *Memory) ListPackages(_ context.Context, filter PackageFilter) ([]*models.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pkgs []*models.Package
	for _, pkg := range m.packages {
		if !pkg.IsActive {
			continue
		}
		if filter.SenderCity != nil && !containsFold(pkg.SenderCity, *filter.SenderCity) {
			continue
		}
		if filter.ReceiverCity != nil && !containsFold(pkg.ReceiverCity, *filter.ReceiverCity) {
			continue
		}
		if filter.MaxWeight != nil && pkg.Weight > *filter.MaxWeight {
			continue
		}
		if filter.Status != nil && pkg.Status != *filter.Status {
			continue
		}
		out := *pkg
		pkgs = append(pkgs, &out)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })
	return pkgs, nil
}

func (m *Memory) ListPackagesByUser(_ context.Context, senderID int) ([]*models.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pkgs []*models.Package
	for _, pkg := range m.packages {
		if pkg.SenderID == senderID {
			out := *pkg
			pkgs = append(pkgs, &out)
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })
	return pkgs, nil
}

func (m *Memory) UpdatePackage(_ context.Context, id int, data models.PackageUpdateData) (*models.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pkg, ok := m.packages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if data.SenderCity != nil {
		pkg.SenderCity = *data.SenderCity
	}
	if data.ReceiverCity != nil {
		pkg.ReceiverCity = *data.ReceiverCity
	}
	if data.PackageType != nil {
		pkg.PackageType = *data.PackageType
	}
	if data.Weight != nil {
		pkg.Weight = *data.Weight
	}
	if data.Dimensions != nil {
		pkg.Dimensions = *data.Dimensions
	}
	if data.OfferedPayment != nil {
		pkg.OfferedPayment = *data.OfferedPayment
	}
	if data.Description != nil {
		pkg.Description = *data.Description
	}
	if data.IsActive != nil {
		pkg.IsActive = *data.IsActive
	}
	out := *pkg
	return &out, nil
}

func (m *Memory) UpdatePackageStatus(_ context.Context, id int, status models.PackageStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pkg, ok := m.packages[id]
	if !ok {
		return models.ErrNotFound
	}
	pkg.Status = status
	return nil
}

// ------------------- Deliveries -------------------

func (m *Memory) CreateDelivery(_ context.Context, trip *models.Trip, pkg *models.Package) (*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deliverySeq++
	now := time.Now()
	delivery := &models.Delivery{
		ID:            m.deliverySeq,
		TripID:        trip.ID,
		PackageID:     pkg.ID,
		TravelerID:    trip.TravelerID,
		SenderID:      pkg.SenderID,
		Status:        models.DeliveryPending,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.deliveries[delivery.ID] = delivery

	// Matching side effect: the linked package becomes matched,
	// last-write-wins, whatever its prior status was.
	if stored, ok := m.packages[pkg.ID]; ok {
		stored.Status = models.PackageMatched
	}

	out := *delivery
	return &out, nil
}

func (m *Memory) GetDelivery(_ context.Context, id int) (*models.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	delivery, ok := m.deliveries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *delivery
	return &out, nil
}

func (m *Memory) ListDeliveriesByUser(_ context.Context, userID int) ([]*models.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var deliveries []*models.Delivery
	for _, d := range m.deliveries {
		if d.TravelerID == userID || d.SenderID == userID {
			out := *d
			deliveries = append(deliveries, &out)
		}
	}
	sort.Slice(deliveries, func(i, j int) bool { return deliveries[i].ID < deliveries[j].ID })
	return deliveries, nil
}

func (m *Memory) UpdateDeliveryStatus(_ context.Context, id int, status models.DeliveryStatus) (*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delivery, ok := m.deliveries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delivery.Status = status
	delivery.UpdatedAt = time.Now()

	// Only entry into "delivered" propagates to the linked package.
	if status == models.DeliveryDelivered {
		if pkg, ok := m.packages[delivery.PackageID]; ok {
			pkg.Status = models.PackageDelivered
		}
	}

	out := *delivery
	return &out, nil
}

func (m *Memory) UpdateDeliveryPaymentStatus(_ context.Context, id int, status models.PaymentStatus) (*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delivery, ok := m.deliveries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delivery.PaymentStatus = status
	delivery.UpdatedAt = time.Now()

	out := *delivery
	return &out, nil
}

// ------------------- Messages -------------------

func (m *Memory) CreateMessage(_ context.Context, senderID int, req models.SendMessageRequest) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messageSeq++
	msg := &models.Message{
		ID:         m.messageSeq,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}
	m.messages[msg.ID] = msg

	out := *msg
	return &out, nil
}

func (m *Memory) GetMessagesBetweenUsers(_ context.Context, userA, userB int) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var msgs []*models.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			out := *msg
			msgs = append(msgs, &out)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (m *Memory) GetMessagesByUser(_ context.Context, userID int) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var msgs []*models.Message
	for _, msg := range m.messages {
		if msg.SenderID == userID || msg.ReceiverID == userID {
			out := *msg
			msgs = append(msgs, &out)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID > msgs[j].ID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (m *Memory) MarkMessagesRead(_ context.Context, readerID, counterpartID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range m.messages {
		if msg.ReceiverID == readerID && msg.SenderID == counterpartID {
			msg.IsRead = true
		}
	}
	return nil
}

// ------------------- Reviews -------------------

func (m *Memory) CreateReview(_ context.Context, reviewerID int, req models.CreateReviewRequest) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reviewSeq++
	review := &models.Review{
		ID:         m.reviewSeq,
		ReviewerID: reviewerID,
		RevieweeID: req.RevieweeID,
		DeliveryID: req.DeliveryID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now(),
	}
	m.reviews[review.ID] = review

	// Recompute the reviewee's aggregate as the full mean over all of their
	// reviews, including the one just inserted.
	if user, ok := m.users[req.RevieweeID]; ok {
		var sum, count int
		for _, r := range m.reviews {
			if r.RevieweeID == req.RevieweeID {
				sum += r.Rating
				count++
			}
		}
		user.Rating = float64(sum) / float64(count)
		user.ReviewCount = count
	}

	out := *review
	return &out, nil
}

func (m *Memory) ListReviewsByReviewee(_ context.Context, revieweeID int) ([]*models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var reviews []*models.Review
	for _, review := range m.reviews {
		if review.RevieweeID == revieweeID {
			out := *review
			reviews = append(reviews, &out)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID > reviews[j].ID })
	return reviews, nil
}
