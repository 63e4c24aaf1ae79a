package models

// PackageStatus is the lifecycle state of a Package.
type PackageStatus string

const (
	PackagePending   PackageStatus = "pending"
	PackageMatched   PackageStatus = "matched"
	PackageDelivered PackageStatus = "delivered"
)

// DeliveryStatus is the carriage state of a Delivery.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// PaymentStatus is the escrow state of a Delivery's payment, tracked
// independently of the carriage state.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentInEscrow PaymentStatus = "in_escrow"
	PaymentReleased PaymentStatus = "released"
	PaymentRefunded PaymentStatus = "refunded"
)

// deliveryTransitions is the allowed forward-only transition table for
// DeliveryStatus. Cancellation is allowed until the package is delivered.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:   {DeliveryInTransit, DeliveryCancelled},
	DeliveryInTransit: {DeliveryDelivered, DeliveryCancelled},
}

// paymentTransitions is the allowed transition table for PaymentStatus.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentInEscrow},
	PaymentInEscrow: {PaymentReleased, PaymentRefunded},
}

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryInTransit, DeliveryDelivered, DeliveryCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, allowed := range deliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentInEscrow, PaymentReleased, PaymentRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
