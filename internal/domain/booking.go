package domain

import "time"

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// PaymentStatus tracks the payment lifecycle of a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// bookingTransitions is the legal-transition table. Anything not listed
// here is rejected regardless of who asks, admins included: a jump like
// completed -> pending would break the review precondition and the
// payment flow.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionAllowedFor reports whether the given role may request the
// from -> to edge. The edge must already be legal per CanTransition.
// Customers may only cancel; providers drive the fulfillment path;
// admins may apply any legal edge.
func TransitionAllowedFor(role Role, from, to BookingStatus) bool {
	if !CanTransition(from, to) {
		return false
	}
	switch role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return to == BookingCancelled
	case RoleProvider:
		return to == BookingConfirmed || to == BookingInProgress ||
			to == BookingCompleted || to == BookingCancelled
	}
	return false
}

// ValidBookingStatus reports whether s is a known status.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Address is the structured JSON blob stored on a booking.
type Address struct {
	Street     string   `json:"street"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// Booking is a scheduled instance of a service performed by a provider
// for a customer.
type Booking struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	ProviderID    string        `json:"provider_id"`
	ServiceID     string        `json:"service_id"`
	BookingDate   string        `json:"booking_date"` // YYYY-MM-DD
	StartTime     string        `json:"start_time"`   // HH:MM
	EndTime       string        `json:"end_time"`     // HH:MM
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TotalAmount   float64       `json:"total_amount"`
	Address       Address       `json:"address"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Service  *Service  `json:"service,omitempty"`
	Provider *Provider `json:"provider,omitempty"`
}

// --- Booking API types ---

type CreateBookingRequest struct {
	ProviderID  string  `json:"providerId"`
	ServiceID   string  `json:"serviceId"`
	BookingDate string  `json:"bookingDate"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Address     Address `json:"address"`
	Notes       string  `json:"notes,omitempty"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Status     BookingStatus
	CustomerID string
	ProviderID string
}
