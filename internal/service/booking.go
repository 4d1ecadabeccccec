package service

import (
	"context"
	"fmt"
	"time"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/infra/observability"
	"github.com/helpers-app/helpers-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var bookingTracer = otel.Tracer("service/booking")

// BookingService owns the booking lifecycle: creation with server-side
// pricing, visibility rules, and status transitions through the legal
// edge table in domain.
type BookingService struct {
	store         port.BookingStore
	providerStore port.ProviderStore
	catalogStore  port.CatalogStore
	metrics       *observability.Metrics
	logger        *zap.Logger
}

func NewBookingService(store port.BookingStore, providerStore port.ProviderStore, catalogStore port.CatalogStore, metrics *observability.Metrics, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:         store,
		providerStore: providerStore,
		catalogStore:  catalogStore,
		metrics:       metrics,
		logger:        logger,
	}
}

// ============================================================
// Create — POST /api/v1/bookings
// ============================================================

// Create books a service with a provider. The total amount is always
// computed server-side: the provider's custom price when one is set on
// the offering, the service base price otherwise. Client-supplied
// amounts are never trusted.
func (s *BookingService) Create(ctx context.Context, customerID string, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "BookingService.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider_id", req.ProviderID),
		attribute.String("service_id", req.ServiceID),
	)

	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	provider, err := s.providerStore.GetProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.VerificationStatus != domain.VerificationVerified {
		return nil, &domain.ErrValidation{Field: "providerId", Message: "provider is not verified"}
	}

	svc, err := s.catalogStore.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "service is not active"}
	}

	offering, err := s.providerStore.GetProviderService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("get offering: %w", err)
	}
	if offering == nil {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "provider does not offer this service"}
	}

	amount := svc.BasePrice
	if offering.CustomPrice != nil {
		amount = *offering.CustomPrice
	}

	booking, err := s.store.CreateBooking(ctx, &domain.Booking{
		CustomerID:  customerID,
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TotalAmount: amount,
		Address:     req.Address,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("customer_id", customerID),
		zap.String("provider_id", req.ProviderID),
		zap.Float64("total_amount", amount),
	)
	return booking, nil
}

// ============================================================
// Read paths
// ============================================================

// Get returns a booking if the caller is a party to it (or an admin).
func (s *BookingService) Get(ctx context.Context, userID string, role domain.Role, bookingID string) (*domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "BookingService.Get")
	defer span.End()

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeParty(ctx, userID, role, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// List returns the caller's bookings: customers see their own,
// providers see bookings addressed to them, admins see everything.
func (s *BookingService) List(ctx context.Context, userID string, role domain.Role, status domain.BookingStatus, page, limit int) ([]domain.Booking, int, error) {
	ctx, span := bookingTracer.Start(ctx, "BookingService.List")
	defer span.End()

	if status != "" && !domain.ValidBookingStatus(status) {
		return nil, 0, &domain.ErrValidation{Field: "status", Message: "unknown booking status"}
	}

	filter := domain.BookingFilter{Status: status}
	switch role {
	case domain.RoleCustomer:
		filter.CustomerID = userID
	case domain.RoleProvider:
		p, err := s.providerStore.GetProviderByUserID(ctx, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("get provider: %w", err)
		}
		if p == nil {
			return []domain.Booking{}, 0, nil
		}
		filter.ProviderID = p.ID
	case domain.RoleAdmin:
		// no scoping
	default:
		return nil, 0, &domain.ErrForbidden{Action: "list bookings"}
	}

	return s.store.ListBookings(ctx, filter, page, limit)
}

// ============================================================
// UpdateStatus — PATCH /api/v1/bookings/{id}/status
// ============================================================

// UpdateStatus moves a booking along the lifecycle. The edge must be
// legal for everyone including admins, and the role must be entitled to
// request it: customers may only cancel, providers drive fulfillment.
func (s *BookingService) UpdateStatus(ctx context.Context, userID string, role domain.Role, bookingID string, next domain.BookingStatus) (*domain.Booking, error) {
	ctx, span := bookingTracer.Start(ctx, "BookingService.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("next_status", string(next)))

	if !domain.ValidBookingStatus(next) {
		return nil, &domain.ErrValidation{Field: "status", Message: "unknown booking status"}
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeParty(ctx, userID, role, booking); err != nil {
		return nil, err
	}

	if !domain.CanTransition(booking.Status, next) {
		return nil, &domain.ErrInvalidTransition{From: booking.Status, To: next}
	}
	if !domain.TransitionAllowedFor(role, booking.Status, next) {
		return nil, &domain.ErrForbidden{Action: fmt.Sprintf("transition booking to %s", next)}
	}

	// The status we validated against rides along as the write's
	// precondition, so two racing legal transitions cannot compose
	// into an illegal edge: the loser gets a conflict.
	updated, err := s.store.UpdateBookingStatus(ctx, bookingID, booking.Status, next)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	s.metrics.IncrBookingTransition(string(booking.Status), string(next))
	s.logger.Info("booking status updated",
		zap.String("booking_id", bookingID),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(next)),
		zap.String("by_role", string(role)),
	)

	// A cancellation of a paid booking flags the payment for refund.
	if next == domain.BookingCancelled && booking.PaymentStatus == domain.PaymentPaid {
		if err := s.store.UpdateBookingPaymentStatus(ctx, bookingID, domain.PaymentRefunded); err != nil {
			s.logger.Error("failed to mark payment refunded",
				zap.String("booking_id", bookingID),
				zap.Error(err),
			)
		} else {
			updated.PaymentStatus = domain.PaymentRefunded
		}
	}

	return updated, nil
}

// ============================================================
// Internal helpers
// ============================================================

// authorizeParty checks that the caller is the customer, the owning
// provider, or an admin.
func (s *BookingService) authorizeParty(ctx context.Context, userID string, role domain.Role, booking *domain.Booking) error {
	if role == domain.RoleAdmin {
		return nil
	}
	if role == domain.RoleCustomer && booking.CustomerID == userID {
		return nil
	}
	if role == domain.RoleProvider {
		p, err := s.providerStore.GetProviderByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("get provider: %w", err)
		}
		if p != nil && p.ID == booking.ProviderID {
			return nil
		}
	}
	return &domain.ErrForbidden{Action: "access booking"}
}

func validateBookingRequest(req *domain.CreateBookingRequest) error {
	if req.ProviderID == "" {
		return &domain.ErrValidation{Field: "providerId", Message: "providerId is required"}
	}
	if req.ServiceID == "" {
		return &domain.ErrValidation{Field: "serviceId", Message: "serviceId is required"}
	}
	date, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return &domain.ErrValidation{Field: "bookingDate", Message: "booking date must be YYYY-MM-DD"}
	}
	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		return &domain.ErrValidation{Field: "bookingDate", Message: "booking date cannot be in the past"}
	}
	if !timeOfDayRe.MatchString(req.StartTime) {
		return &domain.ErrValidation{Field: "startTime", Message: "start time must be HH:MM"}
	}
	if !timeOfDayRe.MatchString(req.EndTime) {
		return &domain.ErrValidation{Field: "endTime", Message: "end time must be HH:MM"}
	}
	if req.EndTime <= req.StartTime {
		return &domain.ErrValidation{Field: "endTime", Message: "end time must be after start time"}
	}
	if req.Address.Street == "" || req.Address.City == "" {
		return &domain.ErrValidation{Field: "address", Message: "address street and city are required"}
	}
	return nil
}
