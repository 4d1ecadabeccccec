package service

import (
	"context"
	"fmt"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var paymentTracer = otel.Tracer("service/payment")

// PaymentService bridges bookings and the payment gateway. The gateway
// is mocked in this deployment; the booking-side payment_status writes
// are real.
type PaymentService struct {
	gateway      port.PaymentGateway
	bookingStore port.BookingStore
	logger       *zap.Logger
}

func NewPaymentService(gateway port.PaymentGateway, bookingStore port.BookingStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		gateway:      gateway,
		bookingStore: bookingStore,
		logger:       logger,
	}
}

// CreateIntent opens a payment intent for a booking. Only the booking's
// customer may pay, and only while the payment is still pending.
func (s *PaymentService) CreateIntent(ctx context.Context, customerID string, req *domain.CreatePaymentIntentRequest) (*domain.PaymentIntent, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.CreateIntent")
	defer span.End()

	if req.BookingID == "" {
		return nil, &domain.ErrValidation{Field: "bookingId", Message: "bookingId is required"}
	}

	booking, err := s.bookingStore.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, &domain.ErrForbidden{Action: "pay for a booking that is not yours"}
	}
	if booking.Status == domain.BookingCancelled {
		return nil, &domain.ErrValidation{Field: "bookingId", Message: "cannot pay for a cancelled booking"}
	}
	if booking.PaymentStatus == domain.PaymentPaid {
		return nil, &domain.ErrConflict{Message: "booking is already paid", TaxonomyCode: "ALREADY_PAID"}
	}

	intent, err := s.gateway.CreateIntent(ctx, booking.ID, booking.TotalAmount, "usd")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "payment-gateway", Err: err}
	}

	s.logger.Info("payment intent created",
		zap.String("intent_id", intent.ID),
		zap.String("booking_id", booking.ID),
	)
	return intent, nil
}

// Confirm settles an intent and marks the booking paid.
func (s *PaymentService) Confirm(ctx context.Context, customerID string, req *domain.ConfirmPaymentRequest) (*domain.PaymentIntent, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Confirm")
	defer span.End()

	if req.PaymentIntentID == "" {
		return nil, &domain.ErrValidation{Field: "paymentIntentId", Message: "paymentIntentId is required"}
	}

	intent, err := s.gateway.ConfirmIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingStore.GetBooking(ctx, intent.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, &domain.ErrForbidden{Action: "confirm a payment for a booking that is not yours"}
	}

	if err := s.bookingStore.UpdateBookingPaymentStatus(ctx, intent.BookingID, domain.PaymentPaid); err != nil {
		return nil, fmt.Errorf("mark booking paid: %w", err)
	}

	s.logger.Info("payment confirmed",
		zap.String("intent_id", intent.ID),
		zap.String("booking_id", intent.BookingID),
	)
	return intent, nil
}

// HandleWebhook applies a gateway callback to the booking's payment
// status. Unknown event types are acknowledged and dropped so the
// gateway does not retry them forever.
func (s *PaymentService) HandleWebhook(ctx context.Context, event *domain.PaymentWebhookEvent) error {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.HandleWebhook")
	defer span.End()

	if event.BookingID == "" {
		return &domain.ErrValidation{Field: "bookingId", Message: "bookingId is required"}
	}

	var status domain.PaymentStatus
	switch event.Type {
	case "payment.succeeded":
		status = domain.PaymentPaid
	case "payment.failed":
		status = domain.PaymentFailed
	case "payment.refunded":
		status = domain.PaymentRefunded
	default:
		s.logger.Warn("webhook: unknown event type dropped",
			zap.String("type", event.Type),
			zap.String("booking_id", event.BookingID),
		)
		return nil
	}

	if err := s.bookingStore.UpdateBookingPaymentStatus(ctx, event.BookingID, status); err != nil {
		return fmt.Errorf("apply webhook: %w", err)
	}

	s.logger.Info("payment webhook applied",
		zap.String("type", event.Type),
		zap.String("booking_id", event.BookingID),
		zap.String("payment_status", string(status)),
	)
	return nil
}
