package service

import (
	"context"
	"fmt"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var reviewTracer = otel.Tracer("service/review")

// ReviewService enforces the review preconditions; the provider rating
// aggregate itself is recomputed by a database trigger on every review
// write, so this service never touches provider rows.
type ReviewService struct {
	store        port.ReviewStore
	bookingStore port.BookingStore
	logger       *zap.Logger
}

func NewReviewService(store port.ReviewStore, bookingStore port.BookingStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		store:        store,
		bookingStore: bookingStore,
		logger:       logger,
	}
}

// Create writes a review for a completed booking. Only the booking's
// customer may review, exactly once per booking.
func (s *ReviewService) Create(ctx context.Context, customerID string, req *domain.CreateReviewRequest) (*domain.Review, error) {
	ctx, span := reviewTracer.Start(ctx, "ReviewService.Create")
	defer span.End()

	if req.BookingID == "" {
		return nil, &domain.ErrValidation{Field: "bookingId", Message: "bookingId is required"}
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, &domain.ErrValidation{Field: "rating", Message: "rating must be between 1 and 5"}
	}

	booking, err := s.bookingStore.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, &domain.ErrForbidden{Action: "review a booking that is not yours"}
	}
	if booking.Status != domain.BookingCompleted {
		return nil, &domain.ErrValidation{Field: "bookingId", Message: "only completed bookings can be reviewed"}
	}

	existing, err := s.store.GetReviewByBooking(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "booking already reviewed", TaxonomyCode: "REVIEW_EXISTS"}
	}

	review, err := s.store.CreateReview(ctx, &domain.Review{
		BookingID:  req.BookingID,
		CustomerID: customerID,
		ProviderID: booking.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review created",
		zap.String("review_id", review.ID),
		zap.String("booking_id", req.BookingID),
		zap.String("provider_id", booking.ProviderID),
		zap.Int("rating", req.Rating),
	)
	return review, nil
}

// ListByProvider returns a provider's reviews, newest first.
func (s *ReviewService) ListByProvider(ctx context.Context, providerID string, page, limit int) ([]domain.Review, int, error) {
	ctx, span := reviewTracer.Start(ctx, "ReviewService.ListByProvider")
	defer span.End()

	return s.store.ListReviewsByProvider(ctx, providerID, page, limit)
}
