package service

import (
	"context"
	"fmt"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var adminTracer = otel.Tracer("service/admin")

// AdminService backs the admin surface: dashboard stats, user
// management and provider verification.
type AdminService struct {
	store         port.AdminStore
	providerStore port.ProviderStore
	bookingStore  port.BookingStore
	logger        *zap.Logger
}

func NewAdminService(store port.AdminStore, providerStore port.ProviderStore, bookingStore port.BookingStore, logger *zap.Logger) *AdminService {
	return &AdminService{
		store:         store,
		providerStore: providerStore,
		bookingStore:  bookingStore,
		logger:        logger,
	}
}

// DashboardStats fans the seven aggregate queries out concurrently;
// the dashboard is the slowest admin page otherwise.
func (s *AdminService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.DashboardStats")
	defer span.End()

	var stats domain.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.store.CountUsers(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountProviders(gctx, "")
		stats.TotalProviders = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountProviders(gctx, domain.VerificationPending)
		stats.PendingProviders = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountBookings(gctx, "")
		stats.TotalBookings = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountBookings(gctx, domain.BookingCompleted)
		stats.CompletedBookings = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountBookings(gctx, domain.BookingCancelled)
		stats.CancelledBookings = n
		return err
	})
	g.Go(func() error {
		sum, err := s.store.SumCompletedRevenue(gctx)
		stats.TotalRevenue = sum
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gather dashboard stats: %w", err)
	}
	return &stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, int, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListUsers")
	defer span.End()

	return s.store.ListUsers(ctx, page, limit)
}

// ListProviders is the moderation view: unverified providers are
// included, optionally narrowed to one verification status.
func (s *AdminService) ListProviders(ctx context.Context, status domain.VerificationStatus, page, limit int) ([]domain.Provider, int, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListProviders")
	defer span.End()

	if status != "" && !domain.ValidVerificationStatus(status) {
		return nil, 0, &domain.ErrValidation{Field: "status", Message: "unknown verification status"}
	}
	filter := domain.ProviderFilter{IncludeUnverified: true, Status: status}
	return s.providerStore.ListProviders(ctx, filter, page, limit)
}

func (s *AdminService) ListBookings(ctx context.Context, status domain.BookingStatus, page, limit int) ([]domain.Booking, int, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListBookings")
	defer span.End()

	if status != "" && !domain.ValidBookingStatus(status) {
		return nil, 0, &domain.ErrValidation{Field: "status", Message: "unknown booking status"}
	}
	return s.bookingStore.ListBookings(ctx, domain.BookingFilter{Status: status}, page, limit)
}

func (s *AdminService) UpdateUserRole(ctx context.Context, userID string, req *domain.UpdateUserRoleRequest) (*domain.User, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateUserRole")
	defer span.End()

	if !domain.ValidRole(req.Role) {
		return nil, &domain.ErrValidation{Field: "role", Message: "unknown role"}
	}

	user, err := s.store.UpdateUserRole(ctx, userID, req.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role updated",
		zap.String("user_id", userID),
		zap.String("role", string(req.Role)),
	)
	return user, nil
}

// VerifyProvider applies the admin verdict: verified or rejected.
func (s *AdminService) VerifyProvider(ctx context.Context, providerID string, req *domain.VerifyProviderRequest) (*domain.Provider, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.VerifyProvider")
	defer span.End()

	if req.Status != domain.VerificationVerified && req.Status != domain.VerificationRejected {
		return nil, &domain.ErrValidation{Field: "status", Message: "status must be verified or rejected"}
	}

	provider, err := s.providerStore.UpdateProvider(ctx, providerID, map[string]any{
		"verification_status": string(req.Status),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("provider verification updated",
		zap.String("provider_id", providerID),
		zap.String("status", string(req.Status)),
	)
	return provider, nil
}
