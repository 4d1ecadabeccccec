package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var providerTracer = otel.Tracer("service/provider")

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ProviderService manages provider registration, the public directory,
// service offerings and weekly availability.
type ProviderService struct {
	store        port.ProviderStore
	catalogStore port.CatalogStore
	logger       *zap.Logger
}

func NewProviderService(store port.ProviderStore, catalogStore port.CatalogStore, logger *zap.Logger) *ProviderService {
	return &ProviderService{
		store:        store,
		catalogStore: catalogStore,
		logger:       logger,
	}
}

// ============================================================
// Registration & directory
// ============================================================

// Register creates the provider row for the calling user. The user must
// already carry the provider role; a customer upgrading goes through
// the admin role-change path first.
func (s *ProviderService) Register(ctx context.Context, userID string, role domain.Role, req *domain.RegisterProviderRequest) (*domain.Provider, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.Register")
	defer span.End()

	if role != domain.RoleProvider {
		return nil, &domain.ErrForbidden{Action: "register as provider"}
	}
	if strings.TrimSpace(req.BusinessName) == "" {
		return nil, &domain.ErrValidation{Field: "businessName", Message: "business name is required"}
	}
	if req.ExperienceYears < 0 {
		return nil, &domain.ErrValidation{Field: "experienceYears", Message: "experience years cannot be negative"}
	}

	existing, err := s.store.GetProviderByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing provider: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "provider profile already exists", TaxonomyCode: "PROVIDER_EXISTS"}
	}

	areas := req.ServiceAreas
	if areas == nil {
		areas = []string{}
	}

	created, err := s.store.CreateProvider(ctx, &domain.Provider{
		UserID:          userID,
		BusinessName:    strings.TrimSpace(req.BusinessName),
		Bio:             req.Bio,
		ExperienceYears: req.ExperienceYears,
		ServiceAreas:    areas,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	s.logger.Info("provider registered",
		zap.String("provider_id", created.ID),
		zap.String("user_id", userID),
	)
	return created, nil
}

// List returns the public provider directory. Only admins may see
// unverified providers.
func (s *ProviderService) List(ctx context.Context, role domain.Role, filter domain.ProviderFilter, page, limit int) ([]domain.Provider, int, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.List")
	defer span.End()

	if role != domain.RoleAdmin {
		filter.IncludeUnverified = false
		filter.Status = ""
	}
	return s.store.ListProviders(ctx, filter, page, limit)
}

// Get returns a provider for the public directory. Unverified providers
// are invisible to everyone except their owner and admins, the same rule
// the row-level policy on the providers table applies to anon-key reads.
func (s *ProviderService) Get(ctx context.Context, callerUserID string, role domain.Role, providerID string) (*domain.Provider, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.Get")
	defer span.End()

	p, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if p.VerificationStatus != domain.VerificationVerified &&
		role != domain.RoleAdmin && p.UserID != callerUserID {
		// A hidden provider is indistinguishable from a missing one.
		return nil, &domain.ErrNotFound{Resource: "provider", ID: providerID}
	}
	return p, nil
}

// GetOwn resolves the provider row for the calling user.
func (s *ProviderService) GetOwn(ctx context.Context, userID string) (*domain.Provider, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.GetOwn")
	defer span.End()

	p, err := s.store.GetProviderByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "provider", ID: userID}
	}
	return p, nil
}

func (s *ProviderService) Update(ctx context.Context, userID string, req *domain.UpdateProviderRequest) (*domain.Provider, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.Update")
	defer span.End()

	p, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.BusinessName != "" {
		updates["business_name"] = strings.TrimSpace(req.BusinessName)
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.ExperienceYears != nil {
		if *req.ExperienceYears < 0 {
			return nil, &domain.ErrValidation{Field: "experienceYears", Message: "experience years cannot be negative"}
		}
		updates["experience_years"] = *req.ExperienceYears
	}
	if req.ServiceAreas != nil {
		updates["service_areas"] = req.ServiceAreas
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.store.UpdateProvider(ctx, p.ID, updates)
}

// ============================================================
// Service offerings
// ============================================================

func (s *ProviderService) ListServices(ctx context.Context, callerUserID string, role domain.Role, providerID string) ([]domain.ProviderService, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListServices")
	defer span.End()

	// Surface a 404 for unknown or hidden providers instead of an
	// empty list.
	if _, err := s.Get(ctx, callerUserID, role, providerID); err != nil {
		return nil, err
	}
	return s.store.ListProviderServices(ctx, providerID)
}

func (s *ProviderService) AttachService(ctx context.Context, userID string, req *domain.AttachServiceRequest) (*domain.ProviderService, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.AttachService")
	defer span.End()

	p, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.ServiceID == "" {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "serviceId is required"}
	}
	if req.CustomPrice != nil && *req.CustomPrice <= 0 {
		return nil, &domain.ErrValidation{Field: "customPrice", Message: "custom price must be positive"}
	}

	svc, err := s.catalogStore.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "service is not active"}
	}

	existing, err := s.store.GetProviderService(ctx, p.ID, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("check existing offering: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "service already attached", TaxonomyCode: "SERVICE_ALREADY_ATTACHED"}
	}

	created, err := s.store.AttachService(ctx, &domain.ProviderService{
		ProviderID:  p.ID,
		ServiceID:   req.ServiceID,
		CustomPrice: req.CustomPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("attach service: %w", err)
	}

	s.logger.Info("service attached",
		zap.String("provider_id", p.ID),
		zap.String("service_id", req.ServiceID),
	)
	return created, nil
}

func (s *ProviderService) DetachService(ctx context.Context, userID, serviceID string) error {
	ctx, span := providerTracer.Start(ctx, "ProviderService.DetachService")
	defer span.End()

	p, err := s.GetOwn(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.store.GetProviderService(ctx, p.ID, serviceID)
	if err != nil {
		return fmt.Errorf("check existing offering: %w", err)
	}
	if existing == nil {
		return &domain.ErrNotFound{Resource: "provider service", ID: serviceID}
	}

	return s.store.DetachService(ctx, p.ID, serviceID)
}

// ============================================================
// Availability
// ============================================================

func (s *ProviderService) ListAvailability(ctx context.Context, callerUserID string, role domain.Role, providerID string) ([]domain.ProviderAvailability, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListAvailability")
	defer span.End()

	if _, err := s.Get(ctx, callerUserID, role, providerID); err != nil {
		return nil, err
	}
	return s.store.ListAvailability(ctx, providerID)
}

func (s *ProviderService) AddAvailability(ctx context.Context, userID string, req *domain.AvailabilityRequest) (*domain.ProviderAvailability, error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.AddAvailability")
	defer span.End()

	p, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, &domain.ErrValidation{Field: "dayOfWeek", Message: "day of week must be 0 (Sunday) through 6"}
	}
	if !timeOfDayRe.MatchString(req.StartTime) {
		return nil, &domain.ErrValidation{Field: "startTime", Message: "start time must be HH:MM"}
	}
	if !timeOfDayRe.MatchString(req.EndTime) {
		return nil, &domain.ErrValidation{Field: "endTime", Message: "end time must be HH:MM"}
	}
	if req.EndTime <= req.StartTime {
		return nil, &domain.ErrValidation{Field: "endTime", Message: "end time must be after start time"}
	}

	return s.store.CreateAvailability(ctx, &domain.ProviderAvailability{
		ProviderID: p.ID,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
}

func (s *ProviderService) RemoveAvailability(ctx context.Context, userID, availabilityID string) error {
	ctx, span := providerTracer.Start(ctx, "ProviderService.RemoveAvailability")
	defer span.End()

	p, err := s.GetOwn(ctx, userID)
	if err != nil {
		return err
	}
	return s.store.DeleteAvailability(ctx, p.ID, availabilityID)
}
