package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/infra/observability"
	"github.com/helpers-app/helpers-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var catalogTracer = otel.Tracer("service/catalog")

const (
	categoriesCacheKey = "categories:active"
)

// CatalogService serves the public category/service taxonomy and the
// admin write paths behind it. The active-category listing is the
// hottest read in the system and is served from cache.
type CatalogService struct {
	store   port.CatalogStore
	cache   port.Cache[[]domain.ServiceCategory]
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewCatalogService(store port.CatalogStore, cache port.Cache[[]domain.ServiceCategory], metrics *observability.Metrics, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// ============================================================
// Categories
// ============================================================

func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]domain.ServiceCategory, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ListCategories")
	defer span.End()

	// Only the public (active-only) listing is cached; the admin view
	// must always see fresh rows.
	if !includeInactive {
		if cached, ok := s.cache.Get(categoriesCacheKey); ok {
			s.metrics.IncrCacheHit("categories")
			return cached, nil
		}
		s.metrics.IncrCacheMiss("categories")
	}

	categories, err := s.store.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if !includeInactive {
		s.cache.Set(categoriesCacheKey, categories)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, categoryID string) (*domain.ServiceCategory, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.GetCategory")
	defer span.End()

	return s.store.GetCategory(ctx, categoryID)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.ServiceCategory, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.CreateCategory")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	created, err := s.store.CreateCategory(ctx, &domain.ServiceCategory{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IconURL:     req.IconURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.cache.Delete(categoriesCacheKey)
	s.logger.Info("category created", zap.String("category_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID string, req *domain.UpdateCategoryRequest) (*domain.ServiceCategory, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.UpdateCategory")
	defer span.End()

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.IconURL != "" {
		updates["icon_url"] = req.IconURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	updated, err := s.store.UpdateCategory(ctx, categoryID, updates)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.cache.Delete(categoriesCacheKey)
	return updated, nil
}

// ============================================================
// Services
// ============================================================

func (s *CatalogService) ListServices(ctx context.Context, filter domain.ServiceFilter, page, limit int) ([]domain.Service, int, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ListServices")
	defer span.End()

	return s.store.ListServices(ctx, filter, page, limit)
}

func (s *CatalogService) GetService(ctx context.Context, serviceID string) (*domain.Service, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.GetService")
	defer span.End()

	return s.store.GetService(ctx, serviceID)
}

func (s *CatalogService) CreateService(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.CreateService")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if req.CategoryID == "" {
		return nil, &domain.ErrValidation{Field: "categoryId", Message: "categoryId is required"}
	}
	if req.BasePrice <= 0 {
		return nil, &domain.ErrValidation{Field: "basePrice", Message: "base price must be positive"}
	}
	if req.DurationMinutes <= 0 {
		return nil, &domain.ErrValidation{Field: "durationMinutes", Message: "duration must be positive"}
	}

	// Fail early with a clean error instead of a FK violation.
	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.store.CreateService(ctx, &domain.Service{
		CategoryID:      req.CategoryID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		DurationMinutes: req.DurationMinutes,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.logger.Info("service created", zap.String("service_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, serviceID string, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.UpdateService")
	defer span.End()

	updates := map[string]any{}
	if req.CategoryID != "" {
		updates["category_id"] = req.CategoryID
	}
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.BasePrice != nil {
		if *req.BasePrice <= 0 {
			return nil, &domain.ErrValidation{Field: "basePrice", Message: "base price must be positive"}
		}
		updates["base_price"] = *req.BasePrice
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, &domain.ErrValidation{Field: "durationMinutes", Message: "duration must be positive"}
		}
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.store.UpdateService(ctx, serviceID, updates)
}
