package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/helpers-app/helpers-api/internal/domain"
)

// ============================================================
// CatalogStore implementation — service_categories, services
// ============================================================

func (c *Client) ListCategories(ctx context.Context, includeInactive bool) ([]domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	path := "service_categories?order=name.asc"
	if !includeInactive {
		path += "&is_active=eq.true"
	}

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return []domain.ServiceCategory{}, nil
	}

	var rows []domain.ServiceCategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode service_categories: %w", err)
	}
	return rows, nil
}

func (c *Client) GetCategory(ctx context.Context, categoryID string) (*domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCategory")
	defer span.End()

	path := fmt.Sprintf("service_categories?id=eq.%s&limit=1", categoryID)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}

	var rows []domain.ServiceCategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode service_categories: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return &rows[0], nil
}

func (c *Client) CreateCategory(ctx context.Context, cat *domain.ServiceCategory) (*domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	data := map[string]any{
		"name":        cat.Name,
		"description": cat.Description,
		"icon_url":    cat.IconURL,
		"is_active":   true,
	}

	body, err := c.doPost(ctx, "service_categories", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.ServiceCategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created category: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create category: empty representation")
	}
	return &rows[0], nil
}

func (c *Client) UpdateCategory(ctx context.Context, categoryID string, updates map[string]any) (*domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCategory")
	defer span.End()

	path := fmt.Sprintf("service_categories?id=eq.%s", categoryID)
	if err := c.doPatch(ctx, path, updates); err != nil {
		return nil, err
	}
	return c.GetCategory(ctx, categoryID)
}

// --- Services ---

// serviceSelect embeds the parent category on every service read.
const serviceSelect = "select=*,category:service_categories(*)"

func (c *Client) ListServices(ctx context.Context, filter domain.ServiceFilter, page, limit int) ([]domain.Service, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListServices")
	defer span.End()

	path := "services?" + serviceSelect + "&order=name.asc"
	if !filter.IncludeInactive {
		path += "&is_active=eq.true"
	}
	if filter.CategoryID != "" {
		path += "&category_id=eq." + filter.CategoryID
	}
	if filter.Search != "" {
		path += "&name=ilike." + url.QueryEscape("*"+filter.Search+"*")
	}

	from := (page - 1) * limit
	to := from + limit - 1

	body, total, err := c.doGetWithCount(ctx, path, from, to)
	if err != nil {
		return nil, 0, err
	}
	if isEmpty(body) {
		return []domain.Service{}, total, nil
	}

	var rows []domain.Service
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode services: %w", err)
	}
	return rows, total, nil
}

func (c *Client) GetService(ctx context.Context, serviceID string) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetService")
	defer span.End()

	path := fmt.Sprintf("services?id=eq.%s&%s&limit=1", serviceID, serviceSelect)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, &domain.ErrNotFound{Resource: "service", ID: serviceID}
	}

	var rows []domain.Service
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "service", ID: serviceID}
	}
	return &rows[0], nil
}

func (c *Client) CreateService(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateService")
	defer span.End()

	data := map[string]any{
		"category_id":      s.CategoryID,
		"name":             s.Name,
		"description":      s.Description,
		"base_price":       s.BasePrice,
		"duration_minutes": s.DurationMinutes,
		"image_url":        s.ImageURL,
		"is_active":        true,
	}

	body, err := c.doPost(ctx, "services", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.Service
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created service: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create service: empty representation")
	}
	return &rows[0], nil
}

func (c *Client) UpdateService(ctx context.Context, serviceID string, updates map[string]any) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateService")
	defer span.End()

	path := fmt.Sprintf("services?id=eq.%s", serviceID)
	if err := c.doPatch(ctx, path, updates); err != nil {
		return nil, err
	}
	return c.GetService(ctx, serviceID)
}
