package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/helpers-app/helpers-api/internal/domain"
)

// ============================================================
// ProviderStore implementation — providers, provider_services,
// provider_availability
// ============================================================

// providerSelect embeds the profile and offered services on reads.
const providerSelect = "select=*,profile:profiles!providers_user_id_fkey(*),services:provider_services(*,service:services(*))"

func (c *Client) ListProviders(ctx context.Context, filter domain.ProviderFilter, page, limit int) ([]domain.Provider, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProviders")
	defer span.End()

	path := "providers?" + providerSelect + "&order=rating_average.desc"
	if filter.Status != "" {
		path += "&verification_status=eq." + string(filter.Status)
	} else if !filter.IncludeUnverified {
		path += "&verification_status=eq.verified"
	}
	if filter.ServiceID != "" {
		// Inner join on the offering so only providers that carry the
		// service survive the filter.
		path += "&provider_services.service_id=eq." + filter.ServiceID +
			"&provider_services=not.is.null"
	}
	if filter.Area != "" {
		path += "&service_areas=cs." + url.QueryEscape(fmt.Sprintf(`{"%s"}`, filter.Area))
	}

	from := (page - 1) * limit
	to := from + limit - 1

	body, total, err := c.doGetWithCount(ctx, path, from, to)
	if err != nil {
		return nil, 0, err
	}
	if isEmpty(body) {
		return []domain.Provider{}, total, nil
	}

	var rows []domain.Provider
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode providers: %w", err)
	}
	return rows, total, nil
}

func (c *Client) GetProvider(ctx context.Context, providerID string) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProvider")
	defer span.End()

	path := fmt.Sprintf("providers?id=eq.%s&%s&limit=1", providerID, providerSelect)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, &domain.ErrNotFound{Resource: "provider", ID: providerID}
	}

	var rows []domain.Provider
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "provider", ID: providerID}
	}
	return &rows[0], nil
}

func (c *Client) GetProviderByUserID(ctx context.Context, userID string) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProviderByUserID")
	defer span.End()

	path := fmt.Sprintf("providers?user_id=eq.%s&limit=1", userID)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, nil
	}

	var rows []domain.Provider
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) CreateProvider(ctx context.Context, p *domain.Provider) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProvider")
	defer span.End()

	data := map[string]any{
		"user_id":             p.UserID,
		"business_name":       p.BusinessName,
		"bio":                 p.Bio,
		"experience_years":    p.ExperienceYears,
		"service_areas":       p.ServiceAreas,
		"verification_status": string(domain.VerificationPending),
	}

	body, err := c.doPost(ctx, "providers", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.Provider
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created provider: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create provider: empty representation")
	}
	return &rows[0], nil
}

func (c *Client) UpdateProvider(ctx context.Context, providerID string, updates map[string]any) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProvider")
	defer span.End()

	path := fmt.Sprintf("providers?id=eq.%s", providerID)
	if err := c.doPatch(ctx, path, updates); err != nil {
		return nil, err
	}
	return c.GetProvider(ctx, providerID)
}

// --- Provider services ---

func (c *Client) ListProviderServices(ctx context.Context, providerID string) ([]domain.ProviderService, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProviderServices")
	defer span.End()

	path := fmt.Sprintf("provider_services?provider_id=eq.%s&select=*,service:services(*)", providerID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return []domain.ProviderService{}, nil
	}

	var rows []domain.ProviderService
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode provider_services: %w", err)
	}
	return rows, nil
}

func (c *Client) AttachService(ctx context.Context, ps *domain.ProviderService) (*domain.ProviderService, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AttachService")
	defer span.End()

	data := map[string]any{
		"provider_id": ps.ProviderID,
		"service_id":  ps.ServiceID,
	}
	if ps.CustomPrice != nil {
		data["custom_price"] = *ps.CustomPrice
	}

	body, err := c.doPost(ctx, "provider_services", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.ProviderService
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created provider_service: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("attach service: empty representation")
	}
	return &rows[0], nil
}

func (c *Client) DetachService(ctx context.Context, providerID, serviceID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DetachService")
	defer span.End()

	path := fmt.Sprintf("provider_services?provider_id=eq.%s&service_id=eq.%s", providerID, serviceID)
	return c.doDelete(ctx, path)
}

func (c *Client) GetProviderService(ctx context.Context, providerID, serviceID string) (*domain.ProviderService, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProviderService")
	defer span.End()

	path := fmt.Sprintf("provider_services?provider_id=eq.%s&service_id=eq.%s&limit=1", providerID, serviceID)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, nil
	}

	var rows []domain.ProviderService
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode provider_services: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// --- Availability ---

func (c *Client) ListAvailability(ctx context.Context, providerID string) ([]domain.ProviderAvailability, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAvailability")
	defer span.End()

	path := fmt.Sprintf("provider_availability?provider_id=eq.%s&order=day_of_week.asc,start_time.asc", providerID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return []domain.ProviderAvailability{}, nil
	}

	var rows []domain.ProviderAvailability
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode provider_availability: %w", err)
	}
	return rows, nil
}

func (c *Client) CreateAvailability(ctx context.Context, a *domain.ProviderAvailability) (*domain.ProviderAvailability, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAvailability")
	defer span.End()

	data := map[string]any{
		"provider_id": a.ProviderID,
		"day_of_week": a.DayOfWeek,
		"start_time":  a.StartTime,
		"end_time":    a.EndTime,
	}

	body, err := c.doPost(ctx, "provider_availability", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.ProviderAvailability
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created availability: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create availability: empty representation")
	}
	return &rows[0], nil
}

func (c *Client) DeleteAvailability(ctx context.Context, providerID, availabilityID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAvailability")
	defer span.End()

	path := fmt.Sprintf("provider_availability?id=eq.%s&provider_id=eq.%s", availabilityID, providerID)
	return c.doDelete(ctx, path)
}
