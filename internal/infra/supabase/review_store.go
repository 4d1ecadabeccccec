package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/helpers-app/helpers-api/internal/domain"
)

// ============================================================
// ReviewStore implementation — reviews
//
// The recompute_provider_rating trigger fires on every write here and
// refreshes providers.rating_average / total_reviews; nothing in this
// file touches the providers table.
// ============================================================

const reviewSelect = "select=*,customer:profiles!reviews_customer_id_fkey(*)"

func (c *Client) CreateReview(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateReview")
	defer span.End()

	data := map[string]any{
		"booking_id":  r.BookingID,
		"customer_id": r.CustomerID,
		"provider_id": r.ProviderID,
		"rating":      r.Rating,
		"comment":     r.Comment,
	}

	body, err := c.doPost(ctx, "reviews", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.Review
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created review: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create review: empty representation")
	}
	return &rows[0], nil
}

func (c *Client) GetReviewByBooking(ctx context.Context, bookingID string) (*domain.Review, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetReviewByBooking")
	defer span.End()

	path := fmt.Sprintf("reviews?booking_id=eq.%s&limit=1", bookingID)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, nil
	}

	var rows []domain.Review
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) ListReviewsByProvider(ctx context.Context, providerID string, page, limit int) ([]domain.Review, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListReviewsByProvider")
	defer span.End()

	path := fmt.Sprintf("reviews?provider_id=eq.%s&%s&order=created_at.desc", providerID, reviewSelect)

	from := (page - 1) * limit
	to := from + limit - 1

	body, total, err := c.doGetWithCount(ctx, path, from, to)
	if err != nil {
		return nil, 0, err
	}
	if isEmpty(body) {
		return []domain.Review{}, total, nil
	}

	var rows []domain.Review
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode reviews: %w", err)
	}
	return rows, total, nil
}
