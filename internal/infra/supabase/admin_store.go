package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/helpers-app/helpers-api/internal/domain"
)

// ============================================================
// AdminStore implementation — dashboard aggregates, user admin
// ============================================================

// count issues a ranged request for a single row and reads the total
// from Content-Range, so counting never transfers the table.
func (c *Client) count(ctx context.Context, path string) (int, error) {
	_, total, err := c.doGetWithCount(ctx, path, 0, 0)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (c *Client) CountUsers(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountUsers")
	defer span.End()

	return c.count(ctx, "users?select=id")
}

func (c *Client) CountProviders(ctx context.Context, status domain.VerificationStatus) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountProviders")
	defer span.End()

	path := "providers?select=id"
	if status != "" {
		path += "&verification_status=eq." + string(status)
	}
	return c.count(ctx, path)
}

func (c *Client) CountBookings(ctx context.Context, status domain.BookingStatus) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountBookings")
	defer span.End()

	path := "bookings?select=id"
	if status != "" {
		path += "&status=eq." + string(status)
	}
	return c.count(ctx, path)
}

// SumCompletedRevenue totals the amounts of completed, paid bookings.
// The projection keeps the transfer to a single numeric column.
func (c *Client) SumCompletedRevenue(ctx context.Context) (float64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SumCompletedRevenue")
	defer span.End()

	path := "bookings?status=eq.completed&payment_status=eq.paid&select=total_amount"
	body, err := c.doGet(ctx, path)
	if err != nil {
		return 0, err
	}
	if isEmpty(body) {
		return 0, nil
	}

	var rows []struct {
		TotalAmount float64 `json:"total_amount"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode revenue rows: %w", err)
	}

	var sum float64
	for _, r := range rows {
		sum += r.TotalAmount
	}
	return sum, nil
}

func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]domain.User, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsers")
	defer span.End()

	path := "users?order=created_at.desc"

	from := (page - 1) * limit
	to := from + limit - 1

	body, total, err := c.doGetWithCount(ctx, path, from, to)
	if err != nil {
		return nil, 0, err
	}
	if isEmpty(body) {
		return []domain.User{}, total, nil
	}

	var rows []domain.User
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}
	return rows, total, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUserRole")
	defer span.End()

	path := fmt.Sprintf("users?id=eq.%s", userID)
	if err := c.doPatch(ctx, path, map[string]any{"role": string(role)}); err != nil {
		return nil, err
	}

	user, err := c.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	return user, nil
}
