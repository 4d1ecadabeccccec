package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/helpers-app/helpers-api/internal/domain"
)

// ============================================================
// BookingStore implementation — bookings
// ============================================================

// bookingSelect embeds the booked service and the provider card.
const bookingSelect = "select=*,service:services(*),provider:providers(*)"

func (c *Client) CreateBooking(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBooking")
	defer span.End()

	data := map[string]any{
		"customer_id":    b.CustomerID,
		"provider_id":    b.ProviderID,
		"service_id":     b.ServiceID,
		"booking_date":   b.BookingDate,
		"start_time":     b.StartTime,
		"end_time":       b.EndTime,
		"status":         string(domain.BookingPending),
		"payment_status": string(domain.PaymentPending),
		"total_amount":   b.TotalAmount,
		"address":        b.Address,
		"notes":          b.Notes,
	}

	body, err := c.doPost(ctx, "bookings", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.Booking
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created booking: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create booking: empty representation")
	}
	return &rows[0], nil
}

func (c *Client) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBooking")
	defer span.End()

	path := fmt.Sprintf("bookings?id=eq.%s&%s&limit=1", bookingID, bookingSelect)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, &domain.ErrNotFound{Resource: "booking", ID: bookingID}
	}

	var rows []domain.Booking
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "booking", ID: bookingID}
	}
	return &rows[0], nil
}

func (c *Client) ListBookings(ctx context.Context, filter domain.BookingFilter, page, limit int) ([]domain.Booking, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBookings")
	defer span.End()

	path := "bookings?" + bookingSelect + "&order=booking_date.desc,start_time.desc"
	if filter.CustomerID != "" {
		path += "&customer_id=eq." + filter.CustomerID
	}
	if filter.ProviderID != "" {
		path += "&provider_id=eq." + filter.ProviderID
	}
	if filter.Status != "" {
		path += "&status=eq." + string(filter.Status)
	}

	from := (page - 1) * limit
	to := from + limit - 1

	body, total, err := c.doGetWithCount(ctx, path, from, to)
	if err != nil {
		return nil, 0, err
	}
	if isEmpty(body) {
		return []domain.Booking{}, total, nil
	}

	var rows []domain.Booking
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode bookings: %w", err)
	}
	return rows, total, nil
}

// UpdateBookingStatus applies a transition conditionally: the previous
// status rides along as a PostgREST filter, so a booking that moved
// under us matches zero rows and the write is a no-op reported as a
// conflict instead of an overwrite.
func (c *Client) UpdateBookingStatus(ctx context.Context, bookingID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBookingStatus")
	defer span.End()

	path := fmt.Sprintf("bookings?id=eq.%s&status=eq.%s", bookingID, from)
	body, err := c.doPatchReturning(ctx, path, map[string]any{"status": string(to)})
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, &domain.ErrConflict{
			Message:      fmt.Sprintf("booking is no longer %s", from),
			TaxonomyCode: "STATUS_CONFLICT",
		}
	}
	// Refetch for the embedded service and provider cards.
	return c.GetBooking(ctx, bookingID)
}

func (c *Client) UpdateBookingPaymentStatus(ctx context.Context, bookingID string, status domain.PaymentStatus) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBookingPaymentStatus")
	defer span.End()

	path := fmt.Sprintf("bookings?id=eq.%s", bookingID)
	return c.doPatch(ctx, path, map[string]any{"payment_status": string(status)})
}
