package domain

import "time"

// PaymentIntent mirrors the gateway's intent object. The sandbox gateway
// fabricates client secrets; a real gateway slots in behind the same
// interface without touching booking logic.
type PaymentIntent struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	ClientSecret string    `json:"client_secret"`
	Status       string    `json:"status"` // requires_confirmation | succeeded | failed
	CreatedAt    time.Time `json:"created_at"`
}

type CreatePaymentIntentRequest struct {
	BookingID string `json:"bookingId"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// PaymentWebhookEvent is the gateway callback payload.
type PaymentWebhookEvent struct {
	Type            string `json:"type"` // payment.succeeded | payment.failed | payment.refunded
	PaymentIntentID string `json:"paymentIntentId"`
	BookingID       string `json:"bookingId"`
}
