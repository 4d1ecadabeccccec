// Package payment holds the gateway implementations behind
// port.PaymentGateway. Only the sandbox ships today; swapping in a real
// processor is a constructor change in main.
package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/helpers-app/helpers-api/internal/domain"
)

var tracer = otel.Tracer("payment")

// Sandbox is an in-memory payment gateway. Intents always confirm
// successfully; the client secret is fabricated and safe to log.
type Sandbox struct {
	mu      sync.Mutex
	intents map[string]*domain.PaymentIntent
	logger  *zap.Logger
}

func NewSandbox(logger *zap.Logger) *Sandbox {
	return &Sandbox{
		intents: make(map[string]*domain.PaymentIntent),
		logger:  logger,
	}
}

func (s *Sandbox) CreateIntent(ctx context.Context, bookingID string, amount float64, currency string) (*domain.PaymentIntent, error) {
	_, span := tracer.Start(ctx, "Sandbox.CreateIntent")
	defer span.End()

	if amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must be positive"}
	}

	id := "pi_sandbox_" + uuid.NewString()
	intent := &domain.PaymentIntent{
		ID:           id,
		BookingID:    bookingID,
		Amount:       amount,
		Currency:     currency,
		ClientSecret: fabricateSecret(id, bookingID),
		Status:       "requires_confirmation",
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.intents[id] = intent
	s.mu.Unlock()

	s.logger.Info("sandbox: payment intent created",
		zap.String("intent_id", id),
		zap.String("booking_id", bookingID),
		zap.Float64("amount", amount),
	)
	return intent, nil
}

func (s *Sandbox) ConfirmIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	_, span := tracer.Start(ctx, "Sandbox.ConfirmIntent")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[intentID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "payment intent", ID: intentID}
	}
	if intent.Status == "succeeded" {
		return intent, nil // idempotent confirm
	}

	intent.Status = "succeeded"
	s.logger.Info("sandbox: payment intent confirmed",
		zap.String("intent_id", intentID),
		zap.String("booking_id", intent.BookingID),
	)
	return intent, nil
}

// fabricateSecret derives a deterministic secret so repeated test runs
// see stable values for the same intent.
func fabricateSecret(intentID, bookingID string) string {
	sum := sha256.Sum256([]byte(intentID + ":" + bookingID))
	return fmt.Sprintf("%s_secret_%s", intentID, hex.EncodeToString(sum[:8]))
}
