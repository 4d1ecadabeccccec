// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/helpers-app/helpers-api/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// AuthStore defines all data operations for the authentication system.
type AuthStore interface {
	// Users & profiles
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile, passwordHash string) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error)

	// Credentials
	GetCredentials(ctx context.Context, userID string) (*domain.Credential, error)
	UpdateCredentials(ctx context.Context, userID string, updates map[string]any) error

	// Refresh tokens
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// CatalogStore defines data operations for categories and services.
type CatalogStore interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]domain.ServiceCategory, error)
	GetCategory(ctx context.Context, categoryID string) (*domain.ServiceCategory, error)
	CreateCategory(ctx context.Context, c *domain.ServiceCategory) (*domain.ServiceCategory, error)
	UpdateCategory(ctx context.Context, categoryID string, updates map[string]any) (*domain.ServiceCategory, error)

	ListServices(ctx context.Context, filter domain.ServiceFilter, page, limit int) ([]domain.Service, int, error)
	GetService(ctx context.Context, serviceID string) (*domain.Service, error)
	CreateService(ctx context.Context, s *domain.Service) (*domain.Service, error)
	UpdateService(ctx context.Context, serviceID string, updates map[string]any) (*domain.Service, error)
}

// ProviderStore defines data operations for providers, their service
// offerings and weekly availability.
type ProviderStore interface {
	ListProviders(ctx context.Context, filter domain.ProviderFilter, page, limit int) ([]domain.Provider, int, error)
	GetProvider(ctx context.Context, providerID string) (*domain.Provider, error)
	GetProviderByUserID(ctx context.Context, userID string) (*domain.Provider, error)
	CreateProvider(ctx context.Context, p *domain.Provider) (*domain.Provider, error)
	UpdateProvider(ctx context.Context, providerID string, updates map[string]any) (*domain.Provider, error)

	ListProviderServices(ctx context.Context, providerID string) ([]domain.ProviderService, error)
	AttachService(ctx context.Context, ps *domain.ProviderService) (*domain.ProviderService, error)
	DetachService(ctx context.Context, providerID, serviceID string) error
	GetProviderService(ctx context.Context, providerID, serviceID string) (*domain.ProviderService, error)

	ListAvailability(ctx context.Context, providerID string) ([]domain.ProviderAvailability, error)
	CreateAvailability(ctx context.Context, a *domain.ProviderAvailability) (*domain.ProviderAvailability, error)
	DeleteAvailability(ctx context.Context, providerID, availabilityID string) error
}

// BookingStore defines data operations for bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter, page, limit int) ([]domain.Booking, int, error)
	// UpdateBookingStatus is a compare-and-set: the write only applies
	// while the booking is still in `from`, and reports ErrConflict when
	// a concurrent transition got there first.
	UpdateBookingStatus(ctx context.Context, bookingID string, from, to domain.BookingStatus) (*domain.Booking, error)
	UpdateBookingPaymentStatus(ctx context.Context, bookingID string, status domain.PaymentStatus) error
}

// ReviewStore defines data operations for reviews. Provider rating
// aggregates are recomputed by a database trigger on every review write;
// no method here ever updates providers.rating_average directly.
type ReviewStore interface {
	CreateReview(ctx context.Context, r *domain.Review) (*domain.Review, error)
	GetReviewByBooking(ctx context.Context, bookingID string) (*domain.Review, error)
	ListReviewsByProvider(ctx context.Context, providerID string, page, limit int) ([]domain.Review, int, error)
}

// AdminStore exposes the aggregate counts behind the dashboard.
type AdminStore interface {
	CountUsers(ctx context.Context) (int, error)
	CountProviders(ctx context.Context, status domain.VerificationStatus) (int, error)
	CountBookings(ctx context.Context, status domain.BookingStatus) (int, error)
	SumCompletedRevenue(ctx context.Context) (float64, error)
	ListUsers(ctx context.Context, page, limit int) ([]domain.User, int, error)
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)
}

// PaymentGateway isolates the payment processor. The shipped
// implementation is a sandbox that fabricates client secrets; a real
// gateway (Stripe, Razorpay) substitutes without touching booking logic.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, bookingID string, amount float64, currency string) (*domain.PaymentIntent, error)
	ConfirmIntent(ctx context.Context, intentID string) (*domain.PaymentIntent, error)
}
