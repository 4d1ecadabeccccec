package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/helpers-app/helpers-api/internal/domain"
)

// In-memory store fakes shared by the service tests.

// --- AuthStore ---

type stubAuthStore struct {
	users    map[string]*domain.User // by id
	byEmail  map[string]*domain.User
	profiles map[string]*domain.Profile
	creds    map[string]*domain.Credential
	refresh  map[string]*domain.RefreshToken // by token hash
}

func newStubAuthStore() *stubAuthStore {
	return &stubAuthStore{
		users:    map[string]*domain.User{},
		byEmail:  map[string]*domain.User{},
		profiles: map[string]*domain.Profile{},
		creds:    map[string]*domain.Credential{},
		refresh:  map[string]*domain.RefreshToken{},
	}
}

func (s *stubAuthStore) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	return s.users[userID], nil
}

func (s *stubAuthStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.byEmail[email], nil
}

func (s *stubAuthStore) CreateUserWithProfile(_ context.Context, user *domain.User, profile *domain.Profile, passwordHash string) error {
	s.users[user.ID] = user
	s.byEmail[user.Email] = user
	s.profiles[user.ID] = profile
	s.creds[user.ID] = &domain.Credential{UserID: user.ID, PasswordHash: passwordHash}
	return nil
}

func (s *stubAuthStore) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	return s.profiles[userID], nil
}

func (s *stubAuthStore) UpdateProfile(_ context.Context, userID string, updates map[string]any) (*domain.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	if v, ok := updates["full_name"].(string); ok {
		p.FullName = v
	}
	if v, ok := updates["phone"].(string); ok {
		p.Phone = v
	}
	if v, ok := updates["avatar_url"].(string); ok {
		p.AvatarURL = v
	}
	return p, nil
}

func (s *stubAuthStore) GetCredentials(_ context.Context, userID string) (*domain.Credential, error) {
	c, ok := s.creds[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: userID}
	}
	return c, nil
}

func (s *stubAuthStore) UpdateCredentials(_ context.Context, userID string, updates map[string]any) error {
	c, ok := s.creds[userID]
	if !ok {
		return &domain.ErrNotFound{Resource: "credentials", ID: userID}
	}
	if v, ok := updates["failed_attempts"].(int); ok {
		c.FailedAttempts = v
	}
	if v, present := updates["locked_until"]; present {
		if v == nil {
			c.LockedUntil = nil
		} else if ts, ok := v.(string); ok {
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return err
			}
			c.LockedUntil = &parsed
		}
	}
	return nil
}

func (s *stubAuthStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.refresh[tokenHash] = &domain.RefreshToken{
		ID:        fmt.Sprintf("rt-%d", len(s.refresh)+1),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (s *stubAuthStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	t, ok := s.refresh[tokenHash]
	if !ok || t.Revoked {
		return nil, nil
	}
	return t, nil
}

func (s *stubAuthStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if t, ok := s.refresh[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}

func (s *stubAuthStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	for _, t := range s.refresh {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

// --- CatalogStore ---

type stubCatalogStore struct {
	categories []domain.ServiceCategory
	services   map[string]*domain.Service
	listCalls  int
}

func newStubCatalogStore() *stubCatalogStore {
	return &stubCatalogStore{services: map[string]*domain.Service{}}
}

func (s *stubCatalogStore) ListCategories(_ context.Context, includeInactive bool) ([]domain.ServiceCategory, error) {
	s.listCalls++
	var out []domain.ServiceCategory
	for _, c := range s.categories {
		if includeInactive || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCatalogStore) GetCategory(_ context.Context, categoryID string) (*domain.ServiceCategory, error) {
	for i := range s.categories {
		if s.categories[i].ID == categoryID {
			return &s.categories[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
}

func (s *stubCatalogStore) CreateCategory(_ context.Context, c *domain.ServiceCategory) (*domain.ServiceCategory, error) {
	c.ID = fmt.Sprintf("cat-%d", len(s.categories)+1)
	c.IsActive = true
	s.categories = append(s.categories, *c)
	return c, nil
}

func (s *stubCatalogStore) UpdateCategory(_ context.Context, categoryID string, updates map[string]any) (*domain.ServiceCategory, error) {
	for i := range s.categories {
		if s.categories[i].ID == categoryID {
			if v, ok := updates["is_active"].(bool); ok {
				s.categories[i].IsActive = v
			}
			if v, ok := updates["name"].(string); ok {
				s.categories[i].Name = v
			}
			return &s.categories[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
}

func (s *stubCatalogStore) ListServices(_ context.Context, filter domain.ServiceFilter, page, limit int) ([]domain.Service, int, error) {
	var out []domain.Service
	for _, sv := range s.services {
		out = append(out, *sv)
	}
	return out, len(out), nil
}

func (s *stubCatalogStore) GetService(_ context.Context, serviceID string) (*domain.Service, error) {
	sv, ok := s.services[serviceID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "service", ID: serviceID}
	}
	return sv, nil
}

func (s *stubCatalogStore) CreateService(_ context.Context, sv *domain.Service) (*domain.Service, error) {
	sv.ID = fmt.Sprintf("svc-%d", len(s.services)+1)
	sv.IsActive = true
	s.services[sv.ID] = sv
	return sv, nil
}

func (s *stubCatalogStore) UpdateService(_ context.Context, serviceID string, updates map[string]any) (*domain.Service, error) {
	sv, ok := s.services[serviceID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "service", ID: serviceID}
	}
	if v, ok := updates["is_active"].(bool); ok {
		sv.IsActive = v
	}
	return sv, nil
}

// --- ProviderStore ---

type stubProviderStore struct {
	providers    map[string]*domain.Provider // by provider id
	byUser       map[string]*domain.Provider
	offerings    map[string]*domain.ProviderService // by providerID/serviceID
	availability []domain.ProviderAvailability
}

func newStubProviderStore() *stubProviderStore {
	return &stubProviderStore{
		providers: map[string]*domain.Provider{},
		byUser:    map[string]*domain.Provider{},
		offerings: map[string]*domain.ProviderService{},
	}
}

func (s *stubProviderStore) addProvider(p *domain.Provider) {
	s.providers[p.ID] = p
	s.byUser[p.UserID] = p
}

func offeringKey(providerID, serviceID string) string {
	return providerID + "/" + serviceID
}

func (s *stubProviderStore) ListProviders(_ context.Context, filter domain.ProviderFilter, page, limit int) ([]domain.Provider, int, error) {
	var out []domain.Provider
	for _, p := range s.providers {
		if filter.Status != "" {
			if p.VerificationStatus != filter.Status {
				continue
			}
		} else if !filter.IncludeUnverified && p.VerificationStatus != domain.VerificationVerified {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *stubProviderStore) GetProvider(_ context.Context, providerID string) (*domain.Provider, error) {
	p, ok := s.providers[providerID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "provider", ID: providerID}
	}
	return p, nil
}

func (s *stubProviderStore) GetProviderByUserID(_ context.Context, userID string) (*domain.Provider, error) {
	return s.byUser[userID], nil
}

func (s *stubProviderStore) CreateProvider(_ context.Context, p *domain.Provider) (*domain.Provider, error) {
	p.ID = fmt.Sprintf("prov-%d", len(s.providers)+1)
	p.VerificationStatus = domain.VerificationPending
	s.addProvider(p)
	return p, nil
}

func (s *stubProviderStore) UpdateProvider(_ context.Context, providerID string, updates map[string]any) (*domain.Provider, error) {
	p, ok := s.providers[providerID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "provider", ID: providerID}
	}
	if v, ok := updates["verification_status"].(string); ok {
		p.VerificationStatus = domain.VerificationStatus(v)
	}
	if v, ok := updates["business_name"].(string); ok {
		p.BusinessName = v
	}
	return p, nil
}

func (s *stubProviderStore) ListProviderServices(_ context.Context, providerID string) ([]domain.ProviderService, error) {
	var out []domain.ProviderService
	for _, ps := range s.offerings {
		if ps.ProviderID == providerID {
			out = append(out, *ps)
		}
	}
	return out, nil
}

func (s *stubProviderStore) AttachService(_ context.Context, ps *domain.ProviderService) (*domain.ProviderService, error) {
	ps.ID = fmt.Sprintf("ps-%d", len(s.offerings)+1)
	s.offerings[offeringKey(ps.ProviderID, ps.ServiceID)] = ps
	return ps, nil
}

func (s *stubProviderStore) DetachService(_ context.Context, providerID, serviceID string) error {
	delete(s.offerings, offeringKey(providerID, serviceID))
	return nil
}

func (s *stubProviderStore) GetProviderService(_ context.Context, providerID, serviceID string) (*domain.ProviderService, error) {
	return s.offerings[offeringKey(providerID, serviceID)], nil
}

func (s *stubProviderStore) ListAvailability(_ context.Context, providerID string) ([]domain.ProviderAvailability, error) {
	var out []domain.ProviderAvailability
	for _, a := range s.availability {
		if a.ProviderID == providerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubProviderStore) CreateAvailability(_ context.Context, a *domain.ProviderAvailability) (*domain.ProviderAvailability, error) {
	a.ID = fmt.Sprintf("av-%d", len(s.availability)+1)
	s.availability = append(s.availability, *a)
	return a, nil
}

func (s *stubProviderStore) DeleteAvailability(_ context.Context, providerID, availabilityID string) error {
	for i, a := range s.availability {
		if a.ID == availabilityID && a.ProviderID == providerID {
			s.availability = append(s.availability[:i], s.availability[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "availability", ID: availabilityID}
}

// --- BookingStore ---

type stubBookingStore struct {
	bookings map[string]*domain.Booking
	seq      int
}

func newStubBookingStore() *stubBookingStore {
	return &stubBookingStore{bookings: map[string]*domain.Booking{}}
}

func (s *stubBookingStore) addBooking(b *domain.Booking) {
	s.bookings[b.ID] = b
}

func (s *stubBookingStore) CreateBooking(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.seq++
	b.ID = fmt.Sprintf("bk-%d", s.seq)
	b.Status = domain.BookingPending
	b.PaymentStatus = domain.PaymentPending
	s.bookings[b.ID] = b
	return b, nil
}

func (s *stubBookingStore) GetBooking(_ context.Context, bookingID string) (*domain.Booking, error) {
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "booking", ID: bookingID}
	}
	return b, nil
}

func (s *stubBookingStore) ListBookings(_ context.Context, filter domain.BookingFilter, page, limit int) ([]domain.Booking, int, error) {
	var out []domain.Booking
	for _, b := range s.bookings {
		if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.ProviderID != "" && b.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (s *stubBookingStore) UpdateBookingStatus(_ context.Context, bookingID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "booking", ID: bookingID}
	}
	if b.Status != from {
		return nil, &domain.ErrConflict{
			Message:      fmt.Sprintf("booking is no longer %s", from),
			TaxonomyCode: "STATUS_CONFLICT",
		}
	}
	b.Status = to
	return b, nil
}

func (s *stubBookingStore) UpdateBookingPaymentStatus(_ context.Context, bookingID string, status domain.PaymentStatus) error {
	b, ok := s.bookings[bookingID]
	if !ok {
		return &domain.ErrNotFound{Resource: "booking", ID: bookingID}
	}
	b.PaymentStatus = status
	return nil
}

// --- AdminStore ---

type stubAdminStore struct {
	users   []domain.User
	counts  map[string]int // keyed by "users", "providers:<status>", "bookings:<status>"
	revenue float64
}

func newStubAdminStore() *stubAdminStore {
	return &stubAdminStore{counts: map[string]int{}}
}

func (s *stubAdminStore) CountUsers(_ context.Context) (int, error) {
	return s.counts["users"], nil
}

func (s *stubAdminStore) CountProviders(_ context.Context, status domain.VerificationStatus) (int, error) {
	return s.counts["providers:"+string(status)], nil
}

func (s *stubAdminStore) CountBookings(_ context.Context, status domain.BookingStatus) (int, error) {
	return s.counts["bookings:"+string(status)], nil
}

func (s *stubAdminStore) SumCompletedRevenue(_ context.Context) (float64, error) {
	return s.revenue, nil
}

func (s *stubAdminStore) ListUsers(_ context.Context, page, limit int) ([]domain.User, int, error) {
	return s.users, len(s.users), nil
}

func (s *stubAdminStore) UpdateUserRole(_ context.Context, userID string, role domain.Role) (*domain.User, error) {
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].Role = role
			return &s.users[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
}

// --- ReviewStore ---

type stubReviewStore struct {
	byBooking map[string]*domain.Review
}

func newStubReviewStore() *stubReviewStore {
	return &stubReviewStore{byBooking: map[string]*domain.Review{}}
}

func (s *stubReviewStore) CreateReview(_ context.Context, r *domain.Review) (*domain.Review, error) {
	r.ID = fmt.Sprintf("rev-%d", len(s.byBooking)+1)
	s.byBooking[r.BookingID] = r
	return r, nil
}

func (s *stubReviewStore) GetReviewByBooking(_ context.Context, bookingID string) (*domain.Review, error) {
	return s.byBooking[bookingID], nil
}

func (s *stubReviewStore) ListReviewsByProvider(_ context.Context, providerID string, page, limit int) ([]domain.Review, int, error) {
	var out []domain.Review
	for _, r := range s.byBooking {
		if r.ProviderID == providerID {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}
