package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/service"

	"go.uber.org/zap"
)

func newAdminFixture() (*service.AdminService, *stubAdminStore, *stubProviderStore, *stubBookingStore) {
	admin := newStubAdminStore()
	providers := newStubProviderStore()
	bookings := newStubBookingStore()
	svc := service.NewAdminService(admin, providers, bookings, zap.NewNop())
	return svc, admin, providers, bookings
}

func TestDashboardStats_Aggregates(t *testing.T) {
	svc, admin, _, _ := newAdminFixture()
	admin.counts["users"] = 40
	admin.counts["providers:"] = 12
	admin.counts["providers:pending"] = 3
	admin.counts["bookings:"] = 100
	admin.counts["bookings:completed"] = 60
	admin.counts["bookings:cancelled"] = 10
	admin.revenue = 4800.50

	stats, err := svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stats.TotalUsers != 40 || stats.TotalProviders != 12 || stats.PendingProviders != 3 {
		t.Errorf("unexpected user/provider counts: %+v", stats)
	}
	if stats.TotalBookings != 100 || stats.CompletedBookings != 60 || stats.CancelledBookings != 10 {
		t.Errorf("unexpected booking counts: %+v", stats)
	}
	if stats.TotalRevenue != 4800.50 {
		t.Errorf("expected revenue 4800.50, got %v", stats.TotalRevenue)
	}
}

func TestAdminListProviders_IncludesUnverified(t *testing.T) {
	svc, _, providers, _ := newAdminFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationVerified})
	providers.addProvider(&domain.Provider{ID: "prov-2", UserID: "u-2", VerificationStatus: domain.VerificationPending})

	list, total, err := svc.ListProviders(context.Background(), "", 1, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("expected both providers in the moderation view, got %d", total)
	}
}

func TestAdminListProviders_FilterByStatus(t *testing.T) {
	svc, _, providers, _ := newAdminFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationVerified})
	providers.addProvider(&domain.Provider{ID: "prov-2", UserID: "u-2", VerificationStatus: domain.VerificationPending})

	list, _, err := svc.ListProviders(context.Background(), domain.VerificationPending, 1, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 1 || list[0].ID != "prov-2" {
		t.Errorf("expected only the pending provider, got %+v", list)
	}
}

func TestAdminListProviders_UnknownStatus(t *testing.T) {
	svc, _, _, _ := newAdminFixture()

	_, _, err := svc.ListProviders(context.Background(), "suspended", 1, 10)
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAdminListBookings_FilterByStatus(t *testing.T) {
	svc, _, _, bookings := newAdminFixture()
	bookings.addBooking(&domain.Booking{ID: "bk-1", Status: domain.BookingCompleted})
	bookings.addBooking(&domain.Booking{ID: "bk-2", Status: domain.BookingPending})

	list, _, err := svc.ListBookings(context.Background(), domain.BookingCompleted, 1, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 1 || list[0].ID != "bk-1" {
		t.Errorf("expected only the completed booking, got %+v", list)
	}

	if _, _, err := svc.ListBookings(context.Background(), "shipped", 1, 10); err == nil {
		t.Error("expected error for unknown booking status")
	}
}

func TestUpdateUserRole_UnknownRole(t *testing.T) {
	svc, _, _, _ := newAdminFixture()

	_, err := svc.UpdateUserRole(context.Background(), "u-1", &domain.UpdateUserRoleRequest{Role: "superuser"})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateUserRole_Promotes(t *testing.T) {
	svc, admin, _, _ := newAdminFixture()
	admin.users = []domain.User{{ID: "u-1", Email: "x@example.com", Role: domain.RoleCustomer}}

	user, err := svc.UpdateUserRole(context.Background(), "u-1", &domain.UpdateUserRoleRequest{Role: domain.RoleProvider})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Role != domain.RoleProvider {
		t.Errorf("expected role provider, got %s", user.Role)
	}
}

func TestVerifyProvider_SetsStatus(t *testing.T) {
	svc, _, providers, _ := newAdminFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationPending})

	provider, err := svc.VerifyProvider(context.Background(), "prov-1", &domain.VerifyProviderRequest{Status: domain.VerificationVerified})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if provider.VerificationStatus != domain.VerificationVerified {
		t.Errorf("expected verified, got %s", provider.VerificationStatus)
	}
}

func TestVerifyProvider_RejectsPendingVerdict(t *testing.T) {
	svc, _, providers, _ := newAdminFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationPending})

	_, err := svc.VerifyProvider(context.Background(), "prov-1", &domain.VerifyProviderRequest{Status: domain.VerificationPending})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
