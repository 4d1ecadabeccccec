package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/service"

	"go.uber.org/zap"
)

func newProviderFixture() (*service.ProviderService, *stubProviderStore, *stubCatalogStore) {
	providers := newStubProviderStore()
	catalog := newStubCatalogStore()
	svc := service.NewProviderService(providers, catalog, zap.NewNop())
	return svc, providers, catalog
}

func TestProviderRegister_Success(t *testing.T) {
	svc, _, _ := newProviderFixture()

	p, err := svc.Register(context.Background(), "u-1", domain.RoleProvider, &domain.RegisterProviderRequest{
		BusinessName:    "  Sparkle Cleaning  ",
		ExperienceYears: 4,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.BusinessName != "Sparkle Cleaning" {
		t.Errorf("expected trimmed business name, got %q", p.BusinessName)
	}
	if p.VerificationStatus != domain.VerificationPending {
		t.Errorf("new providers must start pending, got %s", p.VerificationStatus)
	}
	if p.ServiceAreas == nil {
		t.Error("expected service areas to default to an empty slice")
	}
}

func TestProviderRegister_CustomerForbidden(t *testing.T) {
	svc, _, _ := newProviderFixture()

	_, err := svc.Register(context.Background(), "u-1", domain.RoleCustomer, &domain.RegisterProviderRequest{
		BusinessName: "Side Hustle",
	})
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden for customer role, got %v", err)
	}
}

func TestProviderRegister_OncePerUser(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})

	_, err := svc.Register(context.Background(), "u-1", domain.RoleProvider, &domain.RegisterProviderRequest{
		BusinessName: "Second Shop",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if conflict.TaxonomyCode != "PROVIDER_EXISTS" {
		t.Errorf("expected PROVIDER_EXISTS, got %s", conflict.TaxonomyCode)
	}
}

func TestProviderList_NonAdminNeverSeesUnverified(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationVerified})
	providers.addProvider(&domain.Provider{ID: "prov-2", UserID: "u-2", VerificationStatus: domain.VerificationPending})

	list, _, err := svc.List(context.Background(), domain.RoleCustomer, domain.ProviderFilter{IncludeUnverified: true}, 1, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 1 || list[0].ID != "prov-1" {
		t.Errorf("expected only the verified provider, got %+v", list)
	}

	list, _, err = svc.List(context.Background(), domain.RoleAdmin, domain.ProviderFilter{IncludeUnverified: true}, 1, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected admin to see both providers, got %d", len(list))
	}
}

func TestProviderGet_UnverifiedHiddenFromPublic(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationPending})

	var notFound *domain.ErrNotFound

	_, err := svc.Get(context.Background(), "", "", "prov-1")
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound for anonymous caller, got %v", err)
	}

	_, err = svc.Get(context.Background(), "stranger", domain.RoleCustomer, "prov-1")
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound for other customers, got %v", err)
	}
}

func TestProviderGet_Visibility(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationPending})
	providers.addProvider(&domain.Provider{ID: "prov-2", UserID: "u-2", VerificationStatus: domain.VerificationVerified})

	if _, err := svc.Get(context.Background(), "u-1", domain.RoleProvider, "prov-1"); err != nil {
		t.Errorf("owner must see their pending profile, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "admin-1", domain.RoleAdmin, "prov-1"); err != nil {
		t.Errorf("admin must see pending profiles, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "", "", "prov-2"); err != nil {
		t.Errorf("verified providers are public, got %v", err)
	}
}

func TestProviderSubresources_UnverifiedHidden(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1", VerificationStatus: domain.VerificationPending})
	providers.availability = append(providers.availability, domain.ProviderAvailability{
		ID: "av-1", ProviderID: "prov-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00",
	})

	var notFound *domain.ErrNotFound

	_, err := svc.ListServices(context.Background(), "", "", "prov-1")
	if !errors.As(err, &notFound) {
		t.Fatalf("expected offerings of a pending provider to 404, got %v", err)
	}

	_, err = svc.ListAvailability(context.Background(), "", "", "prov-1")
	if !errors.As(err, &notFound) {
		t.Fatalf("expected availability of a pending provider to 404, got %v", err)
	}

	// The owner still manages both.
	slots, err := svc.ListAvailability(context.Background(), "u-1", domain.RoleProvider, "prov-1")
	if err != nil {
		t.Fatalf("owner availability read failed: %v", err)
	}
	if len(slots) != 1 {
		t.Errorf("expected 1 slot for the owner, got %d", len(slots))
	}
}

func TestAttachService_Success(t *testing.T) {
	svc, providers, catalog := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})
	created, _ := catalog.CreateService(context.Background(), &domain.Service{Name: "Deep Clean", BasePrice: 100})

	price := 80.0
	ps, err := svc.AttachService(context.Background(), "u-1", &domain.AttachServiceRequest{
		ServiceID:   created.ID,
		CustomPrice: &price,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ps.ProviderID != "prov-1" || *ps.CustomPrice != 80 {
		t.Errorf("unexpected offering %+v", ps)
	}
}

func TestAttachService_InactiveService(t *testing.T) {
	svc, providers, catalog := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})
	created, _ := catalog.CreateService(context.Background(), &domain.Service{Name: "Old Offer", BasePrice: 50})
	if _, err := catalog.UpdateService(context.Background(), created.ID, map[string]any{"is_active": false}); err != nil {
		t.Fatalf("deactivate service: %v", err)
	}

	_, err := svc.AttachService(context.Background(), "u-1", &domain.AttachServiceRequest{ServiceID: created.ID})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation for inactive service, got %v", err)
	}
}

func TestAttachService_Duplicate(t *testing.T) {
	svc, providers, catalog := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})
	created, _ := catalog.CreateService(context.Background(), &domain.Service{Name: "Deep Clean", BasePrice: 100})

	if _, err := svc.AttachService(context.Background(), "u-1", &domain.AttachServiceRequest{ServiceID: created.ID}); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	_, err := svc.AttachService(context.Background(), "u-1", &domain.AttachServiceRequest{ServiceID: created.ID})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict on duplicate attach, got %v", err)
	}
}

func TestDetachService_NotAttached(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})

	err := svc.DetachService(context.Background(), "u-1", "svc-ghost")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddAvailability_Validation(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})

	cases := []struct {
		name string
		req  domain.AvailabilityRequest
	}{
		{"day out of range", domain.AvailabilityRequest{DayOfWeek: 7, StartTime: "09:00", EndTime: "17:00"}},
		{"bad start format", domain.AvailabilityRequest{DayOfWeek: 1, StartTime: "9am", EndTime: "17:00"}},
		{"bad end format", domain.AvailabilityRequest{DayOfWeek: 1, StartTime: "09:00", EndTime: "25:00"}},
		{"end before start", domain.AvailabilityRequest{DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddAvailability(context.Background(), "u-1", &tc.req)
			var v *domain.ErrValidation
			if !errors.As(err, &v) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAddAvailability_Success(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})

	slot, err := svc.AddAvailability(context.Background(), "u-1", &domain.AvailabilityRequest{
		DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if slot.ProviderID != "prov-1" || slot.DayOfWeek != 1 {
		t.Errorf("unexpected slot %+v", slot)
	}
}

func TestProviderUpdate_NoFields(t *testing.T) {
	svc, providers, _ := newProviderFixture()
	providers.addProvider(&domain.Provider{ID: "prov-1", UserID: "u-1"})

	_, err := svc.Update(context.Background(), "u-1", &domain.UpdateProviderRequest{})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation for empty update, got %v", err)
	}
}
