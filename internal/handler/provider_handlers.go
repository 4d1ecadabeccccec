package handler

import (
	"encoding/json"
	"net/http"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Providers — /api/v1/providers
// ============================================================

func listProvidersHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/providers")
		defer span.End()

		page, limit := parsePagination(r)
		role := RoleFromContext(ctx)
		filter := domain.ProviderFilter{
			ServiceID:         r.URL.Query().Get("serviceId"),
			Area:              r.URL.Query().Get("area"),
			IncludeUnverified: r.URL.Query().Get("includeUnverified") == "true",
		}

		providers, total, err := svc.List(ctx, role, filter, page, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writePage(w, providers, page, limit, total)
	}
}

func getProviderHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/providers/{providerId}")
		defer span.End()

		providerID := chi.URLParam(r, "providerId")
		span.SetAttributes(attribute.String("provider.id", providerID))

		provider, err := svc.Get(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), providerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, provider)
	}
}

func registerProviderHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/providers")
		defer span.End()

		var req domain.RegisterProviderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		provider, err := svc.Register(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusCreated, provider)
	}
}

func getOwnProviderHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/providers/me")
		defer span.End()

		provider, err := svc.GetOwn(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, provider)
	}
}

func updateProviderHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/providers/me")
		defer span.End()

		var req domain.UpdateProviderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		provider, err := svc.Update(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, provider)
	}
}

// ============================================================
// Offerings — /api/v1/providers/{id}/services, /providers/me/services
// ============================================================

func listProviderServicesHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/providers/{providerId}/services")
		defer span.End()

		services, err := svc.ListServices(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), chi.URLParam(r, "providerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, services)
	}
}

func attachServiceHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/providers/me/services")
		defer span.End()

		var req domain.AttachServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		ps, err := svc.AttachService(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusCreated, ps)
	}
}

func detachServiceHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/providers/me/services/{serviceId}")
		defer span.End()

		if err := svc.DetachService(ctx, UserIDFromContext(ctx), chi.URLParam(r, "serviceId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Availability — /api/v1/providers/{id}/availability
// ============================================================

func listAvailabilityHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/providers/{providerId}/availability")
		defer span.End()

		slots, err := svc.ListAvailability(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), chi.URLParam(r, "providerId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, slots)
	}
}

func addAvailabilityHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/providers/me/availability")
		defer span.End()

		var req domain.AvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		slot, err := svc.AddAvailability(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusCreated, slot)
	}
}

func removeAvailabilityHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/providers/me/availability/{availabilityId}")
		defer span.End()

		if err := svc.RemoveAvailability(ctx, UserIDFromContext(ctx), chi.URLParam(r, "availabilityId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
