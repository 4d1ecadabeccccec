package handler

import (
	"encoding/json"
	"net/http"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Admin — /api/v1/admin
// ============================================================

func adminStatsHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/admin/stats")
		defer span.End()

		stats, err := svc.DashboardStats(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, stats)
	}
}

func adminListUsersHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/admin/users")
		defer span.End()

		page, limit := parsePagination(r)
		users, total, err := svc.ListUsers(ctx, page, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writePage(w, users, page, limit, total)
	}
}

func adminListProvidersHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/admin/providers")
		defer span.End()

		page, limit := parsePagination(r)
		status := domain.VerificationStatus(r.URL.Query().Get("status"))
		providers, total, err := svc.ListProviders(ctx, status, page, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writePage(w, providers, page, limit, total)
	}
}

func adminListBookingsHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/admin/bookings")
		defer span.End()

		page, limit := parsePagination(r)
		status := domain.BookingStatus(r.URL.Query().Get("status"))
		bookings, total, err := svc.ListBookings(ctx, status, page, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writePage(w, bookings, page, limit, total)
	}
}

func adminUpdateUserRoleHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/v1/admin/users/{userId}/role")
		defer span.End()

		var req domain.UpdateUserRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		user, err := svc.UpdateUserRole(ctx, chi.URLParam(r, "userId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, user)
	}
}

func adminVerifyProviderHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/v1/admin/providers/{providerId}/verify")
		defer span.End()

		var req domain.VerifyProviderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		provider, err := svc.VerifyProvider(ctx, chi.URLParam(r, "providerId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, provider)
	}
}
