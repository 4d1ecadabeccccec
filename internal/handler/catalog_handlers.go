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
// Categories — /api/v1/categories
// ============================================================

func listCategoriesHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/categories")
		defer span.End()

		// includeInactive is honored only for admins; the public listing
		// is always active-only.
		includeInactive := r.URL.Query().Get("includeInactive") == "true" &&
			RoleFromContext(ctx) == domain.RoleAdmin

		categories, err := svc.ListCategories(ctx, includeInactive)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, categories)
	}
}

func getCategoryHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/categories/{categoryId}")
		defer span.End()

		category, err := svc.GetCategory(ctx, chi.URLParam(r, "categoryId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, category)
	}
}

func createCategoryHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/admin/categories")
		defer span.End()

		var req domain.CreateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		category, err := svc.CreateCategory(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusCreated, category)
	}
}

func updateCategoryHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/admin/categories/{categoryId}")
		defer span.End()

		var req domain.UpdateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		category, err := svc.UpdateCategory(ctx, chi.URLParam(r, "categoryId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, category)
	}
}

// ============================================================
// Services — /api/v1/services
// ============================================================

func listServicesHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/services")
		defer span.End()

		page, limit := parsePagination(r)
		filter := domain.ServiceFilter{
			CategoryID: r.URL.Query().Get("categoryId"),
			Search:     r.URL.Query().Get("search"),
			IncludeInactive: r.URL.Query().Get("includeInactive") == "true" &&
				RoleFromContext(ctx) == domain.RoleAdmin,
		}

		services, total, err := svc.ListServices(ctx, filter, page, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writePage(w, services, page, limit, total)
	}
}

func getServiceHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/services/{serviceId}")
		defer span.End()

		result, err := svc.GetService(ctx, chi.URLParam(r, "serviceId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, result)
	}
}

func createServiceHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/admin/services")
		defer span.End()

		var req domain.CreateServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		result, err := svc.CreateService(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusCreated, result)
	}
}

func updateServiceHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/admin/services/{serviceId}")
		defer span.End()

		var req domain.UpdateServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		result, err := svc.UpdateService(ctx, chi.URLParam(r, "serviceId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, result)
	}
}
