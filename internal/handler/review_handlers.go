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
// Reviews — /api/v1/reviews, /api/v1/providers/{id}/reviews
// ============================================================

func createReviewHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/reviews")
		defer span.End()

		if RoleFromContext(ctx) != domain.RoleCustomer {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "only customers can write reviews")
			return
		}

		var req domain.CreateReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		review, err := svc.Create(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusCreated, review)
	}
}

func listProviderReviewsHandler(providerSvc *service.ProviderService, svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/providers/{providerId}/reviews")
		defer span.End()

		providerID := chi.URLParam(r, "providerId")
		// Reviews of a hidden provider are hidden with it.
		if _, err := providerSvc.Get(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), providerID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		page, limit := parsePagination(r)
		reviews, total, err := svc.ListByProvider(ctx, providerID, page, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writePage(w, reviews, page, limit, total)
	}
}
