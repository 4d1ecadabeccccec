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
// Bookings — /api/v1/bookings
// ============================================================

func createBookingHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/bookings")
		defer span.End()

		if RoleFromContext(ctx) != domain.RoleCustomer {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "only customers can create bookings")
			return
		}

		var req domain.CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		booking, err := svc.Create(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusCreated, booking)
	}
}

func listBookingsHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/bookings")
		defer span.End()

		page, limit := parsePagination(r)
		status := domain.BookingStatus(r.URL.Query().Get("status"))

		bookings, total, err := svc.List(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), status, page, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writePage(w, bookings, page, limit, total)
	}
}

func getBookingHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/bookings/{bookingId}")
		defer span.End()

		bookingID := chi.URLParam(r, "bookingId")
		span.SetAttributes(attribute.String("booking.id", bookingID))

		booking, err := svc.Get(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), bookingID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, booking)
	}
}

func updateBookingStatusHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/v1/bookings/{bookingId}/status")
		defer span.End()

		var req domain.UpdateBookingStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
			return
		}

		booking, err := svc.UpdateStatus(ctx, UserIDFromContext(ctx), RoleFromContext(ctx), chi.URLParam(r, "bookingId"), req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeSuccess(w, http.StatusOK, booking)
	}
}
