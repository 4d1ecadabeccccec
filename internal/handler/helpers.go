package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/helpers-app/helpers-api/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Response envelope & shared helper functions
// ============================================================

// envelope is the uniform response shape. Every endpoint returns it,
// success or failure.
type envelope struct {
	Success   bool           `json:"success"`
	Data      any            `json:"data,omitempty"`
	Error     *errorBody     `json:"error,omitempty"`
	Metadata  *paginationMeta `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type paginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func newPaginationMeta(page, limit, total int) *paginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &paginationMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writePage(w http.ResponseWriter, data any, page, limit, total int) {
	writeJSON(w, http.StatusOK, envelope{
		Success:  true,
		Data:     data,
		Metadata: newPaginationMeta(page, limit, total),
	})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, envelope{
		Success: false,
		Error:   &errorBody{Message: msg, Code: code},
	})
}

func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 10
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return
}

// handleServiceError maps domain errors to HTTP responses with the
// matching taxonomy code.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var conflict *domain.ErrConflict
	var refMissing *domain.ErrReferenceMissing
	var invalidTransition *domain.ErrInvalidTransition
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var tooLarge *domain.ErrPayloadTooLarge
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, notFound.Code(), err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		code := "UNAUTHORIZED"
		if unauthorized.TokenExpired {
			code = "TOKEN_EXPIRED"
		}
		writeError(w, http.StatusUnauthorized, code, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		code := conflict.TaxonomyCode
		if code == "" {
			code = "RESOURCE_CONFLICT"
		}
		writeError(w, http.StatusConflict, code, err.Error())
	case errors.As(err, &refMissing):
		logger.Debug("reference missing", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "REFERENCE_MISSING", err.Error())
	case errors.As(err, &invalidTransition):
		logger.Debug("invalid transition", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
	case errors.As(err, &tooLarge):
		logger.Debug("payload too large", zap.String("error", err.Error()))
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error())
	case errors.As(err, &external):
		logger.Error("external service failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
