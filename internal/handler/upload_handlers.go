package handler

import (
	"net/http"

	"github.com/helpers-app/helpers-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Uploads — /api/v1/upload
// ============================================================

// uploadHandler accepts a multipart form with a single "file" field and
// stores it as an image under the given kind (avatars, services). The
// request body is hard-capped slightly above the file limit so multipart
// framing does not trip the cap.
func uploadHandler(svc *service.UploadService, kind string, maxFileSize int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/upload")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1024*1024)
		if err := r.ParseMultipartForm(maxFileSize); err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds size limit")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "file field is required")
			return
		}
		defer file.Close()

		url, err := svc.SaveImage(ctx, kind, file, header.Size)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusCreated, map[string]string{"url": url})
	}
}

// avatarUploadHandler stores the image and points the caller's profile
// at it in one request, so clients do not need a follow-up profile
// update to make the new avatar stick.
func avatarUploadHandler(uploads *service.UploadService, auth *service.AuthService, maxFileSize int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/upload/avatar")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1024*1024)
		if err := r.ParseMultipartForm(maxFileSize); err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds size limit")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "file field is required")
			return
		}
		defer file.Close()

		url, err := uploads.SaveImage(ctx, "avatars", file, header.Size)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		profile, err := auth.SetAvatar(ctx, UserIDFromContext(ctx), url)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusCreated, map[string]any{"url": url, "profile": profile})
	}
}
