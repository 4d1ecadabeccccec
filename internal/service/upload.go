package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/infra/resilience"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var uploadTracer = otel.Tracer("service/upload")

// allowedImageTypes maps sniffed MIME types to file extensions. The
// extension comes from the sniffed type, never the client filename.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadService stores image uploads on local disk. Writes go through a
// bulkhead so a burst of large uploads cannot starve the API of file
// handles.
type UploadService struct {
	dir      string
	maxSize  int64
	bulkhead *resilience.Bulkhead
	logger   *zap.Logger
}

func NewUploadService(dir string, maxSize int64, bulkhead *resilience.Bulkhead, logger *zap.Logger) (*UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadService{
		dir:      dir,
		maxSize:  maxSize,
		bulkhead: bulkhead,
		logger:   logger,
	}, nil
}

// SaveImage validates and persists one uploaded image under the given
// kind subdirectory (avatars, services), returning the public URL path.
// The reader is capped at maxSize+1 so an oversized body is detected
// without buffering the whole thing.
func (s *UploadService) SaveImage(ctx context.Context, kind string, r io.Reader, declaredSize int64) (string, error) {
	ctx, span := uploadTracer.Start(ctx, "UploadService.SaveImage")
	defer span.End()

	if declaredSize > s.maxSize {
		return "", &domain.ErrPayloadTooLarge{Limit: s.maxSize}
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return "", &domain.ErrTimeout{Operation: "acquire upload slot"}
	}
	defer s.bulkhead.Release()

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", &domain.ErrPayloadTooLarge{Limit: s.maxSize}
	}
	if len(data) == 0 {
		return "", &domain.ErrValidation{Field: "file", Message: "file is empty"}
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", &domain.ErrValidation{
			Field:   "file",
			Message: fmt.Sprintf("unsupported content type %s, only images are accepted", contentType),
		}
	}

	if err := os.MkdirAll(filepath.Join(s.dir, kind), 0o755); err != nil {
		return "", fmt.Errorf("create upload subdir: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, kind, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	s.logger.Info("image uploaded",
		zap.String("kind", kind),
		zap.String("file", name),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)),
	)
	return "/uploads/" + kind + "/" + name, nil
}
