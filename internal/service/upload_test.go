package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/infra/resilience"
	"github.com/helpers-app/helpers-api/internal/service"

	"go.uber.org/zap"
)

// pngBytes is a minimal payload carrying the PNG signature, enough for
// content-type sniffing.
func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
}

func newUploadService(t *testing.T, maxSize int64) (*service.UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := service.NewUploadService(dir, maxSize, resilience.NewBulkhead(2), zap.NewNop())
	if err != nil {
		t.Fatalf("new upload service: %v", err)
	}
	return svc, dir
}

func TestSaveImage_AcceptsPNG(t *testing.T) {
	svc, dir := newUploadService(t, 1024)

	data := pngBytes()
	url, err := svc.SaveImage(context.Background(), "avatars", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/avatars/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("expected /uploads/avatars/*.png url, got %s", url)
	}

	// Extension comes from the sniffed type, so the file must exist on disk.
	name := strings.TrimPrefix(url, "/uploads/")
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("expected file written to disk: %v", err)
	}
}

func TestSaveImage_RejectsNonImage(t *testing.T) {
	svc, _ := newUploadService(t, 1024)

	data := []byte("plain text, definitely not an image")
	_, err := svc.SaveImage(context.Background(), "avatars", bytes.NewReader(data), int64(len(data)))
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSaveImage_RejectsDeclaredOversize(t *testing.T) {
	svc, _ := newUploadService(t, 100)

	_, err := svc.SaveImage(context.Background(), "avatars", bytes.NewReader(pngBytes()), 101)
	var tooLarge *domain.ErrPayloadTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestSaveImage_RejectsActualOversize(t *testing.T) {
	svc, _ := newUploadService(t, 32)

	// Declared size lies; the capped reader catches the real size.
	data := pngBytes()
	_, err := svc.SaveImage(context.Background(), "services", bytes.NewReader(data), 10)
	var tooLarge *domain.ErrPayloadTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestSaveImage_RejectsEmptyFile(t *testing.T) {
	svc, _ := newUploadService(t, 1024)

	_, err := svc.SaveImage(context.Background(), "avatars", bytes.NewReader(nil), 0)
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
