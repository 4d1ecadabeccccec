package observability_test

import (
	"testing"

	"github.com/helpers-app/helpers-api/internal/infra/observability"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_DefaultLevelIsInfo(t *testing.T) {
	logger := observability.NewLogger("production", "info")
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug to be disabled at info level")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info to be enabled")
	}
}

func TestNewLogger_DebugLevelWorksInProduction(t *testing.T) {
	logger := observability.NewLogger("production", "debug")
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected LOG_LEVEL=debug to enable debug logs regardless of environment")
	}
}

func TestNewLogger_DevelopmentKeepsConfiguredLevel(t *testing.T) {
	logger := observability.NewLogger("development", "info")
	defer logger.Sync()

	// Console encoding in development must not lower the level.
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected development console logger to stay at info level")
	}
}
