package meta

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the extractor's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the extractor's logger.
// This must be called before any extraction runs.
func SetLogger(l *zap.Logger) {
	logger = l
}

// debugf logs per-declaration diagnostics through the package logger.
func debugf(format string, args ...any) {
	Logger().Sugar().Debugf(format, args...)
}
