package guest

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the guest layer's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the guest layer's logger.
// This must be called before any boundary runs.
func SetLogger(l *zap.Logger) {
	logger = l
}

// debugf logs lifecycle diagnostics through the package logger.
func debugf(format string, args ...any) {
	Logger().Sugar().Debugf(format, args...)
}
