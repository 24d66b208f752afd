package gen

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the generator's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the generator's logger.
// This must be called before any generation runs.
func SetLogger(l *zap.Logger) {
	logger = l
}

// debugf logs per-emission diagnostics through the package logger.
func debugf(format string, args ...any) {
	Logger().Sugar().Debugf(format, args...)
}
