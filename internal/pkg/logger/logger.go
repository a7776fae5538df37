package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a LOG_LEVEL value to a zap level. Unknown values fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds the service logger. Production uses the JSON encoder, everything
// else the colored console encoder.
func New(appEnv, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if appEnv == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	return cfg.Build()
}

var (
	mu            sync.RWMutex
	defaultLogger = zap.NewNop()
)

// SetGlobal replaces the process-wide logger used by the package-level helpers.
func SetGlobal(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// L returns the process-wide logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Package-level functions for easy access
func Debug(format string, v ...interface{}) { L().Sugar().Debugf(format, v...) }
func Info(format string, v ...interface{})  { L().Sugar().Infof(format, v...) }
func Warn(format string, v ...interface{})  { L().Sugar().Warnf(format, v...) }
func Error(format string, v ...interface{}) { L().Sugar().Errorf(format, v...) }
func Fatal(format string, v ...interface{}) { L().Sugar().Fatalf(format, v...) }
