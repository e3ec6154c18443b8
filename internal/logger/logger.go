package logger

import (
	"os"

	"go.uber.org/zap"
)

var globalLogger *zap.Logger

// Init initializes the global logger
func Init(logLevel *string) error {
	var err error

	// Create config based on GO_ENV for formatting
	env := os.Getenv("GO_ENV")
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	var appliedLogLevel string
	if logLevel != nil {
		appliedLogLevel = *logLevel
	} else {
		appliedLogLevel = "info"
	}

	// Set the log level from logLevel (cmd/server passes config's ROOM_LOG_LEVEL)
	switch appliedLogLevel {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	globalLogger, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// Get returns the global logger
func Get() *zap.Logger {
	if globalLogger == nil {
		// Fallback to development logger if not initialized
		globalLogger, _ = zap.NewDevelopment()
	}
	return globalLogger
}

// Sync flushes the logger
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Shutdown properly closes the logger
func Shutdown() error {
	return Sync()
}

// WithContext returns a logger with additional context fields
func WithContext(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// WithRoomContext returns a logger with room-related context
func WithRoomContext(roomID string) *zap.Logger {
	if roomID == "" {
		return Get()
	}
	return Get().With(zap.String("room_id", roomID))
}

// WithAvatarContext returns a logger with avatar/session-related context
func WithAvatarContext(roomID, runtimeID, userID string) *zap.Logger {
	fields := make([]zap.Field, 0, 3)

	if roomID != "" {
		fields = append(fields, zap.String("room_id", roomID))
	}

	if runtimeID != "" {
		fields = append(fields, zap.String("runtime_id", runtimeID))
	}

	if userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}

	return Get().With(fields...)
}

// WithConnContext returns a logger with connection-related context
func WithConnContext(connID string) *zap.Logger {
	if connID == "" {
		return Get()
	}
	return Get().With(zap.String("connection_id", connID))
}
