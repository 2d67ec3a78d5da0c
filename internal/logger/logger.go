package logger

import (
	"strings"
	"sync"
)

// Log levels accepted in log.level.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	appLogger *Logger
	once      sync.Once
)

// Get returns the process-wide logger. Only the first call's level is used.
func Get(level string) *Logger {
	once.Do(func() {
		appLogger = New(level)
	})
	return appLogger
}

// normalizeLevel lowercases and trims a configured level name.
func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}
