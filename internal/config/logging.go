package config

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ledgerlite/ledgerlite/internal/logging"
)

// Logger is the global zerolog logger instance.
//
//nolint:gochecknoglobals // Intentionally global for application-wide structured logging
var Logger zerolog.Logger

//nolint:gochecknoglobals // Guards the global logger state
var logMu sync.RWMutex

// InitLogger replaces the global logger with one built from cfg.
// It returns an error only when a configured log file could not be
// opened; the logger itself is always usable afterwards.
func InitLogger(cfg LoggingConfig) error {
	logMu.Lock()
	defer logMu.Unlock()

	output := "stderr"
	if cfg.File != "" {
		output = "file"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: output,
		File:   cfg.File,
	})
	Logger = logger
	return err
}

// GetLogger returns the global logger instance.
func GetLogger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return Logger
}

// init sets a usable console logger before any configuration is loaded.
//
//nolint:gochecknoinits // the package-level logger must exist before use
func init() {
	_ = InitLogger(LoggingConfig{Level: "info", Format: "console"})
}
