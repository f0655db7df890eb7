// Package observability owns the process-wide loggers.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// CLILogger is used for CLI commands (console output)
	CLILogger *zap.Logger

	// ServerLogger is used for the HTTP server (structured JSON)
	ServerLogger *zap.Logger
)

// InitCLILogger initializes the CLI logger with console output.
func InitCLILogger(verbose bool) {
	cfg := zap.NewDevelopmentConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize CLI logger: %v\n", err)
		os.Exit(1)
	}

	CLILogger = logger
}

// InitServerLogger initializes the server logger. Format "console" switches
// to the development encoder; everything else gets production JSON on stdout
// so Docker and log collectors can capture it.
func InitServerLogger(serviceName, level, format string) {
	logger, err := NewLogger(level, format, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize server logger: %v\n", err)
		os.Exit(1)
	}

	ServerLogger = logger
}

// NewLogger builds a zap logger with the given level, format and service name.
func NewLogger(level, format, serviceName string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	if serviceName != "" {
		logger = logger.With(zap.String("service_name", serviceName))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		logger = logger.With(zap.String("hostname", hostname))
	}

	return logger, nil
}
