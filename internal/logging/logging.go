// Package logging builds the zap logger shared by the CLI and TUI. Output
// always goes to a file so it never interleaves with the terminal UI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects where and how much to log.
type Config struct {
	File  string // Log file path. Empty discards all output.
	Level string // debug, info, warn or error
	Mode  string // "prod" for JSON lines, "dev" for console format
}

// New builds a logger writing to cfg.File.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.File == "" {
		return Nop(), nil
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "dev", "development":
		zc = zap.NewDevelopmentConfig()
	default:
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("assessor"), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
