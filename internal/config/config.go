// Package config holds runtime configuration for the assessor CLI and TUI.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/store"
)

// DBDisabled as DBPath runs without the operation event log.
const DBDisabled = "off"

// Config holds all runtime configuration.
type Config struct {
	// BackendURL is the base URL of the assessment backend.
	// Default: "http://localhost:8080"
	BackendURL string

	// Timeout is the maximum duration of a single backend request.
	// Default: 30s.
	Timeout time.Duration

	// DBPath is the operation event log. Empty resolves to
	// store.DefaultDBPath; DBDisabled turns the log off.
	DBPath string

	Log LogConfig

	// SourceLang and TargetLang are the default translate direction.
	SourceLang string // Default: "nl"
	TargetLang string // Default: "en"
}

// LogConfig configures the file logger.
type LogConfig struct {
	File  string // Default: $XDG_STATE_HOME/assessor/assessor.log
	Level string // debug, info, warn, error. Default: "info"
	Mode  string // "prod" (JSON) or "dev" (console). Default: "prod"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BackendURL: "http://localhost:8080",
		Timeout:    30 * time.Second,
		Log: LogConfig{
			File:  DefaultLogPath(),
			Level: "info",
			Mode:  "prod",
		},
		SourceLang: api.LangNL,
		TargetLang: api.LangEN,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("ASSESSOR_BACKEND_URL"); u != "" {
		cfg.BackendURL = u
	}
	if t := os.Getenv("ASSESSOR_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	if p := os.Getenv("ASSESSOR_DB"); p != "" {
		cfg.DBPath = p
	}

	if f := os.Getenv("ASSESSOR_LOG_FILE"); f != "" {
		cfg.Log.File = f
	}
	if l := os.Getenv("ASSESSOR_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	if m := os.Getenv("ASSESSOR_LOG_MODE"); m != "" {
		cfg.Log.Mode = m
	}

	if s := os.Getenv("ASSESSOR_SOURCE_LANG"); s != "" {
		cfg.SourceLang = s
	}
	if t := os.Getenv("ASSESSOR_TARGET_LANG"); t != "" {
		cfg.TargetLang = t
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend url %q: %w", c.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url %q: scheme must be http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend url %q: missing host", c.BackendURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Mode) {
	case "prod", "production", "dev", "development":
	default:
		return fmt.Errorf("unknown log mode %q", c.Log.Mode)
	}
	return ValidateDirection(c.SourceLang, c.TargetLang)
}

// ValidateDirection checks a translate direction: both languages supported
// and different.
func ValidateDirection(src, tgt string) error {
	for _, lang := range []string{src, tgt} {
		if lang != api.LangNL && lang != api.LangEN {
			return fmt.Errorf("unsupported language %q (want %s or %s)", lang, api.LangNL, api.LangEN)
		}
	}
	if src == tgt {
		return fmt.Errorf("source and target language are both %q", src)
	}
	return nil
}

// ResolveDBPath returns the event log path to open, or "" when the log is
// disabled.
func (c Config) ResolveDBPath() (string, error) {
	switch c.DBPath {
	case DBDisabled:
		return "", nil
	case "":
		return store.DefaultDBPath()
	default:
		return c.DBPath, store.EnsureDir(c.DBPath)
	}
}

// DefaultLogPath returns $XDG_STATE_HOME/assessor/assessor.log, falling back
// to ~/.local/state/assessor/assessor.log.
func DefaultLogPath() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "assessor", "assessor.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "assessor.log")
	}
	return filepath.Join(home, ".local", "state", "assessor", "assessor.log")
}
