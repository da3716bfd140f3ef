// Package config loads the client configuration from the environment
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/celestiaorg/jobdesk/internal/identity"
	"github.com/celestiaorg/jobdesk/internal/logger"
)

// Handshake modes
const (
	// ModeLoginRequired forces a login before anything renders
	ModeLoginRequired = identity.ModeLoginRequired
	// ModeAnonymous skips the login and browses as a guest
	ModeAnonymous = identity.ModeAnonymous
)

// Config represents the client configuration
type Config struct {
	JobServiceURL     string `env:"JOBDESK_JOB_SERVICE_URL" default:"http://localhost:8082"`
	AccountServiceURL string `env:"JOBDESK_ACCOUNT_SERVICE_URL" default:"http://localhost:8081"`

	IssuerURL     string `env:"JOBDESK_ISSUER_URL" default:"http://localhost:8080/realms/JobAppRealm"`
	ClientID      string `env:"JOBDESK_CLIENT_ID" default:"job-app-frontend"`
	CallbackAddr  string `env:"JOBDESK_CALLBACK_ADDR" default:"localhost:3000"`
	HandshakeMode string `env:"JOBDESK_HANDSHAKE_MODE" default:"login-required"`
	AdminRole     string `env:"JOBDESK_ADMIN_ROLE" default:"app_admin"`

	HTTPTimeout      time.Duration `env:"JOBDESK_HTTP_TIMEOUT" default:"0s"`
	HandshakeTimeout time.Duration `env:"JOBDESK_HANDSHAKE_TIMEOUT" default:"5m"`

	LogLevel  string `env:"JOBDESK_LOG_LEVEL" default:"info"`
	LogFormat string `env:"JOBDESK_LOG_FORMAT" default:"text"`
	LogFile   string `env:"JOBDESK_LOG_FILE"`
}

// Load reads .env if present, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	urls := []struct {
		name  string
		value string
	}{
		{"job service URL", c.JobServiceURL},
		{"account service URL", c.AccountServiceURL},
		{"issuer URL", c.IssuerURL},
	}
	for _, u := range urls {
		if u.value == "" {
			return fmt.Errorf("%s is required", u.name)
		}
		parsed, err := url.Parse(u.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", u.name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid %s: unsupported scheme %q", u.name, parsed.Scheme)
		}
	}

	if c.ClientID == "" {
		return fmt.Errorf("client id is required")
	}
	if c.CallbackAddr == "" {
		return fmt.Errorf("callback address is required")
	}

	switch c.HandshakeMode {
	case ModeLoginRequired, ModeAnonymous:
	default:
		return fmt.Errorf("invalid handshake mode %q: must be %s or %s", c.HandshakeMode, ModeLoginRequired, ModeAnonymous)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP timeout cannot be negative")
	}
	if c.HandshakeTimeout < 0 {
		return fmt.Errorf("handshake timeout cannot be negative")
	}
	return nil
}

// LogFilePath returns where interactive sessions log to. An explicit LogFile wins,
// otherwise the user cache directory is used.
func (c *Config) LogFilePath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(dir, "jobdesk", "jobdesk.log"), nil
}
