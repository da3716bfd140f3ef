package config

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/jobdesk/internal/constants"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:8082", cfg.JobServiceURL)
	assert.Equal(t, "http://localhost:8081", cfg.AccountServiceURL)
	assert.Equal(t, "http://localhost:8080/realms/JobAppRealm", cfg.IssuerURL)
	assert.Equal(t, "job-app-frontend", cfg.ClientID)
	assert.Equal(t, ModeLoginRequired, cfg.HandshakeMode)
	assert.Equal(t, "app_admin", cfg.AdminRole)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.HandshakeTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(constants.EnvJobServiceURL, "https://jobs.example.com")
	t.Setenv(constants.EnvHandshakeMode, ModeAnonymous)
	t.Setenv(constants.EnvHTTPTimeout, "15s")
	t.Setenv(constants.EnvAdminRole, "ops")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://jobs.example.com", cfg.JobServiceURL)
	assert.Equal(t, ModeAnonymous, cfg.HandshakeMode)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "ops", cfg.AdminRole)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JobServiceURL:     "http://localhost:8082",
			AccountServiceURL: "http://localhost:8081",
			IssuerURL:         "http://localhost:8080/realms/JobAppRealm",
			ClientID:          "job-app-frontend",
			CallbackAddr:      "127.0.0.1:3000",
			HandshakeMode:     ModeLoginRequired,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing job service", mutate: func(c *Config) { c.JobServiceURL = "" }, wantErr: "job service URL is required"},
		{name: "bad scheme", mutate: func(c *Config) { c.AccountServiceURL = "ftp://accounts" }, wantErr: "unsupported scheme"},
		{name: "missing client id", mutate: func(c *Config) { c.ClientID = "" }, wantErr: "client id is required"},
		{name: "unknown mode", mutate: func(c *Config) { c.HandshakeMode = "check-sso" }, wantErr: "invalid handshake mode"},
		{name: "negative timeout", mutate: func(c *Config) { c.HTTPTimeout = -time.Second }, wantErr: "cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogFilePath(t *testing.T) {
	cfg := &Config{LogFile: "/tmp/custom.log"}
	path, err := cfg.LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.log", path)

	if runtime.GOOS != "linux" {
		t.Skip("XDG cache directory only applies on linux")
	}
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	cfg.LogFile = ""
	path, err = cfg.LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cache", "jobdesk", "jobdesk.log"), path)
}
