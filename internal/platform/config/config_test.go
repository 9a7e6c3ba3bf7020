package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		DatabaseURL:  "postgres://localhost/hrm",
		JWTSecret:    "dev-secret",
		Environment:  "development",
		MaxBodyBytes: 4096,
		TokenTTL:     time.Hour,
		AuditLogSink: AuditSinkDB,
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ADDR", "TOKEN_TTL", "AUDIT_LOG_SINK", "RUN_SEED", "MAX_BODY_BYTES"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, AuditSinkDB, cfg.AuditLogSink)
	assert.True(t, cfg.RunSeed)
	assert.Equal(t, int64(1048576), cfg.MaxBodyBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("AUDIT_LOG_SINK", "BOTH")
	t.Setenv("RUN_SEED", "false")
	t.Setenv("MAX_BODY_BYTES", "not-a-number")

	cfg := Load()
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, AuditSinkBoth, cfg.AuditLogSink)
	assert.False(t, cfg.RunSeed)
	assert.Equal(t, int64(1048576), cfg.MaxBodyBytes)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(*Config){
		"missing database": func(c *Config) { c.DatabaseURL = " " },
		"missing secret":   func(c *Config) { c.JWTSecret = "" },
		"short prod secret": func(c *Config) {
			c.Environment = "production"
			c.RunSeed = false
		},
		"prod seed without password": func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "0123456789abcdef0123456789abcdef"
			c.RunSeed = true
		},
		"small body":   func(c *Config) { c.MaxBodyBytes = 10 },
		"zero ttl":     func(c *Config) { c.TokenTTL = 0 },
		"unknown sink": func(c *Config) { c.AuditLogSink = "kafka" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
