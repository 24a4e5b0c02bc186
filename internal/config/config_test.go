package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "TOKEN_FORMAT", "PASSWORD_HASHER", "CACHE_TTL", "CORS_ALLOW_ORIGINS"} {
		t.Setenv(key, "")
	}
	t.Setenv("TOKEN_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, TokenFormatLegacy, cfg.TokenFormat)
	assert.Equal(t, HasherSHA256, cfg.PasswordHasher)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "s3cret", cfg.TokenSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "abc")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_DSN", "file:test.db")
	t.Setenv("PASSWORD_HASHER", "bcrypt")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "file:test.db", cfg.DatabaseDSN)
	assert.Equal(t, HasherBcrypt, cfg.PasswordHasher)
	assert.Equal(t, 90*time.Second, cfg.DBConnMaxLifetime)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver:        DriverMySQL,
			TokenSecret:     "secret",
			TokenFormat:     TokenFormatLegacy,
			PasswordHasher:  HasherSHA256,
			UploadURLPrefix: "/uploads",
			MaxUploadBytes:  1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.TokenSecret = "" }, wantErr: true},
		{name: "secret with delimiter", mutate: func(c *Config) { c.TokenSecret = "a:b" }, wantErr: true},
		{name: "unknown token format", mutate: func(c *Config) { c.TokenFormat = "paseto" }, wantErr: true},
		{name: "unknown hasher", mutate: func(c *Config) { c.PasswordHasher = "md5" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "postgres" }, wantErr: true},
		{name: "zero upload size", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: true},
		{name: "relative url prefix", mutate: func(c *Config) { c.UploadURLPrefix = "uploads" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
