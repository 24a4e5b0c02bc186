package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for the pluggable parts of the stack.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	TokenFormatLegacy = "legacy"
	TokenFormatJWT    = "jwt"

	HasherSHA256   = "sha256"
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// Config holds application level configuration loaded from environment variables.
// It is built once at startup and must not be mutated afterwards.
type Config struct {
	ServerPort string

	DBDriver          string
	DatabaseDSN       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        string
	RunMigrations     bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	TokenSecret    string
	TokenFormat    string
	PasswordHasher string

	UploadDir       string
	UploadURLPrefix string
	MaxUploadBytes  int64

	CORSAllowOrigins []string
	SwaggerHost      string
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DatabaseDSN:       getEnv("MYSQL_DSN", "root:@tcp(localhost:3306)/test_db?charset=utf8mb4&parseTime=True&loc=Local"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		DBLogLevel:        strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		CacheTTL:          getEnvDuration("CACHE_TTL", 30*time.Second),
		TokenSecret:       getEnv("TOKEN_SECRET", "change-me"),
		TokenFormat:       strings.ToLower(getEnv("TOKEN_FORMAT", TokenFormatLegacy)),
		PasswordHasher:    strings.ToLower(getEnv("PASSWORD_HASHER", HasherSHA256)),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		UploadURLPrefix:   getEnv("UPLOAD_URL_PREFIX", "/uploads"),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		CORSAllowOrigins:  splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		SwaggerHost:       os.Getenv("SWAGGER_HOST"),
	}
	if cfg.DBDriver == DriverSQLite {
		cfg.DatabaseDSN = getEnv("SQLITE_DSN", "travelfeed.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("config: TOKEN_SECRET must not be empty")
	}
	if strings.Contains(c.TokenSecret, ":") {
		return fmt.Errorf("config: TOKEN_SECRET must not contain ':'")
	}
	switch c.TokenFormat {
	case TokenFormatLegacy, TokenFormatJWT:
	default:
		return fmt.Errorf("config: unknown TOKEN_FORMAT %q", c.TokenFormat)
	}
	switch c.PasswordHasher {
	case HasherSHA256, HasherBcrypt, HasherArgon2id:
	default:
		return fmt.Errorf("config: unknown PASSWORD_HASHER %q", c.PasswordHasher)
	}
	switch c.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive")
	}
	if !strings.HasPrefix(c.UploadURLPrefix, "/") {
		return fmt.Errorf("config: UPLOAD_URL_PREFIX must start with '/'")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
