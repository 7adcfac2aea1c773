package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Storage    StorageConfig
	OrphanScan OrphanScanConfig
	CORS       CORSConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// DatabaseConfig selects PostgreSQL when URL is set, SQLite at SQLitePath otherwise.
type DatabaseConfig struct {
	URL        string
	SQLitePath string
	Timeout    time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	BcryptCost int
}

type StorageConfig struct {
	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string
}

type OrphanScanConfig struct {
	Enabled  bool
	Schedule string
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	godotenv.Load()

	storeTimeout, err := time.ParseDuration(getEnv("STORE_TIMEOUT", "5s"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid STORE_TIMEOUT")
	}
	if storeTimeout <= 0 {
		return nil, errors.New("STORE_TIMEOUT must be positive")
	}

	// 0 issues tokens without an exp claim.
	jwtExp, err := time.ParseDuration(getEnv("JWT_EXPIRATION", "0"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid JWT_EXPIRATION")
	}

	maxUpload, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, errors.Errorf("invalid UPLOAD_MAX_BYTES %q", os.Getenv("UPLOAD_MAX_BYTES"))
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", ""),
			SQLitePath: getEnv("SQLITE_PATH", "pensario.db"),
			Timeout:    storeTimeout,
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			Expiration: jwtExp,
			BcryptCost: getEnvAsInt("BCRYPT_COST", 12),
		},
		Storage: StorageConfig{
			UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadBytes:    maxUpload,
			AllowedExtensions: getEnvAsList("UPLOAD_ALLOWED_EXTENSIONS", nil),
		},
		OrphanScan: OrphanScanConfig{
			Enabled:  getEnvAsBool("ORPHAN_SCAN_ENABLED", true),
			Schedule: getEnv("ORPHAN_SCAN_SCHEDULE", "@every 1h"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
