package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"taxonomy-service/internal/models"
	"taxonomy-service/internal/taxonomy"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

// Auth modes
const (
	AuthModeJWT   = "jwt"
	AuthModeIstio = "istio"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Server
	Port               string
	Environment        string
	LogLevel           string
	CORSAllowedOrigins []string

	// Auth
	AuthMode        string
	JWTSecret       string
	StaffServiceURL string

	// Infrastructure
	RedisURL string
	NATSURL  string
	CacheTTL time.Duration

	// Import
	CanonicalLocale   string
	UploadMaxBytes    int64
	ImportLockTimeout time.Duration

	// Description filter thresholds
	DescriptionMaxChars      int
	DescriptionMaxWords      int
	DescriptionSentenceWords int
	DescriptionCommaWords    int
}

func Load() *Config {
	defaults := taxonomy.DefaultDescriptionFilter()

	return &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "taxonomy_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Server
		Port:               getEnv("PORT", "8083"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		// Auth
		AuthMode:        strings.ToLower(getEnv("AUTH_MODE", AuthModeJWT)),
		JWTSecret:       secrets.GetJWTSecret(),
		StaffServiceURL: getEnv("STAFF_SERVICE_URL", "http://staff-service:8080"),

		// Infrastructure
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		NATSURL:  os.Getenv("NATS_URL"),
		CacheTTL: getEnvDuration("CACHE_TTL", 15*time.Minute),

		// Import
		CanonicalLocale:   getEnv("CANONICAL_LOCALE", models.DefaultLocale),
		UploadMaxBytes:    int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20)),
		ImportLockTimeout: getEnvDuration("IMPORT_LOCK_TIMEOUT", 30*time.Second),

		// Description filter thresholds
		DescriptionMaxChars:      getEnvInt("DESCRIPTION_MAX_CHARS", defaults.MaxChars),
		DescriptionMaxWords:      getEnvInt("DESCRIPTION_MAX_WORDS", defaults.MaxWords),
		DescriptionSentenceWords: getEnvInt("DESCRIPTION_SENTENCE_WORDS", defaults.SentenceWords),
		DescriptionCommaWords:    getEnvInt("DESCRIPTION_COMMA_WORDS", defaults.CommaWords),
	}
}

// DescriptionFilter builds the parser's description heuristic from the thresholds
func (c *Config) DescriptionFilter() taxonomy.DescriptionFilter {
	return taxonomy.DescriptionFilter{
		MaxChars:      c.DescriptionMaxChars,
		MaxWords:      c.DescriptionMaxWords,
		SentenceWords: c.DescriptionSentenceWords,
		CommaWords:    c.DescriptionCommaWords,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The import relies on the unique indexes, so a failed migration is fatal
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate taxonomy schema: %w", err)
	}
	log.Println("✓ Database schema migration completed")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration accepts Go durations ("45s") or plain milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
