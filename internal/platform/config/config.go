package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	AutoMigrate  bool
	KafkaBrokers []string

	JWTSecret string
	TokenTTL  time.Duration

	DistributionPoolSize int
	UploadMaxBytes       int64
	WorkerPollInterval   time.Duration

	LogLevel      slog.Level
	LogFormat     string
	EnableSwagger bool
	EnableMetrics bool

	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminMobile   string
}

const (
	defaultJWTSecret      = "dev-only-change-me"
	defaultPoolSize       = 5
	defaultUploadMaxBytes = 5 * 1024 * 1024
)

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "agentdesk"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultJWTSecret
	}

	cfg := Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		AutoMigrate:  envBool("AUTO_MIGRATE", true),
		KafkaBrokers: brokers,

		JWTSecret: secret,
		TokenTTL:  envDuration("TOKEN_TTL", 24*time.Hour),

		DistributionPoolSize: envInt("DISTRIBUTION_POOL_SIZE", defaultPoolSize),
		UploadMaxBytes:       int64(envInt("UPLOAD_MAX_BYTES", defaultUploadMaxBytes)),
		WorkerPollInterval:   envDuration("WORKER_POLL_INTERVAL", 2*time.Second),

		LogLevel:      envLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat:     strings.ToLower(envString("LOG_FORMAT", "text")),
		EnableSwagger: envBool("ENABLE_SWAGGER", true),
		EnableMetrics: envBool("ENABLE_METRICS", true),

		SeedAdminName:     envString("SEED_ADMIN_NAME", "Admin User"),
		SeedAdminEmail:    envString("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword: envString("SEED_ADMIN_PASSWORD", "admin123"),
		SeedAdminMobile:   envString("SEED_ADMIN_MOBILE", "1234567890"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	if c.HTTPPort == "" {
		err = multierror.Append(err, fmt.Errorf("HTTP_PORT must not be empty"))
	}
	if c.DistributionPoolSize <= 0 {
		err = multierror.Append(err, fmt.Errorf("DISTRIBUTION_POOL_SIZE must be positive, got %d", c.DistributionPoolSize))
	}
	if c.UploadMaxBytes <= 0 {
		err = multierror.Append(err, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes))
	}
	if c.TokenTTL <= 0 {
		err = multierror.Append(err, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.WorkerPollInterval <= 0 {
		err = multierror.Append(err, fmt.Errorf("WORKER_POLL_INTERVAL must be positive, got %s", c.WorkerPollInterval))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		err = multierror.Append(err, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.PostgresDSN != "" && c.JWTSecret == defaultJWTSecret {
		err = multierror.Append(err, fmt.Errorf("JWT_SECRET must be set when POSTGRES_DSN is configured"))
	}
	return err
}

// InMemory reports whether the process runs without a database.
func (c Config) InMemory() bool {
	return c.PostgresDSN == ""
}

func envString(name string, fallback string) string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return raw
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

// envInt returns the fallback for unset values; malformed values become 0 so Validate rejects them.
func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return value
}

func envLevel(name string, fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}
	return level
}
