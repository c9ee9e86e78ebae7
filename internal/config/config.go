package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env      string
	HTTPAddr string
	// BaseURL is the origin the refresh orchestrator calls back into.
	BaseURL string

	JWTIssuer        string
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	DBDriver    string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	APIRateLimitRPM int

	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELServiceName           string
	OTELEnvironment           string
	OTELMetricsExportInterval time.Duration
	EnableOTelHTTP            bool

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:      getenv("APP_ENV", "development"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		BaseURL:  getenv("BASE_URL", "http://localhost:8080"),

		JWTIssuer:        getenv("JWT_ISSUER", "inkwell"),
		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,

		DBDriver:    getenv("DB_DRIVER", "postgres"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		APIRateLimitRPM: 300,

		OTELMetricsEnabled:        getenvBool("OTEL_METRICS_ENABLED", false),
		OTELTracesEnabled:         getenvBool("OTEL_TRACES_ENABLED", false),
		OTELLogsEnabled:           getenvBool("OTEL_LOGS_ENABLED", false),
		OTELExporterOTLPEndpoint:  getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure:  getenvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:           getenv("OTEL_SERVICE_NAME", "inkwell"),
		OTELEnvironment:           getenv("OTEL_ENVIRONMENT", "development"),
		OTELMetricsExportInterval: 15 * time.Second,
		EnableOTelHTTP:            getenvBool("OTEL_HTTP_ENABLED", false),

		ShutdownTimeout:              15 * time.Second,
		ShutdownHTTPDrainTimeout:     10 * time.Second,
		ShutdownObservabilityTimeout: 5 * time.Second,
	}

	if v := os.Getenv("API_RATE_LIMIT_RPM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			err = fmt.Errorf("parse API_RATE_LIMIT_RPM: %w", err)
			recordConfigValidationEvent(context.Background(), cfg.Env, "error", classifyConfigLoadError(err))
			return nil, err
		}
		cfg.APIRateLimitRPM = n
	}

	if err := cfg.validate(); err != nil {
		recordConfigValidationEvent(context.Background(), cfg.Env, "error", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(context.Background(), cfg.Env, "success", "none")
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := url.Parse(c.BaseURL); err != nil || c.BaseURL == "" {
		return fmt.Errorf("validate config: invalid BASE_URL %q", c.BaseURL)
	}
	if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
		return fmt.Errorf("validate config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.IsProduction() {
		if len(c.JWTAccessSecret) < 32 || len(c.JWTRefreshSecret) < 32 {
			return fmt.Errorf("validate config: JWT secrets must be at least 32 bytes in production")
		}
		if c.DatabaseDSN == "" {
			return fmt.Errorf("validate config: DATABASE_DSN is required in production")
		}
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("validate config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
