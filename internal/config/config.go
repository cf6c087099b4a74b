package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultJWTSecret = "jwt_secret"

// Config holds all configuration for the service.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	AppEnv      string `mapstructure:"APP_ENV"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	NATSURL string `mapstructure:"NATS_URL"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	UserCacheTTL  time.Duration `mapstructure:"USER_CACHE_TTL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	ProductServiceURL string        `mapstructure:"PRODUCT_SERVICE_URL"`
	UserServiceURL    string        `mapstructure:"USER_SERVICE_URL"`
	OrderServiceURL   string        `mapstructure:"ORDER_SERVICE_URL"`
	DownstreamTimeout time.Duration `mapstructure:"DOWNSTREAM_TIMEOUT"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	PrometheusMetricsPort  string        `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	LogFormat              string        `mapstructure:"LOG_FORMAT"`
	OTExporterOTLPEndpoint string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ShutdownTimeout        time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas. When the list is unset
// development allows any origin and every other environment allows none.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 && c.IsDevelopment() {
		return []string{"*"}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "review-service")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("HTTP_PORT", "8005")
	v.SetDefault("STORAGE_DRIVER", "mongo")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "ecommerce_reviews")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("USER_CACHE_TTL", "5m")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("PRODUCT_SERVICE_URL", "http://localhost:8003")
	v.SetDefault("USER_SERVICE_URL", "http://localhost:8001")
	v.SetDefault("ORDER_SERVICE_URL", "")
	v.SetDefault("DOWNSTREAM_TIMEOUT", "5s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9093")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// LoadConfig reads configuration from environment variables.
// A .env file, when present, is loaded into the environment by main beforehand.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == defaultJWTSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("app_env", cfg.AppEnv),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("storage_driver", cfg.StorageDriver),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("product_service_url", cfg.ProductServiceURL),
		zap.String("user_service_url", cfg.UserServiceURL),
		zap.String("order_service_url", cfg.OrderServiceURL),
		zap.Duration("downstream_timeout", cfg.DownstreamTimeout),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StorageDriver {
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be mongo or memory, got %q", c.StorageDriver))
	}
	if c.DownstreamTimeout <= 0 {
		errs = append(errs, errors.New("DOWNSTREAM_TIMEOUT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
