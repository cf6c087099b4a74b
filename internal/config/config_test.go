package config

import (
	"testing"
	"time"

	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "review-service", cfg.ServiceName)
	assert.Equal(t, "8005", cfg.HTTPPort)
	assert.Equal(t, "mongo", cfg.StorageDriver)
	assert.Equal(t, "http://localhost:8003", cfg.ProductServiceURL)
	assert.Equal(t, "http://localhost:8001", cfg.UserServiceURL)
	assert.Equal(t, 5*time.Second, cfg.DownstreamTimeout)
	assert.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	assert.False(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.AllowedOrigins())
}

func TestLoadConfig_DevelopmentAllowsAnyOrigin(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DOWNSTREAM_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 250*time.Millisecond, cfg.DownstreamTimeout)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.AllowedOrigins())
}

func TestLoadConfig_RejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := LoadConfig(logger.NewNop())
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestLoadConfig_MemoryDriverNeedsNoMongo(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MONGO_URI", "")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageDriver)
}
