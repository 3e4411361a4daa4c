package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.Equal(t, 10, cfg.ReviewMinLength)
	assert.Equal(t, 5000, cfg.ReviewMaxLength)
	assert.Equal(t, 3, cfg.ReadRetryAttempts)
	assert.Equal(t, 30, cfg.MessageRateLimit)
	assert.Equal(t, time.Minute, cfg.MessageRateWindow)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Contains(t, cfg.AllowedImageTypes, "image/jpeg")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_PAGE_SIZE", "25")
	t.Setenv("MESSAGE_RATE_WINDOW", "30s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("ALLOWED_IMAGE_TYPES", "image/png, image/gif")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 25, cfg.DefaultPageSize)
	assert.Equal(t, 30*time.Second, cfg.MessageRateWindow)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, []string{"image/png", "image/gif"}, cfg.AllowedImageTypes)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DEFAULT_PAGE_SIZE", "twenty")
	t.Setenv("MESSAGE_RATE_WINDOW", "soon")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg := Load()
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, time.Minute, cfg.MessageRateWindow)
	assert.False(t, cfg.MinIOUseSSL)
}
