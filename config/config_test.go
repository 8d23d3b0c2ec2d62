package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Configuration {
	return &Configuration{
		Database:  DatabaseConfig{Driver: "memory"},
		Auth:      AuthConfig{JWTSecret: "secret", JWTExpiry: time.Hour},
		RateLimit: RateLimitConfig{Requests: 100, Window: time.Minute},
		Upload: UploadConfig{
			Dir:               "public/assets",
			AllowedExtensions: []string{" .PNG", "jpg", ""},
			MaxFileSize:       "5MB",
			MaxRequestSize:    "300MB",
			Target:            "disk",
		},
	}
}

func TestValidateResolvesUploadSizes(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxFileSizeBytes())
	assert.Equal(t, int64(300*1024*1024), cfg.Upload.MaxRequestSizeBytes())
	assert.Equal(t, []string{"png", "jpg"}, cfg.Upload.AllowedExtensions)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Configuration)
	}{
		{"missing secret", func(c *Configuration) { c.Auth.JWTSecret = "" }},
		{"unknown store", func(c *Configuration) { c.Database.Driver = "couch" }},
		{"activity without dsn", func(c *Configuration) { c.ActivityLog.Driver = "postgres" }},
		{"bad size", func(c *Configuration) { c.Upload.MaxFileSize = "lots" }},
		{"cloudinary without account", func(c *Configuration) { c.Upload.Target = "cloudinary" }},
		{"zero window", func(c *Configuration) { c.RateLimit.Window = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "png,pdf")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, []string{"png", "pdf"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "8081", cfg.Server.Port)
}
