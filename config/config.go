package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Configuration is the full runtime configuration, read from the environment
// (and a local .env file when present).
type Configuration struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Upload      UploadConfig
	ActivityLog ActivityLogConfig
	Cloudinary  CloudinaryConfig
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8081"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:3001"`
}

type DatabaseConfig struct {
	// Driver selects the document store: "mongo" or "memory".
	Driver        string `env:"DB_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"modeva_commerce"`
}

type RedisConfig struct {
	// URL is optional; rate limiting is switched off without it.
	URL string `env:"REDIS_URL"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

type UploadConfig struct {
	Dir               string   `env:"UPLOAD_DIR" envDefault:"public/assets"`
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" envSeparator:"," envDefault:"png,jpeg,jpg,gif,pdf,doc,docx,xls,xlsx,json"`
	MaxFileSize       string   `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"5MB"`
	MaxRequestSize    string   `env:"UPLOAD_MAX_REQUEST_SIZE" envDefault:"300MB"`
	// Target is "disk" or "cloudinary".
	Target string `env:"UPLOAD_TARGET" envDefault:"disk"`

	maxFileSizeVal    int64
	maxRequestSizeVal int64
}

type ActivityLogConfig struct {
	// Driver is "postgres", "sqlite" or empty (activity logging disabled).
	Driver string `env:"ACTIVITY_DB_DRIVER"`
	DSN    string `env:"ACTIVITY_DB_URL"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
}

// Load reads .env (if any) and the process environment into a validated Configuration.
func Load() (*Configuration, error) {
	_ = godotenv.Load()

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and resolves human-readable sizes.
func (c *Configuration) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if !lo.Contains([]string{"mongo", "memory"}, c.Database.Driver) {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if !lo.Contains([]string{"", "postgres", "sqlite"}, c.ActivityLog.Driver) {
		return fmt.Errorf("unsupported ACTIVITY_DB_DRIVER %q", c.ActivityLog.Driver)
	}
	if c.ActivityLog.Driver != "" && c.ActivityLog.DSN == "" {
		return fmt.Errorf("ACTIVITY_DB_URL required when ACTIVITY_DB_DRIVER is set")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	if c.Upload.Target == "cloudinary" && c.Cloudinary.CloudName == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME required when UPLOAD_TARGET=cloudinary")
	}
	return c.Upload.Finalize()
}

// Finalize validates the upload settings and resolves the human readable sizes.
func (u *UploadConfig) Finalize() error {
	if u.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR required")
	}
	if !lo.Contains([]string{"disk", "cloudinary"}, u.Target) {
		return fmt.Errorf("unsupported UPLOAD_TARGET %q", u.Target)
	}

	size, err := units.RAMInBytes(u.MaxFileSize)
	if err != nil {
		return fmt.Errorf("invalid UPLOAD_MAX_FILE_SIZE: %w", err)
	}
	reqSize, err := units.RAMInBytes(u.MaxRequestSize)
	if err != nil {
		return fmt.Errorf("invalid UPLOAD_MAX_REQUEST_SIZE: %w", err)
	}
	if size <= 0 || reqSize <= 0 {
		return fmt.Errorf("upload size limits must be positive")
	}
	u.maxFileSizeVal = size
	u.maxRequestSizeVal = reqSize

	u.AllowedExtensions = lo.FilterMap(u.AllowedExtensions, func(ext string, _ int) (string, bool) {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		return ext, ext != ""
	})
	return nil
}

func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.maxFileSizeVal
}

func (u *UploadConfig) MaxRequestSizeBytes() int64 {
	return u.maxRequestSizeVal
}

// WithTimeout returns a context with a 10s timeout (bumped from 5s for cold starts)
func WithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// WithRequestTimeout derives the standard 10s deadline from a request context.
func WithRequestTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 10*time.Second)
}

func WithCustomTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
