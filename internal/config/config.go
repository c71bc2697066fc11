package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Invoice Tracker"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"invoicetracker"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
		PingTimeout     time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
		TrustProxy     bool          `envconfig:"TRUST_PROXY" default:"false"`
	}

	Auth struct {
		JWTSecret       string        `envconfig:"JWT_SECRET"`
		TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
		DefaultPassword string        `envconfig:"DEFAULT_PASSWORD" default:"ChangeMe123!"`
	}

	Functions struct {
		BaseURL string        `envconfig:"FUNCTIONS_BASE_URL"`
		APIKey  string        `envconfig:"FUNCTIONS_API_KEY"`
		Timeout time.Duration `envconfig:"FUNCTIONS_TIMEOUT" default:"60s"`
	}

	OpenAI struct {
		APIKey  string `envconfig:"OPENAI_API_KEY"`
		Model   string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
		BaseURL string `envconfig:"OPENAI_BASE_URL"`
	}

	Limits struct {
		SignInPerMinute int `envconfig:"SIGNIN_PER_MINUTE" default:"10"`
		SignInBurst     int `envconfig:"SIGNIN_BURST" default:"5"`
		MaxUploadMB     int `envconfig:"MAX_UPLOAD_MB" default:"10"`
	}

	Attachments struct {
		BaseURL string `envconfig:"ATTACHMENTS_BASE_URL"`
		Token   string `envconfig:"ATTACHMENTS_TOKEN"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// MaxUploadBytes is the request body limit for file uploads, enforced with
// http.MaxBytesReader by the upload handlers.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Limits.MaxUploadMB) << 20
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("failed to process config: JWT_SECRET must not be empty")
	}

	return &cfg, nil
}
