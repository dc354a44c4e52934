package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Logging settings shared by both binaries.
type Logging struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Backend holds the environment backed configuration of the REST backend.
type Backend struct {
	Logging

	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8000"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api/v1"`

	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	SecretKey         string        `env:"SECRET_KEY,notEmpty"`
	Algorithm         string        `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpire time.Duration `env:"ACCESS_TOKEN_EXPIRE" envDefault:"30m"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	ChatbotWebhookURL string        `env:"CHATBOT_WEBHOOK_URL" envDefault:"http://chat_bot:8001/agent/event"`
	WebhookTimeout    time.Duration `env:"CHATBOT_WEBHOOK_TIMEOUT" envDefault:"10s"`

	// ServiceKey guards the service-to-service routes. Empty disables the check.
	ServiceKey string `env:"SERVICE_KEY"`
}

// Relay holds the configuration of the webhook relay.
type Relay struct {
	Logging

	HTTPAddr       string        `env:"RELAY_HTTP_ADDR" envDefault:":8001"`
	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://backend:8000/api/v1"`
	WebhookBaseURL string        `env:"WEBHOOK_BASE_URL" envDefault:"http://localhost:8001"`
	ServiceKey     string        `env:"SERVICE_KEY"`
	HTTPTimeout    time.Duration `env:"RELAY_HTTP_TIMEOUT" envDefault:"30s"`
	TelegramAPI    string        `env:"TELEGRAM_API_ENDPOINT" envDefault:"https://api.telegram.org/bot%s/%s"`
}

// loadDotEnv loads a .env file when present. A missing file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadBackend parses the backend configuration from the environment.
func LoadBackend() (*Backend, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &Backend{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse backend config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Backend) Validate() error {
	switch strings.ToUpper(c.Algorithm) {
	case "HS256", "HS384", "HS512":
		c.Algorithm = strings.ToUpper(c.Algorithm)
	default:
		return fmt.Errorf("unsupported ALGORITHM %q", c.Algorithm)
	}
	if c.AccessTokenExpire <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST %d out of range", c.BcryptCost)
	}
	c.APIPrefix = "/" + strings.Trim(c.APIPrefix, "/")
	return nil
}

// LoadRelay parses the relay configuration from the environment.
func LoadRelay() (*Relay, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &Relay{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse relay config: %w", err)
	}
	cfg.BackendURL = strings.TrimSuffix(cfg.BackendURL, "/")
	cfg.WebhookBaseURL = strings.TrimSuffix(cfg.WebhookBaseURL, "/")
	if cfg.HTTPTimeout <= 0 {
		return nil, errors.New("RELAY_HTTP_TIMEOUT must be positive")
	}
	return cfg, nil
}
