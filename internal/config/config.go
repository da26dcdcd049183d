package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database Database `envPrefix:"DB_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Momo     Momo     `envPrefix:"MOMO_"`
	CORS     CORS     `envPrefix:"CORS_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	URL    string `env:"URL" envDefault:"orchid.db"`
}

// Redis is optional. An empty Addr keeps pending-order locking in process.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type JWT struct {
	Secret     string        `env:"SECRET"`
	Expiration time.Duration `env:"EXPIRATION" envDefault:"10h"`
}

type Momo struct {
	PartnerCode string        `env:"PARTNER_CODE"`
	AccessKey   string        `env:"ACCESS_KEY"`
	SecretKey   string        `env:"SECRET_KEY"`
	Endpoint    string        `env:"ENDPOINT" envDefault:"https://test-payment.momo.vn/v2/gateway/api/create"`
	RedirectURL string        `env:"REDIRECT_URL"`
	IpnURL      string        `env:"IPN_URL"`
	Lang        string        `env:"LANG" envDefault:"vi"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type CORS struct {
	AllowOrigins []string `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

// Admin seeds an administrator account when AccountName and Password are set.
type Admin struct {
	AccountName string `env:"ACCOUNT_NAME"`
	Email       string `env:"EMAIL"`
	Password    string `env:"PASSWORD"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWT.Expiration)
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, mysql, postgres)", c.Database.Driver)
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Environment.Name) {
	case "production", "prod":
		return true
	}
	return false
}
