package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Port    int    `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// DSN demo:
	// app:apppass@tcp(127.0.0.1:3306)/esp_back?charset=utf8mb4&parseTime=true&loc=Local&clientFoundRows=true
	// clientFoundRows makes RowsAffected count matched rows rather than
	// changed rows, so a no-op update on an existing row is not a 404.
	DBDSN string `env:"DB_DSN" envDefault:"app:apppass@tcp(127.0.0.1:3306)/esp_back?charset=utf8mb4&parseTime=true&loc=Local&clientFoundRows=true"`

	// Shared secret for the locally-verified credential scheme.
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// External auth service used for the access/refresh token-pair exchange.
	AuthServiceURL string `env:"AUTH_SERVICE_URL" envDefault:"http://localhost:9999"`

	// Downstream chat service. Every handler goes through this one URL + key.
	ChatServiceURL string `env:"CHAT_SERVICE_URL" envDefault:"http://localhost:8000"`
	ChatServiceKey string `env:"CHAT_SERVICE_KEY"`

	// Collections/documents proxy backend.
	DocsServiceURL string `env:"DOCS_SERVICE_URL" envDefault:"http://localhost:8444"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Fixed-window rate limit on the chat message route.
	// Disabled when REDIS_ADDR is empty.
	ChatRateLimit  int           `env:"CHAT_RATE_LIMIT" envDefault:"30"`
	ChatRateWindow time.Duration `env:"CHAT_RATE_WINDOW" envDefault:"1m"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
