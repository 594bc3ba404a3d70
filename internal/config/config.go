// Package config reads service configuration from the environment and
// command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the Cartify API server.
type Config struct {
	Port         string `env:"PORT"`
	DatabaseURL  string `env:"DATABASE_URL"`
	JWTSecret    string `env:"JWT_SECRET"`
	AdminPasskey string `env:"ADMIN_PASSKEY"`
	RedisAddr    string `env:"REDIS_ADDR"`

	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT"`
	DBName     string `env:"DB_NAME"`
}

// Load reads .env (when present), the environment and flags, in increasing
// precedence for the environment over flag defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envPort := cfg.Port
	envDatabaseURL := cfg.DatabaseURL

	fs := flag.NewFlagSet("cartify", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", "8080", "HTTP listen port")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "Postgres connection URL")
	_ = fs.Parse(os.Args[1:])

	if envPort != "" {
		cfg.Port = envPort
	}
	if envDatabaseURL != "" {
		cfg.DatabaseURL = envDatabaseURL
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}

	return cfg, nil
}
