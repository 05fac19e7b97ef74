package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret        string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiryMinutes int    `envconfig:"JWT_EXPIRY_MINUTES" default:"30"`
	BcryptCost       int    `envconfig:"BCRYPT_COST" default:"12"`
}

// Load reads configuration from a .env file (if present) and environment
// variables into a Config struct.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
