package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Solver
	SolveTimeout    time.Duration `mapstructure:"SOLVE_TIMEOUT"`
	CacheExpiration time.Duration `mapstructure:"CACHE_EXPIRATION"`

	// Data layout
	DataDir string `mapstructure:"DATA_DIR"`

	// Log fetching
	FetchRateLimit float64       `mapstructure:"FETCH_RATE_LIMIT"`
	FetchTimeout   time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchUserAgent string        `mapstructure:"FETCH_USER_AGENT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8082")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("SOLVE_TIMEOUT", "30s")
	viper.SetDefault("CACHE_EXPIRATION", "24h")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("FETCH_RATE_LIMIT", 2.0) // requests per second
	viper.SetDefault("FETCH_TIMEOUT", "15s")
	viper.SetDefault("FETCH_USER_AGENT", "aiwolf-nlp-log-picker/1.0")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
