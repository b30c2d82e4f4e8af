package config

import (
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// GatewayConfig holds the processor connection settings. Credentials here are
// the stored preferences; ADYEN_* env vars override them at adapter
// construction.
type GatewayConfig struct {
	BaseURL         string
	MerchantAccount string
	APIUsername     string
	APIPassword     string
	DefaultCurrency string
	AutoCapture     bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8099"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DB_DSN", "cardbridge:cardbridge@tcp(localhost:3306)/cardbridge?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: 15 * time.Minute,
			Issuer:       "cardbridge",
		},
		Gateway: GatewayConfig{
			BaseURL:         envOr("ADYEN_BASE_URL", "https://pal-test.adyen.com/pal/servlet"),
			MerchantAccount: os.Getenv("ADYEN_MERCHANT_ACCOUNT"),
			APIUsername:     os.Getenv("ADYEN_API_USERNAME"),
			APIPassword:     os.Getenv("ADYEN_API_PASSWORD"),
			DefaultCurrency: envOr("GATEWAY_CURRENCY", "USD"),
			AutoCapture:     envOr("GATEWAY_AUTO_CAPTURE", "true") == "true",
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
