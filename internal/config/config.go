// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// SMTP holds the outbound mail transport settings. Username and Password
// being empty is a fatal configuration condition for the notifier, not a
// transient send failure.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string

	// FromAddr is the fixed sender identity on all outgoing mail.
	FromAddr string
	// AdminAddr is the fixed staff recipient for notifications.
	AdminAddr string
}

// Configured reports whether transport credentials are present.
func (s SMTP) Configured() bool {
	return s.Host != "" && s.Username != "" && s.Password != ""
}

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Outbound email
	SMTP SMTP

	// Security
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPM   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		SMTP: SMTP{
			Host:      getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:      getEnv("SMTP_PORT", "587"),
			Username:  getEnv("SMTP_USER", ""),
			Password:  getEnv("SMTP_APP_PASSWORD", ""),
			FromAddr:  getEnv("MAIL_FROM", ""),
			AdminAddr: getEnv("MAIL_ADMIN", ""),
		},

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),
	}

	// The sender and admin identities default to the SMTP account, which is
	// how the site ran against Gmail.
	if cfg.SMTP.FromAddr == "" {
		cfg.SMTP.FromAddr = cfg.SMTP.Username
	}
	if cfg.SMTP.AdminAddr == "" {
		cfg.SMTP.AdminAddr = cfg.SMTP.Username
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if !cfg.SMTP.Configured() {
			return nil, fmt.Errorf("SMTP_HOST, SMTP_USER and SMTP_APP_PASSWORD are required in production")
		}
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
