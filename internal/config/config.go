// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion     string
	ArchiveBucket string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// SES
	SESSenderEmail string
	SenderName     string

	// Groq
	GroqAPIKey string
	GroqAPIURL string
	GroqModel  string

	// Dashboard
	DashboardSecretKey string

	// Sales
	DefaultCurrency string

	// Application
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		ArchiveBucket: getEnv("AUDIT_ARCHIVE_BUCKET", ""),

		// Database
		DBHost:     getEnv("DB_HOST", getEnv("SALES_DB_HOST", "localhost")),
		DBPort:     getEnvInt("DB_PORT", getEnvInt("SALES_DB_PORT", 5432)),
		DBName:     getEnv("DB_NAME", getEnv("SALES_DB_NAME", "audit_engine")),
		DBUser:     getEnv("DB_USER", getEnv("SALES_DB_USER", "postgres")),
		DBPassword: getEnv("DB_PASSWORD", getEnv("SALES_DB_PASSWORD", "")),

		// SES
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		SenderName:     getEnv("SENDER_NAME", "Cyrnel Origin"),

		// Groq
		GroqAPIKey: getEnv("GROQ_API_KEY", ""),
		GroqAPIURL: getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		GroqModel:  getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		// Dashboard
		DashboardSecretKey: getEnv("DASHBOARD_SECRET_KEY", ""),

		// Sales
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "ZAR"),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
