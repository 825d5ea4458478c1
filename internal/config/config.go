package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	HTTPPort string
	AppEnv   string
	DB       DBConfig
	SMTP     SMTPConfig
}

// DBConfig holds the MySQL connection parameters.
type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// SMTPConfig holds the outbound mail transport parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from the environment. A .env file is loaded
// when present so local development works without exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	smtpPort, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	return &Config{
		HTTPPort: getenv("HTTP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		DB: DBConfig{
			User:     getenv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "3306"),
			Name:     getenv("DB_NAME", "sprintboard"),
		},
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", "localhost"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", "no-reply@sprintboard.local"),
		},
	}, nil
}

// DSN builds the go-sql-driver connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
