package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/flashdeck-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Config holds application configuration values
type Config struct {
	ServerPort    string
	JWTSecret     string
	JWTExpiration time.Duration
	DbDir         string
	DbFile        string
	LogLevel      string

	// CORSAllowedOrigins lists origins allowed to call the API; "*" allows all.
	CORSAllowedOrigins []string

	// Login throttling per client IP
	LoginRateLimit  int
	LoginRateWindow time.Duration

	BcryptCost int
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}

	cfg := &Config{
		ServerPort:         strings.TrimPrefix(getEnv("SERVER_PORT", "8080"), ":"),
		JWTSecret:          jwtSecret,
		JWTExpiration:      time.Hour * time.Duration(getPositiveInt("JWT_EXPIRATION_HOURS", 24)),
		DbDir:              getEnv("DATABASE_DIRECTORY", "data"),
		DbFile:             getEnv("DATABASE_FILE", "flashcard.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LoginRateLimit:     getPositiveInt("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow:    time.Second * time.Duration(getPositiveInt("LOGIN_RATE_WINDOW_SECONDS", 60)),
		BcryptCost:         getPositiveInt("BCRYPT_COST", bcrypt.DefaultCost),
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		customLog.Warnf("BCRYPT_COST %d out of range. Using default %d", cfg.BcryptCost, bcrypt.DefaultCost)
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	// Package loggers were built before .env was read.
	logger.SetLevel(cfg.LogLevel)

	customLog.Printf("Configuration loaded successfully. Port: %s, JWT Exp: %v, DB: %s/%s",
		cfg.ServerPort, cfg.JWTExpiration, cfg.DbDir, cfg.DbFile)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getPositiveInt parses an integer variable, warning and falling back on bad input.
func getPositiveInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		customLog.Warnf("Invalid %s '%s'. Using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
