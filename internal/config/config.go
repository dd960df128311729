// Package config loads configuration from a .env file and the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress string
	PostgresConn  string
	LogLevel      string

	MediaRoot   string
	MediaURL    string
	MaxUploadMB int

	JWTSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	AdminEmail   string

	FlashStore     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string

	// StrictReview stops rejected documents from counting towards completion.
	StrictReview bool
}

// Load reads .env when present, then the environment. Every missing
// required key is reported in the returned error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "err", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	c := Config{
		ServerAddress: getEnv("SERVER_ADDRESS", "0.0.0.0:8080"),
		PostgresConn:  os.Getenv("POSTGRES_CONN"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		MediaRoot:   getEnv("MEDIA_ROOT", "./media"),
		MediaURL:    getEnv("MEDIA_URL", "/media/"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@assistancevoyage.local"),
		AdminEmail:   getEnv("ADMIN_EMAIL", "contact@assistancevoyage.local"),

		FlashStore:     strings.ToLower(getEnv("FLASH_STORE", "memory")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisNamespace: getEnv("REDIS_NAMESPACE", "assistancevoyage"),

		StrictReview: getEnvBool("STRICT_REVIEW", false),
	}

	var missing []string
	if c.PostgresConn == "" {
		missing = append(missing, "POSTGRES_CONN")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("missing env %s", strings.Join(missing, ", "))
	}

	switch c.FlashStore {
	case "memory", "redis":
	default:
		return c, fmt.Errorf("%v is not a valid flash store", c.FlashStore)
	}
	if c.MaxUploadMB <= 0 {
		return c, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return c, nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return i
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return b
}
