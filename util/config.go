package util

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config struct.
// Static configuration loaded once at process start. The server must be
// restarted to pick up new values.
type Config struct {
	// Server
	ServerAddr string

	// Postgres connection string
	DbConn string

	// Redis address, shared by the cache and the background workers
	RedisAddr string

	// JWT
	SecretKey              []byte
	TokenExpiration        time.Duration
	RefreshTokenExpiration time.Duration

	// payOS payment gateway credentials
	PayOSClientID    string
	PayOSAPIKey      string
	PayOSChecksumKey string
	PayOSBaseURL     string

	// Frontend URLs the gateway redirects the buyer back to
	ReturnURL string
	CancelURL string

	// SMTP relay and the platform sender account
	SMTPHost    string
	SMTPPort    string
	Email       string
	AppPassword string

	// Cloudinary cloud storage
	CloudName   string
	CloudKey    string
	CloudSecret string
}

// Load config from .env. If the file is missing, fall back to the process
// environment so container deployments don't need a .env at all.
func LoadConfig(path string) *Config {
	if err := godotenv.Load(path); err != nil {
		LOGGER.Warn("no .env file found, reading config from environment", "path", path)
	}

	return &Config{
		ServerAddr:             getEnv("SERVER_ADDR", ":8080"),
		DbConn:                 os.Getenv("DB_CONN"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		SecretKey:              []byte(os.Getenv("SECRET_KEY")),
		TokenExpiration:        time.Duration(getEnvInt("TOKEN_EXPIRATION_MINUTES", 60)) * time.Minute,
		RefreshTokenExpiration: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRATION_MINUTES", 1440)) * time.Minute,
		PayOSClientID:          os.Getenv("PAYOS_CLIENT_ID"),
		PayOSAPIKey:            os.Getenv("PAYOS_API_KEY"),
		PayOSChecksumKey:       os.Getenv("PAYOS_CHECKSUM_KEY"),
		PayOSBaseURL:           getEnv("PAYOS_BASE_URL", "https://api-merchant.payos.vn"),
		ReturnURL:              os.Getenv("RETURN_URL"),
		CancelURL:              os.Getenv("CANCEL_URL"),
		SMTPHost:               getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:               getEnv("SMTP_PORT", "587"),
		Email:                  os.Getenv("EMAIL"),
		AppPassword:            os.Getenv("APP_PASSWORD"),
		CloudName:              os.Getenv("CLOUD_NAME"),
		CloudKey:               os.Getenv("CLOUD_KEY"),
		CloudSecret:            os.Getenv("CLOUD_SECRET"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}
