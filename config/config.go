package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string

	RedisURL      string
	RedisPassword string

	CORSOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	UseHTTPS    bool
	TLSCertFile string
	TLSKeyFile  string

	ShutdownTimeout time.Duration

	LogLevel string
	LogFile  string
}

const defaultDatabaseURL = "host=localhost port=5432 user=postgres dbname=gamecatalog sslmode=disable"

// Load reads .env (when present) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:              envOrDefault("PORT", "8080"),
		GinMode:           envOrDefault("GIN_MODE", "debug"),
		DatabaseURL:       envOrDefault("DATABASE_URL", defaultDatabaseURL),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		CORSOrigins:       listEnvOrDefault("CORS_ORIGINS", []string{"http://localhost:3000", "https://localhost:3000"}),
		RateLimitRequests: intEnvOrDefault("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   durationEnvOrDefault("RATE_LIMIT_WINDOW", time.Minute),
		UseHTTPS:          boolEnvOrDefault("USE_HTTPS", false),
		TLSCertFile:       os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:        os.Getenv("TLS_KEY_FILE"),
		ShutdownTimeout:   durationEnvOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFile:           envOrDefault("LOG_FILE", "logs/app.log"),
	}
}

// TLSEnabled reports whether HTTPS is requested and fully configured.
func (c Config) TLSEnabled() bool {
	return c.UseHTTPS && c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func envOrDefault(key, defaultValue string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return defaultValue
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func intEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return defaultValue
	}
	return val
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes") {
		return true
	}
	if raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no") {
		return false
	}
	return defaultValue
}

func listEnvOrDefault(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
