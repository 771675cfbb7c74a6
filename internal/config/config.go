package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Remote booking backend.
	BackendBaseURL string
	BackendToken   string
	BackendTimeout time.Duration

	RedisAddr       string
	AvailabilityTTL time.Duration

	JWTSecret string

	// Booking window rules.
	MinAdvanceHours int
	MaxAdvanceDays  int
	AllowSameDay    bool

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:9000/api"),
		BackendToken:   getEnv("BACKEND_TOKEN", ""),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		AvailabilityTTL: getEnvDuration("AVAILABILITY_CACHE_TTL", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", "secret-key"),

		MinAdvanceHours: getEnvInt("MIN_ADVANCE_HOURS", 1),
		MaxAdvanceDays:  getEnvInt("MAX_ADVANCE_DAYS", 30),
		AllowSameDay:    getEnvBool("ALLOW_SAME_DAY", true),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
