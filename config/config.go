package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, populated from environment variables
// (with an optional .env file for local development).
type Config struct {
	ServerPort int

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	JWTExpiresHours int

	// ResetLocation is the timezone whose midnight resets all daily quotas.
	ResetLocation *time.Location

	RateLimitMax    int
	RateLimitWindow time.Duration

	CORSAllowedOrigins []string

	SeedDemoData bool
}

// Load reads configuration from the environment. JWT_SECRET is the only
// mandatory variable; everything else has a development default.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      getEnvInt("SERVER_PORT", 8080),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGODB_DB", "campusmatch"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpiresHours: getEnvInt("JWT_EXPIRES_HOURS", 24),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 60)) * time.Minute,
		SeedDemoData:    isTruthy(os.Getenv("SEED_DEMO_DATA")),
	}
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	loc, err := time.LoadLocation(getEnv("RESET_TIMEZONE", "Asia/Yangon"))
	if err != nil {
		return nil, err
	}
	cfg.ResetLocation = loc

	return cfg, nil
}

// getEnv gets an environment variable with a fallback default value.
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

// splitList parses a comma-separated environment value, dropping blanks.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "TRUE", "yes", "on":
		return true
	}
	return false
}
