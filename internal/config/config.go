package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Quiz
	QuizAdvanceDelay time.Duration
	QuizSessionTTL   time.Duration

	// Workers
	WorkerCount int

	// Auth rate limit (requests per minute per IP)
	AuthRateLimit int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Env:              getEnvOrDefault("ENV", "development"),
		DatabaseURL:      mustGetEnv("DATABASE_URL"),
		RedisURL:         mustGetEnv("REDIS_URL"),
		JWTSecret:        mustGetEnv("JWT_SECRET"),
		QuizAdvanceDelay: time.Duration(getEnvAsIntOrDefault("QUIZ_ADVANCE_DELAY_MS", 1500)) * time.Millisecond,
		QuizSessionTTL:   time.Duration(getEnvAsIntOrDefault("QUIZ_SESSION_TTL_MINUTES", 120)) * time.Minute,
		WorkerCount:      getEnvAsIntOrDefault("WORKER_COUNT", 2),
		AuthRateLimit:    getEnvAsIntOrDefault("AUTH_RATE_LIMIT_PER_MIN", 10),
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// DataDir is where the command line tool keeps its local progress database.
func DataDir() string {
	if dir := os.Getenv("ISL_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".isl"
	}
	return home + string(os.PathSeparator) + ".isl"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
