package config

import (
	"os"
	"strconv"
	"time"

	"questline/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// Reference timezone for the daily quest day boundary
	QuestTimezone *time.Location

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits (requests per window, window in seconds)
	APIRateLimit    int
	APIRateWindow   int
	AuthRateLimit   int
	AuthRateWindow  int
	QuestRateLimit  int
	QuestRateWindow int
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// День квеста считается в этой таймзоне, по умолчанию UTC
	loc := time.UTC
	if tz := os.Getenv("QUEST_TIMEZONE"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			logger.Fatal("invalid QUEST_TIMEZONE", "value", tz, "error", err)
		}
		loc = parsed
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		QuestTimezone: loc,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		APIRateLimit:    envInt("API_RATE_LIMIT", 60),
		APIRateWindow:   envInt("API_RATE_WINDOW", 60),
		AuthRateLimit:   envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:  envInt("AUTH_RATE_WINDOW", 60),
		QuestRateLimit:  envInt("QUEST_RATE_LIMIT", 30),
		QuestRateWindow: envInt("QUEST_RATE_WINDOW", 60),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
