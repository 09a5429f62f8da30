package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string
	Port     string
	GinMode  string

	CORSOrigins []string

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Financial core (fincore) connection
	FincoreBaseURL string
	FincoreAPIKey  string
	FincoreTimeout time.Duration

	// Gemini / embeddings
	GeminiAPIKey    string
	GeminiTier      string
	EmbeddingModel  string
	CompletionModel string

	// Retrieval tuning
	SearchTopK       int
	SearchMinScore   float64
	ContextCharLimit int
	IndexPageSize    int

	// Scheduler cadences
	IndexInterval       time.Duration
	CacheSweepInterval  time.Duration
	HealthProbeInterval time.Duration

	// Answer cache
	AnswerCacheTTL time.Duration

	// Rate limiting (HTTP surface)
	RateLimitReqs   int
	RateLimitWindow int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/fincore_assistant"),
		DBName:   getEnv("DB_NAME", "fincore_assistant"),
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		FincoreBaseURL: getEnv("FINCORE_BASE_URL", "http://localhost:9000/api/v1"),
		FincoreAPIKey:  getEnv("FINCORE_API_KEY", ""),
		FincoreTimeout: getEnvDuration("FINCORE_TIMEOUT", 30*time.Second),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		CompletionModel: getEnv("COMPLETION_MODEL", "gemini-2.0-flash"),

		SearchTopK:       getEnvInt("SEARCH_TOP_K", 5),
		SearchMinScore:   getEnvFloat64("SEARCH_MIN_SCORE", 0.7),
		ContextCharLimit: getEnvInt("CONTEXT_CHAR_LIMIT", 12000),
		IndexPageSize:    getEnvInt("INDEX_PAGE_SIZE", 100),

		IndexInterval:       getEnvDuration("INDEX_INTERVAL", 6*time.Hour),
		CacheSweepInterval:  getEnvDuration("CACHE_SWEEP_INTERVAL", time.Hour),
		HealthProbeInterval: getEnvDuration("HEALTH_PROBE_INTERVAL", 30*time.Minute),

		AnswerCacheTTL: getEnvDuration("ANSWER_CACHE_TTL", 5*time.Minute),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.FincoreAPIKey == "" {
		return nil, fmt.Errorf("FINCORE_API_KEY is required - set it in .env file")
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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
