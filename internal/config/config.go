package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                    string
	GinMode                 string
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	RedisURL                string
	AdminJWTSecret          string
	AdminJWTExpiry          time.Duration
	MinIOEndpoint           string
	MinIOAccessKey          string
	MinIOSecretKey          string
	MinIOUseSSL             bool
	AWSAccessKeyID          string
	AWSSecretAccessKey      string
	AWSRegion               string
	MediaBucket             string
	MaxFileSize             int64
	AllowedImageTypes       []string
	ReviewMinLength         int
	ReviewMaxLength         int
	DefaultPageSize         int
	MaxPageSize             int
	MessageRateLimit        int
	MessageRateWindow       time.Duration
	ReadRetryAttempts       int
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		GinMode:                 getEnv("GIN_MODE", "debug"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "./firebase-service-account.json"),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379"),
		AdminJWTSecret:          getEnv("ADMIN_JWT_SECRET", "change-me-in-production"),
		AdminJWTExpiry:          getDurationEnv("ADMIN_JWT_EXPIRY", 12*time.Hour),
		MinIOEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:          getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:          getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOUseSSL:             getBoolEnv("MINIO_USE_SSL", false),
		AWSAccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:               getEnv("AWS_REGION", "us-east-1"),
		MediaBucket:             getEnv("MEDIA_BUCKET", "lockerroom-media"),
		MaxFileSize:             getInt64Env("MAX_FILE_SIZE", 10*1024*1024), // 10MB
		AllowedImageTypes:       getSliceEnv("ALLOWED_IMAGE_TYPES", []string{"image/jpeg", "image/png", "image/webp"}),
		ReviewMinLength:         getIntEnv("REVIEW_MIN_LENGTH", 10),
		ReviewMaxLength:         getIntEnv("REVIEW_MAX_LENGTH", 5000),
		DefaultPageSize:         getIntEnv("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:             getIntEnv("MAX_PAGE_SIZE", 50),
		MessageRateLimit:        getIntEnv("MESSAGE_RATE_LIMIT", 30),
		MessageRateWindow:       getDurationEnv("MESSAGE_RATE_WINDOW", time.Minute),
		ReadRetryAttempts:       getIntEnv("READ_RETRY_ATTEMPTS", 3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
