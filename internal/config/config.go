package config

import (
	"os"
	"strings"
)

// Config holds service settings sourced from environment variables.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	RedisAddr   string
	CORSOrigins []string
}

// Load reads configuration from the environment, applying development
// defaults where a variable is unset.
func Load() *Config {
	return &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		MongoURI:    os.Getenv("MONGO_URI"),
		DBName:      getEnvOrDefault("DB_NAME", "teamwrite"),
		RedisAddr:   getEnvOrDefault("REDIS_ADDR", "redis:6379"),
		CORSOrigins: splitOrigins(getEnvOrDefault("CORS_ORIGINS", "*")),
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
