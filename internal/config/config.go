package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends for restaurant POS configuration.
const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
	StoreRedis  = "redis"
)

// Config настройки процесса, собранные из окружения и .env
type Config struct {
	HTTPAddr    string
	Env         string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string

	ConfigStore string
	ConfigFile  string

	VendorTimeout time.Duration

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddr string
}

// Load читает .env (если есть) и переменные окружения
func Load() Config {
	// missing .env is fine
	_ = godotenv.Load()

	return Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":9091"),
		Env:           envOr("GO_ENV", "development"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFormat:     envOr("LOG_FORMAT", "json"),
		CORSOrigins:   splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ConfigStore:   strings.ToLower(envOr("POS_CONFIG_STORE", StoreMemory)),
		ConfigFile:    strings.TrimSpace(os.Getenv("POS_CONFIG_FILE")),
		VendorTimeout: durationFromEnv("POS_HTTP_TIMEOUT", 15*time.Second),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        envOr("DB_HOST", "localhost"),
		DBPort:        envOr("DB_PORT", "3306"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     envOr("REDIS_ADDRESS", "localhost:6379"),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// bare number means seconds
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
