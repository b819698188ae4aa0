package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole gateway configuration, populated from environment variables.
type Config struct {
	App       AppConfig
	Backend   BackendConfig
	WebSocket WebSocketConfig
	Notify    NotifyConfig
	Redis     RedisConfig
}

type AppConfig struct {
	Name           string
	Environment    string // development, staging, production
	Port           string
	Version        string
	LogLevel       string
	AllowedOrigins []string
}

// BackendConfig points at the gRPC library service.
type BackendConfig struct {
	Host        string
	Port        string
	CallTimeout time.Duration // 0 = no per-call deadline
	AdminID     int64         // forwarded on admin mutations
}

type WebSocketConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
}

type NotifyConfig struct {
	// Timeout bounds the background lookup + push that follows an approve/reject.
	Timeout time.Duration
}

type RedisConfig struct {
	Enabled       bool
	Host          string
	Password      string
	DB            int
	NotifyChannel string
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Library API Gateway"),
			Environment:    getEnv("APP_ENV", "development"),
			Port:           getEnv("PORT", "8001"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
		},
		Backend: BackendConfig{
			Host:        getEnv("GRPC_SERVER_HOST", "localhost"),
			Port:        getEnv("GRPC_SERVER_PORT", "50051"),
			CallTimeout: getEnvMillis("GRPC_CALL_TIMEOUT_MS", 0),
			AdminID:     int64(getEnvInt("ADMIN_ID", 1)),
		},
		WebSocket: WebSocketConfig{
			WriteTimeout: getEnvMillis("WS_WRITE_TIMEOUT_MS", 5000),
			PingInterval: getEnvMillis("WS_PING_INTERVAL_MS", 30000),
		},
		Notify: NotifyConfig{
			Timeout: getEnvMillis("NOTIFY_TIMEOUT_MS", 10000),
		},
		Redis: RedisConfig{
			Enabled:       getEnvBool("REDIS_ENABLED", false),
			Host:          getEnv("REDIS_HOST", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			NotifyChannel: getEnv("REDIS_NOTIFY_CHANNEL", "library:notifications"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.App.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.App.Port)
	}
	if c.Backend.Host == "" {
		return fmt.Errorf("GRPC_SERVER_HOST must be set")
	}
	if _, err := strconv.Atoi(c.Backend.Port); err != nil {
		return fmt.Errorf("GRPC_SERVER_PORT must be numeric, got %q", c.Backend.Port)
	}
	if c.Backend.CallTimeout < 0 || c.WebSocket.WriteTimeout < 0 || c.Notify.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("WS_PING_INTERVAL_MS must be positive")
	}
	if c.Redis.Enabled && c.Redis.NotifyChannel == "" {
		return fmt.Errorf("REDIS_NOTIFY_CHANNEL must be set when REDIS_ENABLED")
	}

	return nil
}

// BackendAddress is host:port of the gRPC backend.
func (c *Config) BackendAddress() string {
	return c.Backend.Host + ":" + c.Backend.Port
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvMillis(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMillis)) * time.Millisecond
}
