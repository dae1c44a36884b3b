package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/teamsteps/teamsteps/internal/storage"
)

// ErrMissingAdminToken is returned when ADMIN_TOKEN is not configured.
var ErrMissingAdminToken = errors.New("ADMIN_TOKEN environment variable is required")

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMinIO  = "minio"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     storage.MinIOConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	PublicURL    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AuthConfig struct {
	AdminToken string
}

type StorageConfig struct {
	Backend string
	DataDir string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	UsersKey string
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
// and rejects configurations the server cannot start with.
func LoadConfig() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration without requiring the admin token. Used by tools
// that talk to the store directly.
func Load() *Config {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("PORT", "3000")
	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("PUBLIC_URL", "http://localhost:3000")
	viper.SetDefault("STORAGE_BACKEND", BackendFile)
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("MONGODB_DATABASE", "teamsteps")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_USERS_KEY", "teamsteps:users")
	viper.SetDefault("MINIO_BUCKET", "teamsteps")
	viper.SetDefault("MINIO_OBJECT", "users.json")
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_USE_REDIS", false)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Server: ServerConfig{
			Port:         viper.GetString("PORT"),
			Host:         viper.GetString("HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			PublicURL:    strings.TrimRight(viper.GetString("PUBLIC_URL"), "/"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			AdminToken: strings.TrimSpace(viper.GetString("ADMIN_TOKEN")),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE_BACKEND"))),
			DataDir: viper.GetString("DATA_DIR"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			UsersKey: viper.GetString("REDIS_USERS_KEY"),
		},
		MinIO: storage.MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			Object:    viper.GetString("MINIO_OBJECT"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}
}

// Validate checks everything the server needs before it can start.
func (c *Config) Validate() error {
	if c.Auth.AdminToken == "" {
		return ErrMissingAdminToken
	}
	return c.ValidateStorage()
}

// ValidateStorage checks the selected backend has the settings it needs.
func (c *Config) ValidateStorage() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the %s backend", BackendFile)
		}
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the %s backend", BackendRedis)
		}
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for the %s backend", BackendMongo)
		}
	case BackendMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the %s backend", BackendMinIO)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}
