package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends understood by SessionConfig.Backend.
const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config aggregates runtime configuration for the client and the contract fake.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	FakeAPI FakeAPIConfig
}

// AppConfig identifies the build.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig points the gateway at the CityCare server.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
}

// SessionConfig selects where the session store lives.
type SessionConfig struct {
	Backend  string
	FilePath string
}

// RedisConfig holds Redis connection values for the redis session backend.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// FakeAPIConfig configures the in-memory contract server.
type FakeAPIConfig struct {
	Host                   string
	Port                   string
	JWTSecret              string
	AccessTokenTTLMinutes  int
	RefreshTokenTTLMinutes int
	BcryptCost             int
	AdminEmail             string
	AdminPassword          string
	SeedDemo               bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "citycare"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:               getEnv("CITYCARE_API_BASE", "http://localhost:8000/api/"),
			RequestTimeoutSeconds: getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Session: SessionConfig{
			Backend:  strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendFile)),
			FilePath: getEnv("SESSION_FILE", defaultSessionFile()),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "citycare:session:"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		FakeAPI: FakeAPIConfig{
			Host:                   getEnv("FAKEAPI_HOST", "127.0.0.1"),
			Port:                   getEnv("FAKEAPI_PORT", "8000"),
			JWTSecret:              getEnv("FAKEAPI_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:  getEnvAsInt("FAKEAPI_ACCESS_TTL_MINUTES", 60),
			RefreshTokenTTLMinutes: getEnvAsInt("FAKEAPI_REFRESH_TTL_MINUTES", 60*24),
			BcryptCost:             getEnvAsInt("FAKEAPI_BCRYPT_COST", 10),
			AdminEmail:             getEnv("FAKEAPI_ADMIN_EMAIL", "admin@citycare.local"),
			AdminPassword:          getEnv("FAKEAPI_ADMIN_PASSWORD", "admin123"),
			SeedDemo:               getEnvAsBool("FAKEAPI_SEED_DEMO", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CITYCARE_API_BASE must be an absolute URL, got %q", c.API.BaseURL)
	}

	switch c.Session.Backend {
	case SessionBackendFile:
		if strings.TrimSpace(c.Session.FilePath) == "" {
			return fmt.Errorf("SESSION_FILE cannot be empty")
		}
	case SessionBackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
	case SessionBackendMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}

	if c.API.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("API_REQUEST_TIMEOUT_SECONDS must not be negative")
	}
	return nil
}

// RequestTimeout returns the per-call timeout, zero meaning none.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Addr returns the contract fake's bind address.
func (f FakeAPIConfig) Addr() string {
	return fmt.Sprintf("%s:%s", f.Host, f.Port)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".citycare", "session.json")
	}
	return filepath.Join(home, ".citycare", "session.json")
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
