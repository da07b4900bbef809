package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session store kinds
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort     string   `yaml:"server_port"`
	ServerHost     string   `yaml:"server_host"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Database configuration
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`
	SQLitePath string `yaml:"sqlite_path"`

	// Redis configuration
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisURL      string `yaml:"redis_url"`

	// Session configuration
	SessionStore      string        `yaml:"session_store"`
	SessionSecret     string        `yaml:"session_secret"`
	SessionCookieName string        `yaml:"session_cookie_name"`
	SessionTTL        time.Duration `yaml:"session_ttl"`

	// Request quota for recipe generation
	RateLimitMaxRequests int           `yaml:"rate_limit_max_requests"`
	RateLimitWindow      time.Duration `yaml:"rate_limit_window"`

	// LLM configuration
	LLMAPIKey            string  `yaml:"llm_api_key"`
	LLMBaseURL           string  `yaml:"llm_base_url"`
	LLMModel             string  `yaml:"llm_model"`
	LLMRequestsPerSecond float64 `yaml:"llm_requests_per_second"`

	// Raw model output archive (optional)
	S3BucketName string `yaml:"s3_bucket_name"`
	AWSRegion    string `yaml:"aws_region"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns a Config populated with development defaults
func Default() *Config {
	return &Config{
		ServerPort:           "3001",
		ServerHost:           "0.0.0.0",
		AllowedOrigins:       []string{"http://localhost:5173"},
		DBDriver:             "sqlite",
		DBHost:               "localhost",
		DBPort:               "5432",
		DBSSLMode:            "disable",
		SQLitePath:           "what_to_cook.db",
		RedisHost:            "localhost",
		RedisPort:            "6379",
		SessionStore:         SessionStoreCookie,
		SessionCookieName:    "_what_to_cook_session",
		SessionTTL:           24 * time.Hour,
		RateLimitMaxRequests: 5,
		RateLimitWindow:      time.Hour,
		LLMModel:             "gpt-3.5-turbo",
		LLMRequestsPerSecond: 2,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file (CONFIG_FILE),
// environment variables and Docker secrets, then validates it.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg, env); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadCIConfig reads everything from environment variables.
func loadCIConfig(cfg *Config) {
	applyEnv(cfg)
	cfg.DBPassword = envOr("TEST_DB_PASSWORD", cfg.DBPassword)
	cfg.SessionSecret = envOr("TEST_SESSION_SECRET", cfg.SessionSecret)
}

// loadDevConfig reads environment variables and falls back to Docker secrets
// for anything sensitive that is still unset.
func loadDevConfig(cfg *Config) {
	applyEnv(cfg)
	fillFromSecrets(cfg)
}

// loadProdConfig takes sensitive values from Docker secrets only.
func loadProdConfig(cfg *Config) error {
	applyEnv(cfg)
	cfg.DBPassword = ""
	cfg.RedisPassword = ""
	cfg.SessionSecret = ""
	cfg.LLMAPIKey = ""
	fillFromSecrets(cfg)
	if cfg.SessionSecret == "" {
		return fmt.Errorf("session_secret secret is required")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = envOr("SERVER_PORT", cfg.ServerPort)
	cfg.ServerHost = envOr("SERVER_HOST", cfg.ServerHost)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	cfg.DBDriver = envOr("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = envOr("DB_HOST", cfg.DBHost)
	cfg.DBPort = envOr("DB_PORT", cfg.DBPort)
	cfg.DBUser = envOr("DB_USER", cfg.DBUser)
	cfg.DBPassword = envOr("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = envOr("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = envOr("DB_SSL_MODE", cfg.DBSSLMode)
	cfg.SQLitePath = envOr("SQLITE_PATH", cfg.SQLitePath)

	cfg.RedisHost = envOr("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = envOr("REDIS_PORT", cfg.RedisPort)
	cfg.RedisPassword = envOr("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisURL = envOr("REDIS_URL", cfg.RedisURL)

	cfg.SessionStore = strings.ToLower(envOr("SESSION_STORE", cfg.SessionStore))
	cfg.SessionSecret = envOr("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionCookieName = envOr("SESSION_COOKIE_NAME", cfg.SessionCookieName)
	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)

	cfg.RateLimitMaxRequests = envInt("RATE_LIMIT_MAX_REQUESTS", cfg.RateLimitMaxRequests)
	cfg.RateLimitWindow = envDuration("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)

	cfg.LLMAPIKey = envOr("OPENAI_API_KEY", cfg.LLMAPIKey)
	cfg.LLMBaseURL = envOr("OPENAI_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMModel = envOr("OPENAI_MODEL", cfg.LLMModel)
	cfg.LLMRequestsPerSecond = envFloat("OPENAI_REQUESTS_PER_SECOND", cfg.LLMRequestsPerSecond)

	cfg.S3BucketName = envOr("S3_BUCKET_NAME", cfg.S3BucketName)
	cfg.AWSRegion = envOr("AWS_REGION", cfg.AWSRegion)

	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
}

func fillFromSecrets(cfg *Config) {
	secrets := map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"redis_password": &cfg.RedisPassword,
		"redis_url":      &cfg.RedisURL,
		"session_secret": &cfg.SessionSecret,
		"openai_api_key": &cfg.LLMAPIKey,
	}
	for name, dst := range secrets {
		if *dst != "" {
			continue
		}
		*dst = readSecret(name)
	}
}

// DSN returns the connection string for the configured database driver
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
