package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// minProductionSecretLen is the shortest session secret accepted in production
const minProductionSecretLen = 32

// ValidateConfig checks the configuration against the requirements of env
// and reports every problem found at once.
func ValidateConfig(cfg *Config, env Environment) error {
	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for the sqlite driver"})
		}
	case "postgres":
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required for the postgres driver"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required for the postgres driver"})
		}
		if cfg.DBUser == "" {
			errs = append(errs, ValidationError{"db_user", "is required for the postgres driver"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.SessionStore {
	case SessionStoreCookie:
		if cfg.SessionSecret == "" {
			errs = append(errs, ValidationError{"session_secret", "is required for cookie sessions"})
		}
	case SessionStoreRedis:
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			errs = append(errs, ValidationError{"REDIS_URL", "is required for redis sessions"})
		}
	case SessionStoreMemory:
		if env == Production {
			errs = append(errs, ValidationError{"SESSION_STORE", "memory sessions are not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"SESSION_STORE", fmt.Sprintf("unsupported store %q", cfg.SessionStore)})
	}
	if env == Production && len(cfg.SessionSecret) < minProductionSecretLen {
		errs = append(errs, ValidationError{"session_secret", fmt.Sprintf("must be at least %d bytes in production", minProductionSecretLen)})
	}
	if cfg.SessionCookieName == "" {
		errs = append(errs, ValidationError{"SESSION_COOKIE_NAME", "is required"})
	}

	if cfg.RateLimitMaxRequests <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_MAX_REQUESTS", "must be positive"})
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_WINDOW", "must be positive"})
	}

	if cfg.LLMAPIKey == "" && env != Test && env != CI {
		errs = append(errs, ValidationError{"openai_api_key", "is required"})
	}
	if cfg.LLMRequestsPerSecond <= 0 {
		errs = append(errs, ValidationError{"OPENAI_REQUESTS_PER_SECOND", "must be positive"})
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, ValidationError{"LOG_FORMAT", fmt.Sprintf("unsupported format %q", cfg.LogFormat)})
	}

	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
}
