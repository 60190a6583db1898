package config

import (
	"fmt"
	"net/url"
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

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
		if cfg.Env.IsProduction() {
			add("DB_DRIVER", "sqlite is not allowed in production")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	}
	if cfg.PageSize < 1 {
		add("PAGE_SIZE", "must be at least 1")
	}
	if cfg.RecipeCreateLimit < 0 {
		add("RECIPE_CREATE_LIMIT", "must not be negative")
	}
	if u, err := url.Parse(cfg.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("PUBLIC_BASE_URL", "must be an absolute URL")
	}

	if cfg.Env.IsProduction() {
		if cfg.DBPassword == "" {
			add("DB_PASSWORD", "db_password secret is required in production")
		}
		if cfg.RedisURL == "" {
			add("REDIS_URL", "is required in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
