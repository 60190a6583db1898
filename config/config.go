package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment `mapstructure:"-"`

	// Server configuration
	ServerHost    string `mapstructure:"SERVER_HOST"`
	ServerPort    string `mapstructure:"SERVER_PORT"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	// Database configuration
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`

	// Redis configuration, empty disables caching and rate limiting
	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	PageSize          int    `mapstructure:"PAGE_SIZE"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	RecipeCreateLimit int    `mapstructure:"RECIPE_CREATE_LIMIT"`

	// Object storage for recipe images and avatars
	S3BucketName string `mapstructure:"S3_BUCKET_NAME"`
	AWSRegion    string `mapstructure:"AWS_REGION"`
	S3Endpoint   string `mapstructure:"S3_ENDPOINT"`
}

var defaults = map[string]interface{}{
	"SERVER_HOST":         "0.0.0.0",
	"SERVER_PORT":         "8080",
	"PUBLIC_BASE_URL":     "http://localhost:8080",
	"DB_DRIVER":           "postgres",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "",
	"DB_NAME":             "foodgram",
	"DB_SSL_MODE":         "disable",
	"SQLITE_PATH":         "foodgram.db",
	"REDIS_URL":           "",
	"JWT_SECRET":          "",
	"PAGE_SIZE":           6,
	"ALLOWED_ORIGINS":     "*",
	"LOG_LEVEL":           "info",
	"RECIPE_CREATE_LIMIT": 30,
	"S3_BUCKET_NAME":      "",
	"AWS_REGION":          "us-east-1",
	"S3_ENDPOINT":         "",
}

// secretKeys are read from docker secrets when the matching file exists.
var secretKeys = []string{"db_password", "jwt_secret", "redis_url", "db_user"}

// LoadConfig reads .env (if present), the environment and docker secrets,
// in increasing order of precedence.
func LoadConfig() (*Config, error) {
	env := CurrentEnvironment()
	if env.Local() {
		// a missing .env is fine
		_ = godotenv.Load()
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	for _, name := range secretKeys {
		if value := readSecret(name); value != "" {
			v.Set(strings.ToUpper(name), value)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Env = env

	if env.Local() && cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds a libpq style connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
