package config

import (
	"os"
	"strings"
)

// Environment selects local conveniences and how strictly the
// configuration is validated.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// CurrentEnvironment reads APP_ENV, falling back to ENV. CI=true overrides
// both.
func CurrentEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	name := os.Getenv("APP_ENV")
	if name == "" {
		name = os.Getenv("ENV")
	}
	return ParseEnvironment(name)
}

// ParseEnvironment accepts the full names and the usual short forms.
// Anything unrecognised is development.
func ParseEnvironment(name string) Environment {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test", "testing":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// Local is true where a .env file and a throwaway JWT secret are acceptable.
func (e Environment) Local() bool {
	return e == Development || e == Test
}

func (e Environment) IsProduction() bool {
	return e == Production
}
