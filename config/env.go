package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment. CI=true wins over ENV.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// ParseEnvironment maps a free-form value onto a known environment,
// falling back to Development.
func ParseEnvironment(value string) Environment {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// UsesSecrets reports whether sensitive values come from Docker secrets
// rather than plain environment variables.
func (e Environment) UsesSecrets() bool {
	return e == Production
}

// Verbose reports whether development-style logging should be used.
func (e Environment) Verbose() bool {
	return e == Development || e == Test
}

func (e Environment) String() string {
	return string(e)
}
