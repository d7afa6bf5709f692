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

// ValidationErrors collects every problem found in a Config
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

const minProductionSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	require("SERVER_PORT", cfg.ServerPort)
	require("JWT_SECRET", cfg.JWTSecret)

	switch cfg.DBDriver {
	case "postgres":
		require("DB_HOST", cfg.DBHost)
		require("DB_PORT", cfg.DBPort)
		require("DB_USER", cfg.DBUser)
		require("DB_NAME", cfg.DBName)
	case "sqlite":
		require("SQLITE_PATH", cfg.SQLitePath)
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.JWTTTL <= 0 {
		errs = append(errs, ValidationError{Field: "JWT_TTL", Message: "must be positive"})
	}

	if cfg.Environment == Production {
		require("DB_PASSWORD", cfg.DBPassword)
		if len(cfg.JWTSecret) < minProductionSecretLength {
			errs = append(errs, ValidationError{
				Field:   "JWT_SECRET",
				Message: fmt.Sprintf("must be at least %d characters in production", minProductionSecretLength),
			})
		}
	}

	if cfg.S3Endpoint != "" && cfg.S3Bucket == "" {
		errs = append(errs, ValidationError{Field: "S3_BUCKET_NAME", Message: "is required when S3_ENDPOINT is set"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
