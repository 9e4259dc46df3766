package config

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// auth.secret is required. Refusing to start beats silently signing
	// tokens with a well-known default.
	if c.Auth.Secret == "" {
		errs = append(errs, fmt.Errorf("auth.secret is required (or set auth.allow_dev_secret for local development)"))
	}

	if c.Auth.TokenLifetime <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_lifetime must be > 0, got %v", c.Auth.TokenLifetime))
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// ai.url is required when the insight endpoints are enabled.
	if c.AI.Enabled && c.AI.URL == "" {
		errs = append(errs, fmt.Errorf("ai.url is required when ai.enabled is true"))
	}

	return errors.Join(errs...)
}
