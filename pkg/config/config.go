// Package config provides unified configuration for the listd server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. .env file (if present)
//  3. YAML config file (discovered or explicitly specified)
//  4. Environment variable overrides (LISTD_ prefix, plus legacy names)
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Config holds all configuration for the listd server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	AI            AIConfig            `yaml:"ai"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 3000
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 120s
}

// StorageConfig holds state management settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	// Secret signs and verifies session tokens. Required unless
	// AllowDevSecret is set.
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret

	// AllowDevSecret generates a random per-process secret when none is
	// configured. Every restart invalidates all outstanding tokens, so
	// this is only useful for local development.
	AllowDevSecret bool `yaml:"allow_dev_secret"`

	TokenLifetime time.Duration `yaml:"token_lifetime"` // default: 168h (7 days)
	BcryptCost    int           `yaml:"bcrypt_cost"`    // default: 10
}

// AIConfig holds text-generation backend settings for the insight endpoints.
type AIConfig struct {
	Enabled bool          `yaml:"enabled"` // default: true
	URL     string        `yaml:"url"`     // default: "http://localhost:11434"
	Model   string        `yaml:"model"`   // default: "llama3.2:3b"
	Timeout time.Duration `yaml:"timeout"` // default: 60s
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds log level and debug category settings. Both can
// also be set through the LISTD_LOG_LEVEL and LISTD_DEBUG environment
// variables, which take precedence; see pkg/debug.
type LoggingConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma-separated debug categories
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         3000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:       25,
				MigrateOnStart: true,
			},
		},
		Auth: AuthConfig{
			TokenLifetime: 7 * 24 * time.Hour,
			BcryptCost:    10,
		},
		AI: AIConfig{
			Enabled: true,
			URL:     "http://localhost:11434",
			Model:   "llama3.2:3b",
			Timeout: 60 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Logging: LoggingConfig{
				Level: "INFO",
			},
		},
	}
}
