// Package config provides configuration management for the otpkeys CLI
// using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. OTPKEYS_LOGGING_LEVEL.
const EnvPrefix = "OTPKEYS"

// Config holds all configuration for the CLI.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Display   DisplayConfig   `mapstructure:"display"`
	Migration MigrationConfig `mapstructure:"migration"`
	QR        QRConfig        `mapstructure:"qr"`
	TOTP      TOTPConfig      `mapstructure:"totp"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DisplayConfig controls how codes are printed.
type DisplayConfig struct {
	Grouped bool `mapstructure:"grouped"`
}

// MigrationConfig controls import of otpauth-migration payloads.
type MigrationConfig struct {
	SubstituteDefaults bool `mapstructure:"substitute_defaults"`
}

// QRConfig controls QR code rendering.
type QRConfig struct {
	Level string `mapstructure:"level"`
	Size  int    `mapstructure:"size"`
}

// TOTPConfig holds verification settings.
type TOTPConfig struct {
	Skew uint `mapstructure:"skew"`
}

// Load reads configuration from the given file, if any, and environment
// variables. An empty path searches for config.yaml in the working
// directory and $HOME/.config/otpkeys; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/otpkeys")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging.format must be 'console' or 'json', got %q", c.Logging.Format)
	}

	switch strings.ToLower(c.QR.Level) {
	case "low", "medium", "high", "highest":
	default:
		return fmt.Errorf("config: qr.level must be low, medium, high or highest, got %q", c.QR.Level)
	}

	if c.QR.Size <= 0 {
		return fmt.Errorf("config: qr.size must be positive, got %d", c.QR.Size)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	// Display defaults
	v.SetDefault("display.grouped", false)

	// Migration defaults
	v.SetDefault("migration.substitute_defaults", false)

	// QR defaults
	v.SetDefault("qr.level", "medium")
	v.SetDefault("qr.size", 256)

	// TOTP defaults
	v.SetDefault("totp.skew", 1)
}
