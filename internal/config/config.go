// Package config loads runtime configuration for the ultrathink server
// from the .ultrathink.yaml file and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the server and CLI.
type Config struct {
	// ServerName is the name the MCP server announces to clients.
	ServerName string

	// DisableThoughtLogging suppresses the formatted thought trace on stderr.
	DisableThoughtLogging bool

	// EventLogPath is where the append-only JSONL event log is written.
	// Empty disables event logging.
	EventLogPath string

	// LogLevel controls the structured logger ("debug", "info", "warn", "error").
	LogLevel string
}

// defaultConfig returns a Config populated with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		ServerName:            "ultrathink",
		DisableThoughtLogging: false,
		EventLogPath:          ".ultrathink_events.jsonl",
		LogLevel:              "info",
	}
}

// Load reads .ultrathink.yaml from basePath using Viper. If the file does
// not exist, defaults are returned. Environment variables override the file:
// ULTRATHINK_DISABLE_THOUGHT_LOGGING (or the legacy DISABLE_THOUGHT_LOGGING)
// set to "true" turns the thought trace off.
func Load(basePath string) (*Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName(".ultrathink")
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)

	v.SetDefault("server.name", cfg.ServerName)
	v.SetDefault("logging.disable_thought_logging", cfg.DisableThoughtLogging)
	v.SetDefault("logging.level", cfg.LogLevel)
	v.SetDefault("events.path", cfg.EventLogPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .ultrathink.yaml: %w", err)
		}
		// No config file found, keep defaults.
	}

	cfg.ServerName = v.GetString("server.name")
	cfg.DisableThoughtLogging = v.GetBool("logging.disable_thought_logging")
	cfg.LogLevel = v.GetString("logging.level")
	cfg.EventLogPath = v.GetString("events.path")

	if disabled, set := thoughtLoggingDisabledFromEnv(); set {
		cfg.DisableThoughtLogging = disabled
	}
	if level := os.Getenv("ULTRATHINK_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// thoughtLoggingDisabledFromEnv checks the environment override for the
// thought trace. The second return value reports whether an override was set.
func thoughtLoggingDisabledFromEnv() (bool, bool) {
	for _, key := range []string{"ULTRATHINK_DISABLE_THOUGHT_LOGGING", "DISABLE_THOUGHT_LOGGING"} {
		if val, ok := os.LookupEnv(key); ok {
			val = strings.ToLower(strings.TrimSpace(val))
			return val == "true" || val == "1", true
		}
	}
	return false, false
}

// validLogLevels is the set of levels the structured logger accepts.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for invalid field values.
func (c *Config) Validate() error {
	var errs []string

	if c.ServerName == "" {
		errs = append(errs, "server.name must not be empty")
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf(
			"logging.level %q is invalid, must be one of: debug, info, warn, error",
			c.LogLevel,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
