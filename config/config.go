package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `koanf:"discord_token"`
	DiscordGuildID string `koanf:"discord_guild_id"`

	// Database configuration
	DatabaseURL string `koanf:"database_url"`

	// Challenge configuration
	// DefaultTimezone is used for channels without a configured timezone.
	DefaultTimezone string `koanf:"default_timezone"`

	// Metrics endpoint listen address, e.g. ":9090". Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`

	// Environment is "development", "production" or "test"
	Environment string `koanf:"environment"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load layers configuration sources, lowest to highest precedence:
//  1. defaults
//  2. YAML file named by CIRCLER_CONFIG, if set
//  3. environment variables (DISCORD_TOKEN, DATABASE_URL, ...)
func load() (*Config, error) {
	config := &Config{
		DefaultTimezone: "Europe/London",
		Environment:     "development",
	}

	k := koanf.New(".")

	if path := os.Getenv("CIRCLER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Environment variables map directly onto koanf keys:
	// DISCORD_TOKEN -> discord_token, DEFAULT_TIMEZONE -> default_timezone, ...
	envProvider := env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	// An invalid default timezone would corrupt day-key computation for
	// every unconfigured channel, so it blocks startup.
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE %q is not a valid IANA timezone: %w", c.DefaultTimezone, err)
	}

	if c.Environment != "test" {
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN is required")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	}

	return nil
}
