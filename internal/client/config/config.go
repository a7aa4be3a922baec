package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the shopkeeper CLI.
type Config struct {
	APIBaseURL         string        `split_words:"true" validate:"required,url"`
	DatabasePath       string        `split_words:"true" validate:"required"`
	RequestTimeout     time.Duration `split_words:"true" validate:"gt=0"`
	AuthPollInterval   time.Duration `split_words:"true" validate:"gte=0"`
	MergeGuestWishlist bool          `split_words:"true"`
	LogLevel           string        `split_words:"true" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat          string        `split_words:"true" validate:"omitempty,oneof=text json"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:4000/api"
	c.DatabasePath = "shopkeeper.db"
	c.RequestTimeout = 15 * time.Second
	c.AuthPollInterval = 300 * time.Millisecond
	c.MergeGuestWishlist = false
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, the config file named in args, the
// environment and finally the flags in args. args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load applied to the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
