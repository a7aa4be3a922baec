package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
	"gopkg.in/yaml.v3"
)

// Duration decodes either a Go duration string ("300ms") or integer
// nanoseconds from JSON and YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case int:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

// fileConfig mirrors Config for decoding. Pointers tell "absent" apart from
// zero values so that a partial file only overrides what it names.
type fileConfig struct {
	APIBaseURL         *string   `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath       *string   `json:"database_path" yaml:"database_path"`
	RequestTimeout     *Duration `json:"request_timeout" yaml:"request_timeout"`
	AuthPollInterval   *Duration `json:"auth_poll_interval" yaml:"auth_poll_interval"`
	MergeGuestWishlist *bool     `json:"merge_guest_wishlist" yaml:"merge_guest_wishlist"`
	LogLevel           *string   `json:"log_level" yaml:"log_level"`
	LogFormat          *string   `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file selected by -c/-config. No flag means
// nothing to do.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.DatabasePath != nil {
		cfg.DatabasePath = *fc.DatabasePath
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.AuthPollInterval != nil {
		cfg.AuthPollInterval = fc.AuthPollInterval.Duration
	}
	if fc.MergeGuestWishlist != nil {
		cfg.MergeGuestWishlist = *fc.MergeGuestWishlist
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
}
