package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces the environment variables read by parseEnv, e.g.
// SHOPKEEPER_API_BASE_URL.
const EnvPrefix = "SHOPKEEPER"

// dotEnvFiles are loaded before the environment is read. Missing files are
// fine.
var dotEnvFiles = []string{".env"}

// parseEnv overlays cfg with SHOPKEEPER_* variables. Unset variables leave
// the current value alone.
func parseEnv(cfg *Config) error {
	for _, f := range dotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
