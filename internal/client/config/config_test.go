package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// noDotEnv keeps a stray .env in the package directory out of the tests.
func noDotEnv(t *testing.T) {
	t.Helper()
	orig := dotEnvFiles
	dotEnvFiles = nil
	t.Cleanup(func() { dotEnvFiles = orig })
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:4000/api", c.APIBaseURL)
	assert.Equal(t, "shopkeeper.db", c.DatabasePath)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 300*time.Millisecond, c.AuthPollInterval)
	assert.False(t, c.MergeGuestWishlist)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	require.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	noDotEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	want := defaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "https://api.example.com/api", "-d", "/tmp/s.db", "-t", "5s", "-p", "0", "-w"},
			want: func(c *Config) {
				c.APIBaseURL = "https://api.example.com/api"
				c.DatabasePath = "/tmp/s.db"
				c.RequestTimeout = 5 * time.Second
				c.AuthPollInterval = 0
				c.MergeGuestWishlist = true
			},
		},
		{
			name: "unknown flags ignored",
			args: []string{"-x", "1", "-t=2s"},
			want: func(c *Config) { c.RequestTimeout = 2 * time.Second },
		},
		{
			name:    "bad duration",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(&cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.want(&want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestParseFile_JSON(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"api_base_url": "https://shop.example/api",
		"request_timeout": "3s",
		"auth_poll_interval": 1000000,
		"merge_guest_wishlist": true
	}`)

	cfg := defaults()
	require.NoError(t, parseFile(&cfg, []string{"-c", path}))

	assert.Equal(t, "https://shop.example/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Millisecond, cfg.AuthPollInterval)
	assert.True(t, cfg.MergeGuestWishlist)
	assert.Equal(t, "shopkeeper.db", cfg.DatabasePath, "fields absent from the file keep their value")
}

func TestParseFile_YAML(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "database_path: /var/lib/shop.db\nauth_poll_interval: 0s\nlog_format: json\n")

	cfg := defaults()
	require.NoError(t, parseFile(&cfg, []string{"-config", path}))

	assert.Equal(t, "/var/lib/shop.db", cfg.DatabasePath)
	assert.Equal(t, time.Duration(0), cfg.AuthPollInterval)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://localhost:4000/api", cfg.APIBaseURL)
}

func TestParseFile_Errors(t *testing.T) {
	t.Run("no flag is a no-op", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseFile(&cfg, []string{"-a", "x"}))
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := defaults()
		require.Error(t, parseFile(&cfg, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{ this is not valid json`)
		cfg := defaults()
		require.Error(t, parseFile(&cfg, []string{"-c", path}))
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeFile(t, "bad.yml", "request_timeout: soon\n")
		cfg := defaults()
		require.Error(t, parseFile(&cfg, []string{"-c", path}))
	})
}

func TestParseEnv(t *testing.T) {
	noDotEnv(t)
	t.Setenv("SHOPKEEPER_API_BASE_URL", "https://env.example/api")
	t.Setenv("SHOPKEEPER_AUTH_POLL_INTERVAL", "1s")
	t.Setenv("SHOPKEEPER_MERGE_GUEST_WISHLIST", "true")

	cfg := defaults()
	require.NoError(t, parseEnv(&cfg))

	assert.Equal(t, "https://env.example/api", cfg.APIBaseURL)
	assert.Equal(t, time.Second, cfg.AuthPollInterval)
	assert.True(t, cfg.MergeGuestWishlist)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "SHOPKEEPER_DATABASE_PATH=/from/dotenv.db\n")
	orig := dotEnvFiles
	dotEnvFiles = []string{path}
	t.Cleanup(func() {
		dotEnvFiles = orig
		_ = os.Unsetenv("SHOPKEEPER_DATABASE_PATH")
	})

	cfg := defaults()
	require.NoError(t, parseEnv(&cfg))
	assert.Equal(t, "/from/dotenv.db", cfg.DatabasePath)
}

func TestParseEnv_BadValue(t *testing.T) {
	noDotEnv(t)
	t.Setenv("SHOPKEEPER_REQUEST_TIMEOUT", "forever")

	cfg := defaults()
	require.Error(t, parseEnv(&cfg))
}

func TestLoad_Precedence(t *testing.T) {
	noDotEnv(t)
	path := writeFile(t, "cfg.json", `{"api_base_url": "https://file.example/api", "database_path": "file.db", "request_timeout": "7s"}`)
	t.Setenv("SHOPKEEPER_DATABASE_PATH", "env.db")

	cfg, err := Load([]string{"-c", path, "-t", "9s"})
	require.NoError(t, err)

	assert.Equal(t, "https://file.example/api", cfg.APIBaseURL, "file overrides default")
	assert.Equal(t, "env.db", cfg.DatabasePath, "env overrides file")
	assert.Equal(t, 9*time.Second, cfg.RequestTimeout, "flag overrides file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"relative url", func(c *Config) { c.APIBaseURL = "not a url" }},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative poll", func(c *Config) { c.AuthPollInterval = -time.Second }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(&c)
			require.Error(t, c.Validate())
		})
	}

	_, err := Load([]string{"-a", "::"})
	require.Error(t, err)
}
