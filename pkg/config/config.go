// Package config resolves sup's settings: the cache home, the
// registry to talk to, and optional registry aliases from a config
// file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// HomeEnv overrides the sup home directory (default ~/.sup).
	HomeEnv = "SUP_HOME"

	// Default config file path, relative to the working directory.
	DefaultConfigPath = ".config/sup.yml"
)

// Config holds file-backed settings. All fields are optional.
type Config struct {
	// DefaultRegistry is used when no --registry flag or environment
	// variable is set.
	DefaultRegistry string `mapstructure:"default_registry"`

	// Registries maps short aliases to registry paths or URLs.
	Registries map[string]string `mapstructure:"registries"`
}

// Load reads the config file at path. An empty path tries
// .config/sup.yml and then <home>/config.yml; a missing file yields an
// empty config, not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		candidate := findDefaultConfig()
		if candidate == "" {
			return &Config{}, nil
		}
		v.SetConfigFile(candidate)
	}

	if err := v.ReadInConfig(); err != nil {
		if path == "" && os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file: %s", v.ConfigFileUsed())
	}
	return &cfg, nil
}

func findDefaultConfig() string {
	candidates := []string{
		DefaultConfigPath,
		filepath.Join(Home(), "config.yml"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Home returns the sup home directory: $SUP_HOME, or ~/.sup.
func Home() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		// Fall back to a relative .sup so commands still work in
		// environments without a home directory.
		return ".sup"
	}
	return filepath.Join(userHome, ".sup")
}

// CacheDir returns the install cache root under the sup home.
func CacheDir() string {
	return filepath.Join(Home(), "cache")
}

// ResolveRegistry picks the registry to use: the flag value, then the
// SUP_REGISTRY and REGISTRY environment variables, then the config
// default. The result is run through the alias table.
func (c *Config) ResolveRegistry(flagValue string) string {
	source := flagValue
	if source == "" {
		source = os.Getenv("SUP_REGISTRY")
	}
	if source == "" {
		source = os.Getenv("REGISTRY")
	}
	if source == "" {
		source = c.DefaultRegistry
	}
	if resolved, ok := c.Registries[source]; ok {
		return resolved
	}
	return source
}
