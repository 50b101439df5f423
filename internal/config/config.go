// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/curioplatform/curio-cli/internal/hostutil"
)

// DefaultPublicRoutes are the routes viewable without a session. Membership is
// deliberately configuration, not hard-coded path matching; deployments extend
// it via the public_routes config key.
var DefaultPublicRoutes = []string{"home", "login", "notices"}

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL string `json:"base_url"`

	// ProfileDir is where the browser-profile state (cookie jar) lives.
	ProfileDir string `json:"profile_dir"`

	// PublicRoutes are viewable while unauthenticated: no bootstrap gate,
	// no forced redirect to login on refresh exhaustion.
	PublicRoutes []string `json:"public_routes"`

	// Output settings
	Format string `json:"format"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL    string
	ProfileDir string
	Format     string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseURL:      "https://api.curio.gallery",
		ProfileDir:   GlobalConfigDir(),
		PublicRoutes: append([]string(nil), DefaultPublicRoutes...),
		Format:       "auto",
		Sources:      make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, systemConfigPath(), SourceSystem)
	loadFromFile(cfg, globalConfigPath(), SourceGlobal)
	loadFromFile(cfg, localConfigPath(), SourceLocal)

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	if err := hostutil.RequireSecureURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	// base_url controls where credentials are sent; a config file in the
	// working directory must not be able to redirect authenticated traffic.
	if v, ok := fileCfg["base_url"].(string); ok && v != "" {
		if source == SourceLocal {
			fmt.Fprintf(os.Stderr, "warning: ignoring base_url %q from local config at %s\n", v, path)
		} else {
			cfg.BaseURL = NormalizeBaseURL(hostutil.Normalize(v))
			cfg.Sources["base_url"] = string(source)
		}
	}
	if v, ok := fileCfg["profile_dir"].(string); ok && v != "" {
		cfg.ProfileDir = v
		cfg.Sources["profile_dir"] = string(source)
	}
	if v, ok := fileCfg["format"].(string); ok && v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(source)
	}
	if v, ok := fileCfg["public_routes"].([]any); ok {
		var routes []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				routes = append(routes, s)
			}
		}
		if len(routes) > 0 {
			cfg.PublicRoutes = routes
			cfg.Sources["public_routes"] = string(source)
		}
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CURIO_BASE_URL"); v != "" {
		cfg.BaseURL = NormalizeBaseURL(hostutil.Normalize(v))
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("CURIO_PROFILE_DIR"); v != "" {
		cfg.ProfileDir = v
		cfg.Sources["profile_dir"] = string(SourceEnv)
	}
	if v := os.Getenv("CURIO_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
	if v := os.Getenv("CURIO_PUBLIC_ROUTES"); v != "" {
		var routes []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				routes = append(routes, s)
			}
		}
		if len(routes) > 0 {
			cfg.PublicRoutes = routes
			cfg.Sources["public_routes"] = string(SourceEnv)
		}
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = NormalizeBaseURL(hostutil.Normalize(o.BaseURL))
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if o.ProfileDir != "" {
		cfg.ProfileDir = o.ProfileDir
		cfg.Sources["profile_dir"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// IsPublicRoute reports whether the named route is on the public allow-list.
func (cfg *Config) IsPublicRoute(route string) bool {
	for _, r := range cfg.PublicRoutes {
		if r == route {
			return true
		}
	}
	return false
}

// Path helpers

func systemConfigPath() string {
	return "/etc/curio/config.json"
}

func globalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.json")
}

func localConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ".curio", "config.json")
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "curio")
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
