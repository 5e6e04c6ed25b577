// Package config handles flowline's global configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/matsen/flowline/internal/layout"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/flowline/config.yml.
type GlobalConfig struct {
	Data     string           `yaml:"data,omitempty" json:"data,omitempty"`
	LogLevel string           `yaml:"log_level,omitempty" json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Viewport *layout.Viewport `yaml:"viewport,omitempty" json:"viewport,omitempty"`
	Layout   layout.Options   `yaml:"layout,omitempty" json:"layout"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "flowline"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// EnvData overrides the configured data source.
	EnvData = "FLOWLINE_DATA"
	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "FLOWLINE_LOG_LEVEL"
)

// ErrInvalidConfig is returned when a config file cannot be parsed or fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrNoDataSource is returned when neither an argument, the environment, nor
// the config file names a timeline document.
var ErrNoDataSource = errors.New("no data source configured")

var validate = validator.New()

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/flowline/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns a config holding only environment overrides if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := load(GlobalConfigPath(), false)
	if err != nil {
		return nil, err
	}

	globalConfigCache = cfg
	return cfg, nil
}

// LoadFile loads configuration from an explicit path. Unlike the global
// file, an explicit path must exist.
func LoadFile(path string) (*GlobalConfig, error) {
	return load(ExpandPath(path), true)
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

func load(path string, mustExist bool) (*GlobalConfig, error) {
	cfg, err := readFile(path, mustExist)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if cfg.Data != "" && !strings.Contains(cfg.Data, "://") {
		cfg.Data = ExpandPath(cfg.Data)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile parses a config file as written, without environment overrides or
// validation. A missing file yields an empty config.
func ReadFile(path string) (*GlobalConfig, error) {
	return readFile(path, false)
}

func readFile(path string, mustExist bool) (*GlobalConfig, error) {
	cfg := &GlobalConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Save validates the config and writes it to path, creating parent directories.
func (c *GlobalConfig) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnv lets environment variables (including those from .env) override the file.
func (c *GlobalConfig) applyEnv() {
	if v := os.Getenv(EnvData); v != "" {
		c.Data = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate checks field ranges and the layout clamp ordering.
func (c *GlobalConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q check", ErrInvalidConfig, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// EffectiveViewport returns the configured viewport, or the default one.
func (c *GlobalConfig) EffectiveViewport() layout.Viewport {
	if c.Viewport == nil {
		return layout.DefaultViewport()
	}
	return *c.Viewport
}

// ResolveDataSource picks the timeline document: an explicit argument wins,
// then FLOWLINE_DATA, then the config file.
func (c *GlobalConfig) ResolveDataSource(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if c.Data != "" {
		return c.Data, nil
	}
	return "", ErrNoDataSource
}

// ParseLogLevel converts a level name to a slog level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
	return level, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// HelpfulConfigMessage returns a hint for setting a default data source.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No timeline document given.

Tip: pass a path or URL, set %s, or create %s:
  mkdir -p %s
  echo 'data: /path/to/timeline.json' > %s`,
		EnvData,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
