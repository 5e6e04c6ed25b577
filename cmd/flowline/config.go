package main

import (
	"fmt"
	"strings"

	"github.com/matsen/flowline/internal/config"
	"github.com/matsen/flowline/internal/layout"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  flowline config                         # Show effective config
  flowline config data                    # Get specific value
  flowline config data ~/timeline.json    # Set value
  flowline config log-level debug         # Set log level

Keys:
  data       Default timeline document (path or URL)
  log-level  Log level: debug, info, warn, or error

Values set here are written to the config file; FLOWLINE_DATA and
FLOWLINE_LOG_LEVEL still override them at run time.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path     string          `json:"path"`
	Data     string          `json:"data"`
	LogLevel string          `json:"log_level"`
	Viewport layout.Viewport `json:"viewport"`
	Layout   layout.Options  `json:"layout"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := effectiveConfigPath()

	if len(args) == 0 {
		resp := ConfigResponse{
			Path:     path,
			Data:     appConfig.Data,
			LogLevel: appConfig.LogLevel,
			Viewport: appConfig.EffectiveViewport(),
			Layout:   appConfig.Layout,
		}
		if humanOutput {
			vp := resp.Viewport
			outputHuman("path:       %s\n", resp.Path)
			outputHuman("data:       %s\n", resp.Data)
			outputHuman("log-level:  %s\n", resp.LogLevel)
			outputHuman("viewport:   %.0fx%.0f (margins %.0f %.0f %.0f %.0f)\n",
				vp.Width, vp.Height, vp.Margin.Top, vp.Margin.Right, vp.Margin.Bottom, vp.Margin.Left)
			return nil
		}
		return outputJSON(resp)
	}

	key := args[0]
	if len(args) == 1 {
		value, err := configValue(appConfig, key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			outputHuman("%s\n", value)
			return nil
		}
		return outputJSON(map[string]string{key: value})
	}

	// Write to the file as it stands on disk so env overrides are not persisted.
	cfg, err := config.ReadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "reading config: %v", err)
	}
	if err := setConfigValue(cfg, key, args[1]); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(exitCodeFor(err), "saving config: %v", err)
	}
	config.ResetGlobalConfigCache()

	if humanOutput {
		outputHuman("Set %s = %s\n", key, args[1])
		return nil
	}
	return outputJSON(map[string]string{"status": "updated", key: args[1]})
}

func effectiveConfigPath() string {
	if configPath != "" {
		return config.ExpandPath(configPath)
	}
	return config.GlobalConfigPath()
}

func configValue(cfg *config.GlobalConfig, key string) (string, error) {
	switch normalizeKey(key) {
	case "data":
		return cfg.Data, nil
	case "log-level":
		return cfg.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid: data, log-level)", key)
	}
}

func setConfigValue(cfg *config.GlobalConfig, key, value string) error {
	switch normalizeKey(key) {
	case "data":
		cfg.Data = value
	case "log-level":
		cfg.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key %q (valid: data, log-level)", key)
	}
	return nil
}

// normalizeKey accepts log_level and log-level alike.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}
