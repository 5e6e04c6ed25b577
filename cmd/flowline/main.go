// Package main provides the flowline CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/flowline/internal/config"
	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/loader"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	logLevel    string
)

// appConfig is the effective configuration, loaded before every command runs.
var appConfig = &config.GlobalConfig{}

// logger writes structured diagnostics to stderr; stdout carries command output.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flowline",
	Short: "Timeline layout for connected projects",
	Long: `flowline lays out a project timeline: projects become bars positioned by
start and end date and stacked by size category, and weighted connections
between projects become curves whose stroke width follows their strength.

Documents are JSON or YAML files, a directory holding projects.jsonl and
connections.jsonl, or an http(s) URL. The source argument may be omitted when
FLOWLINE_DATA or the "data" key of the global config names one.

All commands output JSON by default; pass --human for terminal output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/flowline/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, or error")
	rootCmd.Version = Version
}

// setup loads .env, the config file, and the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	appConfig = mustLoadConfig()

	level := appConfig.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	return nil
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.GlobalConfig {
	var (
		cfg *config.GlobalConfig
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadGlobalConfig()
	}
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// sourceArg returns the optional source argument at position i.
func sourceArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// loadDocument resolves and loads a timeline document without normalizing it.
func loadDocument(ctx context.Context, arg string) (*graph.Document, error) {
	source, err := appConfig.ResolveDataSource(arg)
	if err != nil {
		return nil, err
	}

	logger.Debug("loading timeline", "source", source)
	return loader.Load(ctx, source, loader.NewClient())
}

// loadGraph resolves, loads, and normalizes a timeline document.
func loadGraph(ctx context.Context, arg string) (*graph.Graph, error) {
	doc, err := loadDocument(ctx, arg)
	if err != nil {
		return nil, err
	}
	return normalizeDocument(doc)
}

func normalizeDocument(doc *graph.Document) (*graph.Graph, error) {
	g, err := graph.Normalize(doc, graph.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	logger.Debug("normalized timeline",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"dropped", len(g.Dropped),
		"diagnostics", len(g.Diagnostics))
	return g, nil
}

// mustLoadGraph is loadGraph for commands, exiting with the mapped code on error.
func mustLoadGraph(cmd *cobra.Command, arg string) *graph.Graph {
	g, err := loadGraph(cmd.Context(), arg)
	if err != nil {
		if humanOutput && exitCodeFor(err) == ExitConfigError {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		}
		exitWithError(exitCodeFor(err), "%v", err)
	}
	return g
}
