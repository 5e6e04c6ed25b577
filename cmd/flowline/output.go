package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matsen/flowline/internal/config"
	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/loader"
)

// Constants for human output.
const (
	BarCells     = 40 // width of the timeline bar column
	NameMaxLen   = 32 // truncation length for project names in tables
	SkillsMaxLen = 40 // truncation length for skill lists in tables
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeFor maps an error to the exit code reported for it.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrNoDataSource):
		return ExitConfigError
	case errors.Is(err, loader.ErrLoad), errors.Is(err, graph.ErrInvalidDocument):
		return ExitDataError
	default:
		return ExitError
	}
}

// truncateString shortens s to max runes, adding an ellipsis when cut.
func truncateString(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// ErrorResponse is the JSON body written for failed commands.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WrittenResponse reports a file written by a command.
type WrittenResponse struct {
	Output string `json:"output"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}
