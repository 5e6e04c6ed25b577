// Package loader reads timeline documents from files, JSONL directories, or URLs.
//
// Any failure here is terminal for the whole visualization: callers get an
// error wrapping ErrLoad and no partial document.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/flowline/internal/graph"
	"gopkg.in/yaml.v3"
)

var (
	// ErrLoad marks a document that could not be read or decoded.
	ErrLoad = errors.New("loading timeline document")

	// ErrTooLarge is returned for fetched documents over the client's size limit.
	ErrTooLarge = errors.New("document too large")

	errTrailingData = errors.New("unexpected content after document")
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension; unknown extensions are JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a document in the given format. Unknown fields are rejected in
// JSON so that typos such as "enddate" surface instead of silently becoming "ongoing".
func Decode(data []byte, format Format) (*graph.Document, error) {
	var doc graph.Document

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: parsing YAML: %w", ErrLoad, err)
		}
		var extra yaml.Node
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: parsing YAML: %w", ErrLoad, errTrailingData)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: parsing JSON: %w", ErrLoad, err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: parsing JSON: %w", ErrLoad, errTrailingData)
		}
	}

	return &doc, nil
}

// ReadFile reads a JSON or YAML document, or a JSONL directory.
func ReadFile(path string) (*graph.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if info.IsDir() {
		return ReadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Decode(data, FormatForPath(path))
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads a document from a URL or a local path.
func Load(ctx context.Context, source string, client *Client) (*graph.Document, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: no data source given", ErrLoad)
	}
	if IsURL(source) {
		if client == nil {
			client = NewClient()
		}
		return client.Fetch(ctx, source)
	}
	return ReadFile(source)
}
