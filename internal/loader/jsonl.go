package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/flowline/internal/edge"
	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/project"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// File names used by a JSONL document directory.
const (
	ProjectsFile    = "projects.jsonl"
	ConnectionsFile = "connections.jsonl"
)

// readJSONL decodes one T per non-empty line of path.
func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []T
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", filepath.Base(path), lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	return items, nil
}

// ReadDir reads a document split over projects.jsonl and an optional connections.jsonl.
func ReadDir(dir string) (*graph.Document, error) {
	projects, err := readJSONL[project.Record](filepath.Join(dir, ProjectsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	connections, err := readJSONL[edge.Connection](filepath.Join(dir, ConnectionsFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return &graph.Document{Projects: projects, Connections: connections}, nil
}

// WriteDir writes doc as projects.jsonl and connections.jsonl under dir, replacing existing content.
func WriteDir(dir string, doc *graph.Document) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := writeJSONL(filepath.Join(dir, ProjectsFile), doc.Projects); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(dir, ConnectionsFile), doc.Connections)
}

func writeJSONL[T any](path string, items []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding item %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing item %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
