package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matsen/flowline/internal/edge"
	"github.com/matsen/flowline/internal/graph"
	"github.com/matsen/flowline/internal/project"
)

const sampleJSON = `{
  "projects": [
    {"id": "a", "name": "Alpha", "startDate": "2023-01-01", "endDate": "2023-02-01",
     "duration": 31, "category": "M", "phase": 1, "skills": ["go"]},
    {"id": "b", "name": "Beta", "startDate": "2023-01-15", "duration": "ongoing", "category": "L", "phase": 2}
  ],
  "connections": [
    {"source": "a", "target": "b", "value": 20}
  ]
}`

const sampleYAML = `projects:
  - id: a
    name: Alpha
    startDate: 2023-01-01
    endDate: 2023-02-01
    duration: 31
    category: M
  - id: b
    name: Beta
    startDate: "2023-01-15"
    category: L
connections:
  - source: a
    target: b
    value: 20
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestReadFile_JSON(t *testing.T) {
	doc, err := ReadFile(writeFile(t, "data.json", sampleJSON))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if len(doc.Projects) != 2 || len(doc.Connections) != 1 {
		t.Fatalf("got %d projects and %d connections, want 2 and 1", len(doc.Projects), len(doc.Connections))
	}
	if doc.Projects[0].Duration != "31" || doc.Projects[1].Duration != "ongoing" {
		t.Errorf("durations = %q, %q, want 31 and ongoing", doc.Projects[0].Duration, doc.Projects[1].Duration)
	}
	if doc.Projects[1].EndDate != "" {
		t.Errorf("EndDate = %q, want empty", doc.Projects[1].EndDate)
	}
	if want := (edge.Connection{Source: "a", Target: "b", Value: 20}); doc.Connections[0] != want {
		t.Errorf("Connections[0] = %+v, want %+v", doc.Connections[0], want)
	}
}

func TestReadFile_YAML(t *testing.T) {
	doc, err := ReadFile(writeFile(t, "data.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if len(doc.Projects) != 2 || len(doc.Connections) != 1 {
		t.Fatalf("got %d projects and %d connections, want 2 and 1", len(doc.Projects), len(doc.Connections))
	}
	a := doc.Projects[0]
	if a.StartDate != "2023-01-01" || a.EndDate != "2023-02-01" || a.Duration != "31" {
		t.Errorf("project a = %+v", a)
	}
}

func TestReadFile_ConnectionsOptional(t *testing.T) {
	doc, err := ReadFile(writeFile(t, "data.json", `{"projects": []}`))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(doc.Projects) != 0 || len(doc.Connections) != 0 {
		t.Errorf("got %+v, want an empty document", doc)
	}
}

func TestReadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"malformed JSON", "bad.json", `{"projects": [`},
		{"unknown field", "typo.json", `{"projects": [{"id": "a", "name": "A", "startDate": "2023-01-01", "enddate": "2023-02-01"}]}`},
		{"wrong type", "type.json", `{"projects": {"id": "a"}}`},
		{"trailing garbage", "trail.json", `{"projects": []} garbage`},
		{"second JSON value", "two.json", `{"projects": []} {"projects": []}`},
		{"stray brace", "brace.json", `{"projects": []}}`},
		{"malformed YAML", "bad.yml", "projects:\n  - id: [a\n"},
		{"second YAML document", "two.yml", "projects: []\n---\nprojects: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, ErrLoad) {
				t.Errorf("ReadFile() error = %v, want ErrLoad", err)
			}
		})
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrLoad) {
		t.Errorf("ReadFile(missing) error = %v, want ErrLoad", err)
	}
}

func TestDecode_TrailingWhitespaceAccepted(t *testing.T) {
	if _, err := Decode([]byte("{\"projects\": []}\n\n  "), FormatJSON); err != nil {
		t.Errorf("Decode() error = %v, want nil", err)
	}
	if _, err := Decode(nil, FormatYAML); err != nil {
		t.Errorf("Decode(empty YAML) error = %v, want nil", err)
	}
}

func TestReadDir_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &graph.Document{
		Projects: []project.Record{
			{ID: "a", Name: "Alpha", StartDate: "2023-01-01", EndDate: "2023-02-01", Category: "M", Skills: []string{"go"}},
			{ID: "b", Name: "Beta", StartDate: "2023-01-15", Duration: "6 weeks"},
		},
		Connections: []edge.Connection{{Source: "a", Target: "b", Value: 20}},
	}
	if err := WriteDir(dir, want); err != nil {
		t.Fatalf("WriteDir() error = %v", err)
	}

	got, err := ReadFile(dir)
	if err != nil {
		t.Fatalf("ReadFile(dir) error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestReadDir_ConnectionsFileOptional(t *testing.T) {
	dir := t.TempDir()
	content := `{"id":"a","name":"A","startDate":"2023-01-01"}` + "\n\n"
	if err := os.WriteFile(filepath.Join(dir, ProjectsFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(doc.Projects) != 1 || len(doc.Connections) != 0 {
		t.Errorf("got %d projects and %d connections, want 1 and 0", len(doc.Projects), len(doc.Connections))
	}
}

func TestReadDir_BadLine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectsFile), []byte("{not json}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadDir(dir)
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("ReadDir() error = %v, want ErrLoad", err)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error %q should name the line", err)
	}
}

func TestFetch_CacheBustsAndDecodes(t *testing.T) {
	var gotQuery, gotCacheControl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("_")
		gotCacheControl = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	clock := func() time.Time { return time.Unix(0, 12345) }
	c := NewClient(WithHTTPClient(srv.Client()), WithClock(clock))

	doc, err := c.Fetch(context.Background(), srv.URL+"/data/projects.json")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(doc.Projects) != 2 {
		t.Errorf("got %d projects, want 2", len(doc.Projects))
	}
	if gotQuery != "12345" {
		t.Errorf("cache-bust param = %q, want 12345", gotQuery)
	}
	if gotCacheControl != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", gotCacheControl)
	}
}

func TestFetch_YAMLByExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(sampleYAML))
	}))
	defer srv.Close()

	doc, err := NewClient(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL+"/timeline.yaml")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(doc.Projects) != 2 {
		t.Errorf("got %d projects, want 2", len(doc.Projects))
	}
}

func TestFetch_NonSuccessIsTerminal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL+"/data.json")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("Fetch() error = %v, want ErrLoad", err)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("Fetch() error = %v, want HTTPError 404", err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want exactly 1", calls)
	}
}

func TestFetch_BodyErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		maxSize int64
		wantErr error
	}{
		{"malformed body", `<html>oops</html>`, MaxDocumentSize, ErrLoad},
		{"trailing content", `{"projects": []} garbage`, MaxDocumentSize, ErrLoad},
		{"too large", sampleJSON, 64, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(WithHTTPClient(srv.Client()), WithMaxSize(tt.maxSize))
			_, err := c.Fetch(context.Background(), srv.URL)
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrLoad) {
				t.Errorf("Fetch() error = %v, want %v wrapped in ErrLoad", err, tt.wantErr)
			}
		})
	}
}

func TestFetch_ExactlyMaxSizeAccepted(t *testing.T) {
	body := `{"projects": []}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()), WithMaxSize(int64(len(body))))
	if _, err := c.Fetch(context.Background(), srv.URL+"/d.json"); err != nil {
		t.Errorf("Fetch() error = %v, want nil", err)
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(WithRateLimit(0.001)).Fetch(ctx, "http://127.0.0.1:1/data.json")
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Fetch() error = %v, want ErrLoad", err)
	}
}

func TestCacheBustedURL_PreservesQuery(t *testing.T) {
	c := NewClient(WithClock(func() time.Time { return time.Unix(0, 7) }))

	got, err := c.CacheBustedURL("https://example.com/data.json?v=2")
	if err != nil {
		t.Fatalf("CacheBustedURL() error = %v", err)
	}
	if want := "https://example.com/data.json?_=7&v=2"; got != want {
		t.Errorf("CacheBustedURL() = %q, want %q", got, want)
	}
}

func TestLoad_Dispatch(t *testing.T) {
	if _, err := Load(context.Background(), "", nil); !errors.Is(err, ErrLoad) {
		t.Errorf("Load(\"\") error = %v, want ErrLoad", err)
	}

	doc, err := Load(context.Background(), writeFile(t, "d.json", sampleJSON), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Projects) != 2 {
		t.Errorf("got %d projects, want 2", len(doc.Projects))
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://example.com/x.json", true},
		{"http://localhost/x.json", true},
		{"./x.json", false},
		{"ftp://example.com/x.json", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.source); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a/b.YML", FormatYAML},
		{"b.yaml", FormatYAML},
		{"b.json", FormatJSON},
		{"b", FormatJSON},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
