package viz

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/matsen/flowline/internal/layout"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("timeline").Funcs(template.FuncMap{
		"px": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Title: "Project Timeline"}
}

// OngoingLabel is shown instead of an end date for projects without one.
const OngoingLabel = "Ongoing"

// GenerateHTML generates a self-contained HTML page with the timeline drawn as inline SVG.
func GenerateHTML(res layout.Result, opts HTMLOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	data := FromLayout(res)
	if data.IsEmpty() {
		return generateEmptyHTML(opts.Title), nil
	}

	page := pageData{
		Title:       opts.Title,
		Data:        data,
		InnerHeight: data.Height - data.OffsetY - res.Viewport.Margin.Bottom,
		Nodes:       make([]nodeView, 0, len(data.Nodes)),
		Rows:        make([]detailRow, 0, len(data.Nodes)),
	}

	names := make(map[string]string, len(data.Nodes))
	for _, n := range data.Nodes {
		names[n.ID] = n.Name
	}

	for _, n := range data.Nodes {
		page.Nodes = append(page.Nodes, nodeView{
			Node:   n,
			LabelX: n.Rect.X + n.Rect.Width + 4,
			LabelY: n.Rect.Y + n.Rect.Height/2,
		})
		page.Rows = append(page.Rows, newDetailRow(n, names))
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("rendering timeline: %w", err)
	}
	return buf.String(), nil
}

// pageData holds data for the HTML template.
type pageData struct {
	Title       string
	Data        *TimelineData
	InnerHeight float64
	Nodes       []nodeView
	Rows        []detailRow
}

type nodeView struct {
	Node
	LabelX float64
	LabelY float64
}

// detailRow is one line of the details table.
type detailRow struct {
	ID          string
	Name        string
	Color       string
	Start       string
	End         string
	Duration    string
	Category    string
	Phase       int
	Skills      string
	Incoming    string
	Outgoing    string
	Description string
}

func newDetailRow(n Node, names map[string]string) detailRow {
	end := n.End
	if n.Ongoing {
		end = OngoingLabel
	}
	return detailRow{
		ID:          n.ID,
		Name:        n.Name,
		Color:       n.Color,
		Start:       n.Start,
		End:         end,
		Duration:    n.Duration,
		Category:    n.Category,
		Phase:       n.Phase,
		Skills:      strings.Join(n.Skills, ", "),
		Incoming:    joinNames(n.Incoming, names),
		Outgoing:    joinNames(n.Outgoing, names),
		Description: n.Description,
	}
}

// joinNames lists adjacent projects by name, keeping stored order.
func joinNames(ids []string, names map[string]string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, names[id])
	}
	return strings.Join(out, ", ")
}

// generateEmptyHTML returns HTML for an empty timeline.
func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state h2 {
      margin-bottom: 0.5em;
      color: #333;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No projects</h2>
    <p>The timeline document doesn't contain any projects yet.</p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 16px;
      background: #f5f5f5;
      color: #333;
    }
    svg {
      background: white;
      display: block;
    }
    .axis text {
      font-size: 10px;
      fill: #888;
    }
    .nodes text {
      font-size: 11px;
      fill: #333;
      dominant-baseline: middle;
    }
    table {
      border-collapse: collapse;
      margin-top: 16px;
      background: white;
      font-size: 13px;
    }
    th, td {
      border: 1px solid #ddd;
      padding: 4px 8px;
      text-align: left;
      vertical-align: top;
    }
    .swatch {
      display: inline-block;
      width: 10px;
      height: 10px;
      margin-right: 6px;
    }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <svg xmlns="http://www.w3.org/2000/svg" width="{{px .Data.Width}}" height="{{px .Data.Height}}">
    <g transform="translate({{px .Data.OffsetX}},{{px .Data.OffsetY}})">
      <g class="axis">
        {{- range .Data.Axis}}
        <line x1="{{px .X}}" x2="{{px .X}}" y1="0" y2="{{px $.InnerHeight}}" stroke="#eee"></line>
        <text x="{{px .X}}" y="{{px $.InnerHeight}}" dy="16" text-anchor="middle">{{.Label}}</text>
        {{- end}}
      </g>
      <g class="edges" fill="none">
        {{- range .Data.Edges}}
        <path id="edge-{{.ID}}" d="{{.Path}}" stroke="{{.Color}}" stroke-opacity="0.45" stroke-width="{{px .Width}}"><title>{{.Source}} → {{.Target}} ({{.Value}})</title></path>
        {{- end}}
      </g>
      <g class="nodes">
        {{- range .Nodes}}
        <rect id="node-{{.ID}}" x="{{px .Rect.X}}" y="{{px .Rect.Y}}" width="{{px .Rect.Width}}" height="{{px .Rect.Height}}" rx="2" fill="{{.Color}}"><title>{{.Name}}</title></rect>
        <text x="{{px .LabelX}}" y="{{px .LabelY}}">{{.Name}}</text>
        {{- end}}
      </g>
    </g>
  </svg>
  <table>
    <thead>
      <tr><th>Project</th><th>Start</th><th>End</th><th>Duration</th><th>Category</th><th>Phase</th><th>Skills</th><th>Incoming</th><th>Outgoing</th></tr>
    </thead>
    <tbody>
      {{- range .Rows}}
      <tr id="details-{{.ID}}">
        <td><span class="swatch" style="background: {{.Color}}"></span>{{.Name}}{{if .Description}}<br><small>{{.Description}}</small>{{end}}</td>
        <td>{{.Start}}</td>
        <td>{{.End}}</td>
        <td>{{.Duration}}</td>
        <td>{{.Category}}</td>
        <td>{{.Phase}}</td>
        <td>{{.Skills}}</td>
        <td>{{.Incoming}}</td>
        <td>{{.Outgoing}}</td>
      </tr>
      {{- end}}
    </tbody>
  </table>
</body>
</html>`
