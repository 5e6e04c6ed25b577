// Package viz renders a laid-out timeline as JSON or a static HTML page.
package viz

// TimelineData contains all data needed to render the visualization.
type TimelineData struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	OffsetX float64 `json:"offsetX"` // left margin; node geometry is relative to it
	OffsetY float64 `json:"offsetY"` // top margin
	MinDate string  `json:"minDate,omitempty"`
	MaxDate string  `json:"maxDate,omitempty"`

	Nodes   []Node    `json:"nodes"`
	Edges   []Edge    `json:"edges"`
	Axis    []Tick    `json:"axis"`
	Dropped []Dropped `json:"dropped,omitempty"`
}

// Node is a laid-out project.
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Ongoing     bool     `json:"ongoing"`
	Duration    string   `json:"duration,omitempty"`
	Category    string   `json:"category,omitempty"`
	Phase       int      `json:"phase"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
	Color       string   `json:"color"`

	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`

	// Rect is the drawn rectangle, with rendering floors applied.
	Rect Rect `json:"rect"`

	Incoming []string `json:"incoming"`
	Outgoing []string `json:"outgoing"`
}

// Rect is an SVG rectangle in inner coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Edge is a resolved connection with its drawn curve.
type Edge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Width  float64 `json:"width"`
	Path   string  `json:"path"`
	Color  string  `json:"color"`
}

// Tick is one month label on the time axis.
type Tick struct {
	X     float64 `json:"x"`
	Date  string  `json:"date"`
	Label string  `json:"label"`
}

// Dropped is a connection left out because an endpoint did not resolve.
type Dropped struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// IsEmpty returns true if the timeline has no nodes.
func (d *TimelineData) IsEmpty() bool {
	return len(d.Nodes) == 0
}
