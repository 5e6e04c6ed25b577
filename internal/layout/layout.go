package layout

import (
	"fmt"
	"math"
	"time"

	"github.com/matsen/flowline/internal/edge"
	"github.com/matsen/flowline/internal/graph"
)

// Margins are the space reserved around the plotting area, in pixels.
type Margins struct {
	Top    float64 `json:"top" yaml:"top" validate:"gte=0"`
	Right  float64 `json:"right" yaml:"right" validate:"gte=0"`
	Bottom float64 `json:"bottom" yaml:"bottom" validate:"gte=0"`
	Left   float64 `json:"left" yaml:"left" validate:"gte=0"`
}

// Viewport is the target drawing surface.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width" validate:"gte=0"`
	Height float64 `json:"height" yaml:"height" validate:"gte=0"`
	Margin Margins `json:"margin" yaml:"margin"`
}

// DefaultViewport matches the chart size the timeline page was designed for.
func DefaultViewport() Viewport {
	return Viewport{
		Width:  1200,
		Height: 700,
		Margin: Margins{Top: 40, Right: 40, Bottom: 60, Left: 40},
	}
}

// InnerWidth is the width minus horizontal margins, never negative.
func (v Viewport) InnerWidth() float64 {
	return math.Max(0, v.Width-v.Margin.Left-v.Margin.Right)
}

// InnerHeight is the height minus vertical margins, never negative.
func (v Viewport) InnerHeight() float64 {
	return math.Max(0, v.Height-v.Margin.Top-v.Margin.Bottom)
}

// Degenerate reports whether the plotting area has no width or no height.
func (v Viewport) Degenerate() bool {
	return v.InnerWidth() <= 0 || v.InnerHeight() <= 0
}

// Options tunes the layout. Zero fields take their defaults.
type Options struct {
	PadFraction  float64       `json:"padFraction" yaml:"pad_fraction" validate:"gte=0,lte=0.5"`
	FallbackSpan time.Duration `json:"fallbackSpan" yaml:"fallback_span" validate:"gte=0"`
	UnitMin      float64       `json:"unitMin" yaml:"unit_min" validate:"gte=0"`
	UnitMax      float64       `json:"unitMax" yaml:"unit_max" validate:"gte=0"`
	PaddingMin   float64       `json:"paddingMin" yaml:"padding_min" validate:"gte=0"`
	PaddingMax   float64       `json:"paddingMax" yaml:"padding_max" validate:"gte=0"`

	// Now centers the fallback domain of an empty graph. Zero means time.Now().
	Now time.Time `json:"-" yaml:"-"`
}

// Layout defaults.
const (
	DefaultPadFraction  = 0.04
	DefaultFallbackSpan = 913 * 24 * time.Hour // about two and a half years
	DefaultUnitMin      = 12.0
	DefaultUnitMax      = 25.0
	DefaultPaddingMin   = 5.0
	DefaultPaddingMax   = 20.0

	// MinVisualWidth and MinVisualHeight are rendering floors, see VisualBounds.
	MinVisualWidth  = 5.0
	MinVisualHeight = 1.0

	// minCurveReach keeps curves between overlapping or reversed nodes from collapsing.
	minCurveReach = 20.0
)

// DefaultOptions returns the default layout options.
func DefaultOptions() Options {
	return Options{
		PadFraction:  DefaultPadFraction,
		FallbackSpan: DefaultFallbackSpan,
		UnitMin:      DefaultUnitMin,
		UnitMax:      DefaultUnitMax,
		PaddingMin:   DefaultPaddingMin,
		PaddingMax:   DefaultPaddingMax,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PadFraction == 0 {
		o.PadFraction = d.PadFraction
	}
	if o.FallbackSpan == 0 {
		o.FallbackSpan = d.FallbackSpan
	}
	if o.UnitMin == 0 {
		o.UnitMin = d.UnitMin
	}
	if o.UnitMax == 0 {
		o.UnitMax = d.UnitMax
	}
	if o.PaddingMin == 0 {
		o.PaddingMin = d.PaddingMin
	}
	if o.PaddingMax == 0 {
		o.PaddingMax = d.PaddingMax
	}
	return o
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

// Validate checks that the clamp ranges are ordered.
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.UnitMin > o.UnitMax {
		return fmt.Errorf("unit_min %.1f exceeds unit_max %.1f", o.UnitMin, o.UnitMax)
	}
	if o.PaddingMin > o.PaddingMax {
		return fmt.Errorf("padding_min %.1f exceeds padding_max %.1f", o.PaddingMin, o.PaddingMax)
	}
	return nil
}

// Curve is a cubic Bézier from the right edge of the source node to the left
// edge of the target node, both at mid-height.
type Curve struct {
	SX, SY   float64
	C1X, C1Y float64
	C2X, C2Y float64
	TX, TY   float64
}

// Path renders the curve as an SVG path string.
func (c Curve) Path() string {
	return fmt.Sprintf("M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f",
		c.SX, c.SY, c.C1X, c.C1Y, c.C2X, c.C2Y, c.TX, c.TY)
}

// Result is the outcome of a layout pass.
type Result struct {
	Graph    *graph.Graph
	Viewport Viewport
	Scale    TimeScale

	UnitHeight  float64 // base node height before the category multiplier
	Padding     float64 // vertical gap between consecutive nodes
	Offset      float64 // y of the first node, in inner coordinates
	TotalHeight float64 // sum of node heights plus (count-1) paddings

	// Curves[i] belongs to Graph.Edges[i].
	Curves []Curve
}

// Compute lays out g in the viewport, writing X0, X1, Y0, Y1 on every node and
// Width on every edge. Coordinates are relative to the inner plotting area; a
// renderer translates them by the left and top margins.
//
// An empty graph or degenerate viewport is not an error: nodes get zero-length
// geometry and the result reports zero sizes.
func Compute(g *graph.Graph, vp Viewport, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Graph: g, Viewport: vp}

	var minDate, maxDate time.Time
	if g != nil {
		minDate, maxDate = g.MinDate, g.MaxDate
	}
	res.Scale = NewTimeScale(minDate, maxDate, vp.InnerWidth(), opts)

	if g == nil {
		return res
	}

	for _, e := range g.Edges {
		e.Width = edge.Width(e.Value)
	}

	if g.IsEmpty() || vp.Degenerate() {
		for _, n := range g.Nodes {
			n.X0, n.X1, n.Y0, n.Y1 = 0, 0, 0, 0
		}
		res.Curves = make([]Curve, len(g.Edges))
		return res
	}

	for _, n := range g.Nodes {
		n.X0 = res.Scale.Scale(n.Start)
		n.X1 = res.Scale.Scale(n.End)
	}

	res.UnitHeight, res.Padding = verticalMetrics(len(g.Nodes), g.TotalMultiplier(), vp.InnerHeight(), opts)

	var total float64
	for _, n := range g.Nodes {
		total += res.UnitHeight * n.Category.Multiplier()
	}
	total += float64(len(g.Nodes)-1) * res.Padding
	res.TotalHeight = total
	res.Offset = math.Max(0, (vp.InnerHeight()-total)/2)

	cursor := res.Offset
	for _, n := range g.Nodes {
		h := res.UnitHeight * n.Category.Multiplier()
		n.Y0 = cursor
		n.Y1 = cursor + h
		cursor = n.Y1 + res.Padding
	}

	res.Curves = make([]Curve, len(g.Edges))
	for i, e := range g.Edges {
		res.Curves[i] = curveBetween(e.Source, e.Target)
	}
	return res
}

// verticalMetrics derives the base unit height and inter-node padding.
// More nodes shrink both; fewer nodes grow them, within the configured clamps.
func verticalMetrics(count int, totalMultiplier, innerHeight float64, opts Options) (unit, padding float64) {
	n := math.Max(float64(count), 1)
	denom := math.Max(totalMultiplier+n, 1)

	unit = clamp(innerHeight/denom, opts.UnitMin, opts.UnitMax)
	padding = clamp(innerHeight/(2*n), opts.PaddingMin, opts.PaddingMax)
	return unit, padding
}

func curveBetween(src, tgt *graph.Node) Curve {
	sx, sy := src.X1, (src.Y0+src.Y1)/2
	tx, ty := tgt.X0, (tgt.Y0+tgt.Y1)/2

	reach := math.Max(math.Abs(tx-sx)/2, minCurveReach)
	return Curve{
		SX: sx, SY: sy,
		C1X: sx + reach, C1Y: sy,
		C2X: tx - reach, C2Y: ty,
		TX: tx, TY: ty,
	}
}

// VisualBounds applies the rendering floors to a node's geometry so thin or
// flat bars stay visible. The stored geometry is not modified.
func VisualBounds(n *graph.Node) (x0, x1, y0, y1 float64) {
	x0, x1, y0, y1 = n.X0, n.X1, n.Y0, n.Y1
	if x1-x0 < MinVisualWidth {
		x1 = x0 + MinVisualWidth
	}
	if y1-y0 < MinVisualHeight {
		y1 = y0 + MinVisualHeight
	}
	return x0, x1, y0, y1
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
