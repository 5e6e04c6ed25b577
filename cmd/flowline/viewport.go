package main

import (
	"github.com/matsen/flowline/internal/layout"
	"github.com/spf13/cobra"
)

// viewportFlags are shared by commands that run the layout engine.
type viewportFlags struct {
	width, height                                    float64
	marginTop, marginRight, marginBottom, marginLeft float64
}

func addViewportFlags(cmd *cobra.Command, f *viewportFlags) {
	d := layout.DefaultViewport()
	cmd.Flags().Float64Var(&f.width, "width", d.Width, "Chart width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", d.Height, "Chart height in pixels")
	cmd.Flags().Float64Var(&f.marginTop, "margin-top", d.Margin.Top, "Top margin in pixels")
	cmd.Flags().Float64Var(&f.marginRight, "margin-right", d.Margin.Right, "Right margin in pixels")
	cmd.Flags().Float64Var(&f.marginBottom, "margin-bottom", d.Margin.Bottom, "Bottom margin in pixels")
	cmd.Flags().Float64Var(&f.marginLeft, "margin-left", d.Margin.Left, "Left margin in pixels")
}

// viewport overlays explicitly set flags on the configured viewport.
func (f *viewportFlags) viewport(cmd *cobra.Command, base layout.Viewport) layout.Viewport {
	vp := base
	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("width", &vp.Width, f.width)
	set("height", &vp.Height, f.height)
	set("margin-top", &vp.Margin.Top, f.marginTop)
	set("margin-right", &vp.Margin.Right, f.marginRight)
	set("margin-bottom", &vp.Margin.Bottom, f.marginBottom)
	set("margin-left", &vp.Margin.Left, f.marginLeft)
	return vp
}

// computeLayout runs the layout engine with the effective viewport and options.
func computeLayout(cmd *cobra.Command, f *viewportFlags, arg string) layout.Result {
	g := mustLoadGraph(cmd, arg)

	vp := f.viewport(cmd, appConfig.EffectiveViewport())
	if vp.Width < 0 || vp.Height < 0 {
		exitWithError(ExitError, "viewport size must not be negative")
	}

	res := layout.Compute(g, vp, appConfig.Layout)
	if vp.Degenerate() {
		logger.Warn("degenerate viewport, geometry is empty", "width", vp.Width, "height", vp.Height)
	}
	return res
}
