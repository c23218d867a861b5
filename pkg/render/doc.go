// Package render turns diagram descriptions into picture files.
//
// # Overview
//
// Layout and rasterization are delegated to Graphviz. This package holds the
// pieces shared by every renderer:
//
//   - The set of output formats and flag parsing ([ParseFormats])
//   - SVG conversion to PDF or PNG through rsvg-convert ([ToPDF], [ToPNG])
//
// The [nodelink] subpackage emits DOT for a [diagram.Diagram] and renders it
// in-process with go-graphviz:
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	png, err := nodelink.Render(ctx, dot, render.FormatPNG)
//
// [nodelink]: github.com/telemetry-lab/stackdiagrams/pkg/render/nodelink
// [diagram.Diagram]: github.com/telemetry-lab/stackdiagrams/pkg/diagram.Diagram
package render
