// Package nodelink renders diagrams as node-link pictures using Graphviz.
//
// # Overview
//
// A [diagram.Diagram] is converted to DOT source by [ToDOT], and the DOT is
// laid out and rasterized by Graphviz through [github.com/goccy/go-graphviz],
// in-process:
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [Render] dispatches on a format name from the render package. PDF output
// goes through SVG and requires librsvg (rsvg-convert).
//
// # DOT Conventions
//
// The generated graph uses the familiar architecture-diagram look:
//
//   - pad 2.0, nodesep 0.60, ranksep 0.75, Sans-Serif text in #2D3436
//   - edges in #7B8894 unless colored explicitly
//   - clusters as rounded subgraphs with a left-justified label and a
//     background that cycles with nesting depth
//
// Nodes are drawn from their icon: when Options.IconsDir holds a PNG for the
// icon the node becomes that image with the label underneath, otherwise a
// rounded box outlined in the icon's color.
//
// Graphviz is the only authority on layout validity. Errors from it are
// returned wrapped with RENDER_FAILED or BACKEND_UNAVAILABLE codes.
package nodelink
