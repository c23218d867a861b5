package nodelink

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
)

// Options configures DOT generation.
type Options struct {
	// IconsDir is searched for PNG icon assets laid out as
	// <provider>/<category>/<name>.png. Nodes whose icon has an asset are drawn
	// as the image with the label underneath; other nodes are drawn as
	// rounded boxes outlined in the icon's color.
	IconsDir string
}

const (
	fontName  = "Sans-Serif"
	fontColor = "#2D3436"
	edgeColor = "#7B8894"

	iconWidth   = 1.4
	iconHeight  = 1.9
	labelHeight = 0.4
)

// clusterColors cycle with nesting depth.
var clusterColors = []string{"#E5F5FD", "#EBF3E7", "#ECE8F6", "#FDF7E3"}

func defaultGraphAttrs(d *diagram.Diagram) diagram.Attrs {
	return diagram.Attrs{
		"pad":       "2.0",
		"splines":   string(d.CurveStyle()),
		"nodesep":   "0.60",
		"ranksep":   "0.75",
		"fontname":  fontName,
		"fontsize":  "15",
		"fontcolor": fontColor,
		"rankdir":   string(d.Direction()),
		"label":     d.Name(),
	}
}

func defaultNodeAttrs() diagram.Attrs {
	return diagram.Attrs{
		"shape":     "box",
		"style":     "rounded",
		"fixedsize": "false",
		"width":     fmt.Sprintf("%.1f", iconWidth),
		"height":    "0.8",
		"fontname":  fontName,
		"fontsize":  "13",
		"fontcolor": fontColor,
	}
}

func defaultEdgeAttrs() diagram.Attrs {
	return diagram.Attrs{"color": edgeColor}
}

// ToDOT converts a diagram to Graphviz DOT source.
//
// The output is deterministic: top-level nodes come first in declaration
// order, then clusters (recursively) as subgraph cluster_<id>, then edges in
// declaration order. Attribute lists are sorted by key.
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(d.Name()))
	writeDefaults(&buf, "graph", defaultGraphAttrs(d), d.GraphAttr())
	writeDefaults(&buf, "node", defaultNodeAttrs(), d.NodeAttr())
	writeDefaults(&buf, "edge", defaultEdgeAttrs(), d.EdgeAttr())
	buf.WriteString("\n")

	for _, n := range d.NodesIn("") {
		writeNode(&buf, "  ", n, opts)
	}
	for _, c := range d.ChildClusters("") {
		writeCluster(&buf, "  ", d, c, opts)
	}

	if d.EdgeCount() > 0 {
		buf.WriteString("\n")
	}
	for _, e := range d.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s", quote(e.From), quote(e.To))
		if attrs := edgeAttrs(e); len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", fmtAttrs(attrs))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDefaults(buf *bytes.Buffer, kind string, base, overrides diagram.Attrs) {
	attrs := maps.Clone(base)
	maps.Copy(attrs, overrides)
	fmt.Fprintf(buf, "  %s [%s];\n", kind, fmtAttrs(attrs))
}

func writeCluster(buf *bytes.Buffer, indent string, d *diagram.Diagram, c *diagram.Cluster, opts Options) {
	fmt.Fprintf(buf, "%ssubgraph %s {\n", indent, quote("cluster_"+c.ID))
	inner := indent + "  "
	fmt.Fprintf(buf, "%sgraph [%s];\n", inner, fmtAttrs(clusterAttrs(d, c)))
	for _, n := range d.NodesIn(c.ID) {
		writeNode(buf, inner, n, opts)
	}
	for _, child := range d.ChildClusters(c.ID) {
		writeCluster(buf, inner, d, child, opts)
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func clusterAttrs(d *diagram.Diagram, c *diagram.Cluster) diagram.Attrs {
	depth := d.ClusterDepth(c.ID)
	label := c.Label
	if label == "" {
		label = c.ID
	}
	attrs := diagram.Attrs{
		"label":     label,
		"labeljust": "l",
		"pencolor":  "#AEB6BE",
		"fontname":  fontName,
		"fontsize":  "12",
		"style":     "rounded",
		"bgcolor":   clusterColors[(depth-1+len(clusterColors))%len(clusterColors)],
	}
	maps.Copy(attrs, c.Attrs)
	return attrs
}

func writeNode(buf *bytes.Buffer, indent string, n *diagram.Node, opts Options) {
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, quote(n.ID), fmtAttrs(nodeAttrs(n, opts)))
}

func nodeAttrs(n *diagram.Node, opts Options) diagram.Attrs {
	label := n.DisplayLabel()
	attrs := diagram.Attrs{"label": label}
	if !n.Icon.IsZero() {
		attrs["tooltip"] = n.Icon.Key()
	}

	if path, ok := n.Icon.Asset(opts.IconsDir); ok {
		lines := strings.Count(label, "\n") + 1
		attrs["shape"] = "none"
		attrs["image"] = path
		attrs["imagescale"] = "true"
		attrs["labelloc"] = "b"
		attrs["fixedsize"] = "true"
		attrs["width"] = fmt.Sprintf("%.1f", iconWidth)
		attrs["height"] = fmt.Sprintf("%.1f", iconHeight+labelHeight*float64(lines-1))
	} else if n.Icon.Color != "" {
		attrs["style"] = "rounded,filled"
		attrs["fillcolor"] = "#FFFFFF"
		attrs["color"] = n.Icon.Color
		attrs["penwidth"] = "2"
	}

	maps.Copy(attrs, n.Attrs)
	return attrs
}

func edgeAttrs(e diagram.Edge) diagram.Attrs {
	attrs := diagram.Attrs{}
	if e.Label != "" {
		attrs["label"] = e.Label
	}
	if e.Color != "" {
		attrs["color"] = e.Color
		attrs["fontcolor"] = e.Color
	}
	if e.Style != "" && e.Style != diagram.StyleSolid {
		attrs["style"] = string(e.Style)
	}
	if e.Dir != "" && e.Dir != diagram.DirForward {
		attrs["dir"] = string(e.Dir)
	}
	maps.Copy(attrs, e.Attrs)
	return attrs
}

func fmtAttrs(attrs diagram.Attrs) string {
	parts := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		parts = append(parts, k+"="+quote(attrs[k]))
	}
	return strings.Join(parts, ", ")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// quote returns s as a DOT double-quoted string. Newlines become the DOT
// centered line break escape.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
