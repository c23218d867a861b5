// Package io reads and writes diagram definition files.
//
// # Overview
//
// Definitions let a topology be authored without Go code. The same schema is
// accepted as JSON, TOML or YAML:
//
//	name = "otlp-flow"
//	direction = "LR"
//
//	[[clusters]]
//	id = "apps"
//	label = "Applications"
//
//	[[nodes]]
//	id = "frontend"
//	label = "Spring Boot\nFrontend"
//	icon = "programming.framework.spring"
//	cluster = "apps"
//
//	[[nodes]]
//	id = "collector"
//	label = "OTel Collector"
//	icon = "onprem.compute.server"
//
//	[[edges]]
//	from = "frontend"
//	to = "collector"
//	label = "OTLP"
//	color = "darkgreen"
//
// # Fields
//
// Top level: name (required), filename, direction (TB, BT, LR, RL),
// curve_style (ortho, curved, spline, polyline), formats, graph_attr,
// node_attr, edge_attr.
//
// Clusters: id (required), label, parent, attrs. Clusters may be listed in
// any order; parents are resolved before children.
//
// Nodes: id (required), label, icon (a key from the icons catalog), cluster,
// attrs.
//
// Edges: from and to (required), label, color, style (solid, dashed,
// dotted, bold), dir (forward, back, both, none), attrs.
//
// Unknown fields are rejected in every codec.
//
// # Import and Export
//
// [Import] and [Export] pick the codec from the file extension (.json,
// .toml, .yaml, .yml). The Read* and Write* functions work on any
// io.Reader or io.Writer. Decoding validates through the diagram package,
// so a decoded diagram always satisfies [diagram.Diagram.Validate].
// Export followed by Import reproduces the same diagram.
//
// [diagram.Diagram.Validate]: github.com/telemetry-lab/stackdiagrams/pkg/diagram.Diagram.Validate
package io
