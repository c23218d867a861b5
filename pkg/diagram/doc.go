// Package diagram models architecture diagrams: labeled nodes, visual
// clusters and directed, optionally styled edges.
//
// # Overview
//
// A [Diagram] is a fixed topology plus the drawing-context settings
// (direction, edge routing, default formats, raw Graphviz attribute
// overrides). It carries no semantics beyond the picture: clusters are a
// layout grouping only, and the only structural rule is that edges and
// cluster references point at declared elements.
//
// # Building
//
// [Builder] mirrors the way diagrams are written by hand:
//
//	b := diagram.NewBuilder("hld", diagram.WithDirection(diagram.TopToBottom))
//	prom := b.Node(icons.Prometheus, "Prometheus Metrics")
//	var pods []string
//	b.Cluster("App Namespace", func(c *diagram.Builder) {
//	    pods = c.Nodes(icons.Pod, "MyApp-Pod-%d", 3)
//	})
//	collector := b.Node(icons.Server, "App Collector")
//	b.Fan(pods, collector)
//	b.Connect(collector, prom, diagram.Label("metrics"))
//	d, err := b.Build()
//
// IDs are derived from labels with [Slug], so running the same script twice
// produces structurally identical diagrams.
//
// For programmatic construction use [New] with [Diagram.AddCluster],
// [Diagram.AddNode] and [Diagram.AddEdge], which return sentinel errors such
// as [ErrUnknownSourceNode].
package diagram
