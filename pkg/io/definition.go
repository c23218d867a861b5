package io

import (
	"strings"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/diagram/icons"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	"github.com/telemetry-lab/stackdiagrams/pkg/render"
)

// Definition is the serialized form of a diagram.
type Definition struct {
	Name       string            `json:"name" toml:"name" yaml:"name"`
	Filename   string            `json:"filename,omitempty" toml:"filename,omitempty" yaml:"filename,omitempty"`
	Direction  string            `json:"direction,omitempty" toml:"direction,omitempty" yaml:"direction,omitempty"`
	CurveStyle string            `json:"curve_style,omitempty" toml:"curve_style,omitempty" yaml:"curve_style,omitempty"`
	Formats    []string          `json:"formats,omitempty" toml:"formats,omitempty" yaml:"formats,omitempty"`
	GraphAttr  map[string]string `json:"graph_attr,omitempty" toml:"graph_attr,omitempty" yaml:"graph_attr,omitempty"`
	NodeAttr   map[string]string `json:"node_attr,omitempty" toml:"node_attr,omitempty" yaml:"node_attr,omitempty"`
	EdgeAttr   map[string]string `json:"edge_attr,omitempty" toml:"edge_attr,omitempty" yaml:"edge_attr,omitempty"`
	Clusters   []ClusterDef      `json:"clusters,omitempty" toml:"clusters,omitempty" yaml:"clusters,omitempty"`
	Nodes      []NodeDef         `json:"nodes" toml:"nodes" yaml:"nodes"`
	Edges      []EdgeDef         `json:"edges" toml:"edges" yaml:"edges"`
}

// ClusterDef is a serialized cluster.
type ClusterDef struct {
	ID     string            `json:"id" toml:"id" yaml:"id"`
	Label  string            `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	Parent string            `json:"parent,omitempty" toml:"parent,omitempty" yaml:"parent,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// NodeDef is a serialized node.
type NodeDef struct {
	ID      string            `json:"id" toml:"id" yaml:"id"`
	Label   string            `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	Icon    string            `json:"icon,omitempty" toml:"icon,omitempty" yaml:"icon,omitempty"`
	Cluster string            `json:"cluster,omitempty" toml:"cluster,omitempty" yaml:"cluster,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// EdgeDef is a serialized edge.
type EdgeDef struct {
	From  string            `json:"from" toml:"from" yaml:"from"`
	To    string            `json:"to" toml:"to" yaml:"to"`
	Label string            `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	Color string            `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	Style string            `json:"style,omitempty" toml:"style,omitempty" yaml:"style,omitempty"`
	Dir   string            `json:"dir,omitempty" toml:"dir,omitempty" yaml:"dir,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// FromDiagram converts a diagram to its serialized form.
func FromDiagram(d *diagram.Diagram) Definition {
	def := Definition{
		Name:       d.Name(),
		Direction:  string(d.Direction()),
		CurveStyle: string(d.CurveStyle()),
		Formats:    d.Formats(),
		GraphAttr:  nonEmpty(d.GraphAttr()),
		NodeAttr:   nonEmpty(d.NodeAttr()),
		EdgeAttr:   nonEmpty(d.EdgeAttr()),
		Nodes:      make([]NodeDef, 0, d.NodeCount()),
		Edges:      make([]EdgeDef, 0, d.EdgeCount()),
	}
	if d.Filename() != diagram.New(d.Name()).Filename() {
		def.Filename = d.Filename()
	}

	for _, c := range d.Clusters() {
		def.Clusters = append(def.Clusters, ClusterDef{
			ID: c.ID, Label: c.Label, Parent: c.Parent, Attrs: nonEmpty(c.Attrs),
		})
	}
	for _, n := range d.Nodes() {
		nd := NodeDef{ID: n.ID, Label: n.Label, Cluster: n.Cluster, Attrs: nonEmpty(n.Attrs)}
		if !n.Icon.IsZero() {
			nd.Icon = n.Icon.Key()
		}
		def.Nodes = append(def.Nodes, nd)
	}
	for _, e := range d.Edges() {
		def.Edges = append(def.Edges, EdgeDef{
			From: e.From, To: e.To, Label: e.Label, Color: e.Color,
			Style: string(e.Style), Dir: string(e.Dir), Attrs: nonEmpty(e.Attrs),
		})
	}
	return def
}

func nonEmpty(a diagram.Attrs) map[string]string {
	if len(a) == 0 {
		return nil
	}
	return a
}

// Diagram builds and validates the diagram described by def.
// Errors carry the INVALID_DEFINITION or UNKNOWN_ICON code.
func (def Definition) Diagram() (*diagram.Diagram, error) {
	if strings.TrimSpace(def.Name) == "" {
		return nil, errors.New(errors.ErrCodeInvalidDefinition, "definition has no name")
	}
	dir, err := diagram.ParseDirection(def.Direction)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDirection, err, "definition %s", def.Name)
	}
	curve, err := diagram.ParseCurveStyle(def.CurveStyle)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "definition %s", def.Name)
	}

	opts := []diagram.Option{
		diagram.WithDirection(dir),
		diagram.WithCurveStyle(curve),
		diagram.WithGraphAttr(def.GraphAttr),
		diagram.WithNodeAttr(def.NodeAttr),
		diagram.WithEdgeAttr(def.EdgeAttr),
	}
	if def.Filename != "" {
		opts = append(opts, diagram.WithFilename(def.Filename))
	}
	for _, f := range def.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "definition %s", def.Name)
		}
	}
	if len(def.Formats) > 0 {
		opts = append(opts, diagram.WithFormats(def.Formats...))
	}
	d := diagram.New(def.Name, opts...)

	if err := addClusters(d, def.Clusters); err != nil {
		return nil, err
	}

	for _, n := range def.Nodes {
		var icon icons.Icon
		if n.Icon != "" {
			var ok bool
			if icon, ok = icons.Lookup(n.Icon); !ok {
				return nil, errors.New(errors.ErrCodeUnknownIcon, "node %s: unknown icon %q", n.ID, n.Icon)
			}
		}
		node := diagram.Node{ID: n.ID, Label: n.Label, Icon: icon, Cluster: n.Cluster, Attrs: n.Attrs}
		if err := d.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "node %s", n.ID)
		}
	}

	for _, e := range def.Edges {
		if err := errors.ValidateColor(e.Color); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "edge %s->%s", e.From, e.To)
		}
		edge := diagram.Edge{
			From: e.From, To: e.To, Label: e.Label, Color: e.Color,
			Style: diagram.EdgeStyle(e.Style), Dir: diagram.EdgeDir(e.Dir), Attrs: e.Attrs,
		}
		if err := d.AddEdge(edge); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "edge %s->%s", e.From, e.To)
		}
	}

	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "definition %s", def.Name)
	}
	return d, nil
}

// addClusters declares clusters parents-first regardless of listing order.
func addClusters(d *diagram.Diagram, defs []ClusterDef) error {
	pending := defs
	for len(pending) > 0 {
		var next []ClusterDef
		for _, c := range pending {
			if c.Parent != "" {
				if _, ok := d.Cluster(c.Parent); !ok {
					next = append(next, c)
					continue
				}
			}
			if err := d.AddCluster(diagram.Cluster{ID: c.ID, Label: c.Label, Parent: c.Parent, Attrs: c.Attrs}); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDefinition, err, "cluster %s", c.ID)
			}
		}
		if len(next) == len(pending) {
			c := next[0]
			if declared(defs, c.Parent) {
				return errors.Wrap(errors.ErrCodeInvalidDefinition, diagram.ErrClusterCycle, "cluster %s", c.ID)
			}
			return errors.Wrap(errors.ErrCodeInvalidDefinition, diagram.ErrUnknownCluster, "cluster %s: parent %s", c.ID, c.Parent)
		}
		pending = next
	}
	return nil
}

func declared(defs []ClusterDef, id string) bool {
	for _, c := range defs {
		if c.ID == id {
			return true
		}
	}
	return false
}
