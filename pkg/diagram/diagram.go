package diagram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram/icons"
)

var (
	// ErrInvalidNodeID is returned by [Diagram.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Diagram.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidClusterID is returned by [Diagram.AddCluster] when the cluster ID is empty.
	ErrInvalidClusterID = errors.New("cluster ID must not be empty")

	// ErrDuplicateClusterID is returned by [Diagram.AddCluster] when a cluster
	// with the same ID already exists.
	ErrDuplicateClusterID = errors.New("duplicate cluster ID")

	// ErrUnknownCluster is returned when a node or cluster refers to a parent
	// cluster that has not been declared.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrClusterCycle is returned by [Diagram.Validate] when cluster parents loop.
	ErrClusterCycle = errors.New("cluster nesting contains a cycle")

	// ErrUnknownSourceNode is returned by [Diagram.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Diagram.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeStyle is returned for edge styles outside [EdgeStyle]'s set.
	ErrInvalidEdgeStyle = errors.New("invalid edge style")

	// ErrInvalidEdgeDir is returned for edge directions outside [EdgeDir]'s set.
	ErrInvalidEdgeDir = errors.New("invalid edge direction")

	// ErrInvalidDirection is returned by [ParseDirection] for unknown rank directions.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidCurveStyle is returned by [ParseCurveStyle] for unknown curve styles.
	ErrInvalidCurveStyle = errors.New("invalid curve style")
)

// Attrs holds raw Graphviz attribute overrides.
type Attrs map[string]string

// Direction is the rank direction of the layout.
type Direction string

const (
	TopToBottom Direction = "TB"
	BottomToTop Direction = "BT"
	LeftToRight Direction = "LR"
	RightToLeft Direction = "RL"
)

// ParseDirection parses s case-insensitively. An empty string yields TopToBottom.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case "":
		return TopToBottom, nil
	case TopToBottom, BottomToTop, LeftToRight, RightToLeft:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q (must be TB, BT, LR or RL)", ErrInvalidDirection, s)
}

// CurveStyle controls how Graphviz routes edges.
type CurveStyle string

const (
	CurveOrtho    CurveStyle = "ortho"
	CurveCurved   CurveStyle = "curved"
	CurveSpline   CurveStyle = "spline"
	CurvePolyline CurveStyle = "polyline"
)

// ParseCurveStyle parses s case-insensitively. An empty string yields CurveOrtho.
func ParseCurveStyle(s string) (CurveStyle, error) {
	switch c := CurveStyle(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CurveOrtho, nil
	case CurveOrtho, CurveCurved, CurveSpline, CurvePolyline:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCurveStyle, s)
}

// EdgeStyle is the stroke pattern of an edge.
type EdgeStyle string

const (
	StyleSolid  EdgeStyle = "solid"
	StyleDashed EdgeStyle = "dashed"
	StyleDotted EdgeStyle = "dotted"
	StyleBold   EdgeStyle = "bold"
)

func (s EdgeStyle) valid() bool {
	switch s {
	case "", StyleSolid, StyleDashed, StyleDotted, StyleBold:
		return true
	}
	return false
}

// EdgeDir is the arrowhead placement of an edge.
type EdgeDir string

const (
	DirForward EdgeDir = "forward" // a >> b
	DirBack    EdgeDir = "back"    // a << b
	DirBoth    EdgeDir = "both"
	DirNone    EdgeDir = "none" // a - b
)

func (d EdgeDir) valid() bool {
	switch d {
	case "", DirForward, DirBack, DirBoth, DirNone:
		return true
	}
	return false
}

// Node is a labeled shape in the picture.
type Node struct {
	ID      string
	Label   string
	Icon    icons.Icon
	Cluster string // enclosing cluster ID, empty for top level
	Attrs   Attrs
}

// DisplayLabel returns Label, falling back to ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Cluster is a named visual grouping of nodes. Clusters nest through Parent.
type Cluster struct {
	ID     string
	Label  string
	Parent string
	Attrs  Attrs
}

// Edge is a directed, optionally styled connection between two nodes.
type Edge struct {
	From  string
	To    string
	Label string
	Color string
	Style EdgeStyle
	Dir   EdgeDir
	Attrs Attrs
}

// Diagram is a fixed topology of nodes, clusters and edges together with the
// drawing-context settings used to render it.
//
// Nodes, clusters and edges are kept in declaration order so that rendering
// the same declarations twice yields the same output. The zero value is not
// usable; create diagrams with [New] or [NewBuilder].
// Diagram is not safe for concurrent mutation.
type Diagram struct {
	name       string
	filename   string
	direction  Direction
	curveStyle CurveStyle
	formats    []string

	graphAttr Attrs
	nodeAttr  Attrs
	edgeAttr  Attrs

	nodes        map[string]*Node
	nodeOrder    []string
	clusters     map[string]*Cluster
	clusterOrder []string
	edges        []Edge
	outgoing     map[string][]string
	incoming     map[string][]string
}

// Option configures a Diagram in [New].
type Option func(*Diagram)

// WithDirection sets the rank direction.
func WithDirection(d Direction) Option { return func(g *Diagram) { g.direction = d } }

// WithCurveStyle sets the edge routing style.
func WithCurveStyle(c CurveStyle) Option { return func(g *Diagram) { g.curveStyle = c } }

// WithFilename overrides the output base name.
func WithFilename(name string) Option { return func(g *Diagram) { g.filename = name } }

// WithFormats sets the default output formats.
func WithFormats(formats ...string) Option {
	return func(g *Diagram) { g.formats = append([]string(nil), formats...) }
}

// WithGraphAttr merges graph-level Graphviz attributes.
func WithGraphAttr(a Attrs) Option { return func(g *Diagram) { merge(g.graphAttr, a) } }

// WithNodeAttr merges default node attributes.
func WithNodeAttr(a Attrs) Option { return func(g *Diagram) { merge(g.nodeAttr, a) } }

// WithEdgeAttr merges default edge attributes.
func WithEdgeAttr(a Attrs) Option { return func(g *Diagram) { merge(g.edgeAttr, a) } }

func merge(dst, src Attrs) {
	for k, v := range src {
		dst[k] = v
	}
}

// New creates an empty diagram.
func New(name string, opts ...Option) *Diagram {
	d := &Diagram{
		name:       name,
		direction:  TopToBottom,
		curveStyle: CurveOrtho,
		graphAttr:  Attrs{},
		nodeAttr:   Attrs{},
		edgeAttr:   Attrs{},
		nodes:      make(map[string]*Node),
		clusters:   make(map[string]*Cluster),
		outgoing:   make(map[string][]string),
		incoming:   make(map[string][]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the diagram title.
func (d *Diagram) Name() string { return d.name }

// Filename returns the output base name. Unless overridden it is the name
// lower-cased with spaces replaced by underscores.
func (d *Diagram) Filename() string {
	if d.filename != "" {
		return d.filename
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(d.name)), " ", "_")
}

// Direction returns the rank direction.
func (d *Diagram) Direction() Direction { return d.direction }

// SetDirection changes the rank direction.
func (d *Diagram) SetDirection(dir Direction) { d.direction = dir }

// CurveStyle returns the edge routing style.
func (d *Diagram) CurveStyle() CurveStyle { return d.curveStyle }

// Formats returns the default output formats, which may be empty.
func (d *Diagram) Formats() []string { return d.formats }

// GraphAttr returns graph-level attribute overrides. The map is never nil.
func (d *Diagram) GraphAttr() Attrs { return d.graphAttr }

// NodeAttr returns default node attribute overrides. The map is never nil.
func (d *Diagram) NodeAttr() Attrs { return d.nodeAttr }

// EdgeAttr returns default edge attribute overrides. The map is never nil.
func (d *Diagram) EdgeAttr() Attrs { return d.edgeAttr }

// AddCluster declares a cluster. Parent, when set, must already be declared.
func (d *Diagram) AddCluster(c Cluster) error {
	if c.ID == "" {
		return ErrInvalidClusterID
	}
	if _, exists := d.clusters[c.ID]; exists {
		return ErrDuplicateClusterID
	}
	if c.Parent != "" {
		if _, ok := d.clusters[c.Parent]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCluster, c.Parent)
		}
	}
	if c.Attrs == nil {
		c.Attrs = Attrs{}
	}
	d.clusters[c.ID] = &c
	d.clusterOrder = append(d.clusterOrder, c.ID)
	return nil
}

// AddNode declares a node. Cluster, when set, must already be declared.
func (d *Diagram) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Cluster != "" {
		if _, ok := d.clusters[n.Cluster]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCluster, n.Cluster)
		}
	}
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	d.nodes[n.ID] = &n
	d.nodeOrder = append(d.nodeOrder, n.ID)
	return nil
}

// AddEdge appends an edge between two declared nodes. Parallel edges are allowed.
func (d *Diagram) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	if _, ok := d.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	if !e.Style.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEdgeStyle, e.Style)
	}
	if !e.Dir.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEdgeDir, e.Dir)
	}
	if e.Attrs == nil {
		e.Attrs = Attrs{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (d *Diagram) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes in declaration order.
func (d *Diagram) Nodes() []*Node {
	out := make([]*Node, len(d.nodeOrder))
	for i, id := range d.nodeOrder {
		out[i] = d.nodes[id]
	}
	return out
}

// Cluster returns the cluster with the given ID.
func (d *Diagram) Cluster(id string) (*Cluster, bool) {
	c, ok := d.clusters[id]
	return c, ok
}

// Clusters returns all clusters in declaration order.
func (d *Diagram) Clusters() []*Cluster {
	out := make([]*Cluster, len(d.clusterOrder))
	for i, id := range d.clusterOrder {
		out[i] = d.clusters[id]
	}
	return out
}

// Edges returns all edges in declaration order. The slice must not be modified.
func (d *Diagram) Edges() []Edge { return d.edges }

// NodeCount returns the number of nodes across all clusters.
func (d *Diagram) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *Diagram) EdgeCount() int { return len(d.edges) }

// ClusterCount returns the number of clusters at every nesting depth.
func (d *Diagram) ClusterCount() int { return len(d.clusters) }

// NodesIn returns the nodes placed directly in the given cluster, in
// declaration order. An empty clusterID selects top-level nodes.
func (d *Diagram) NodesIn(clusterID string) []*Node {
	var out []*Node
	for _, id := range d.nodeOrder {
		if n := d.nodes[id]; n.Cluster == clusterID {
			out = append(out, n)
		}
	}
	return out
}

// ChildClusters returns clusters whose parent is clusterID, in declaration
// order. An empty clusterID selects top-level clusters.
func (d *Diagram) ChildClusters(clusterID string) []*Cluster {
	var out []*Cluster
	for _, id := range d.clusterOrder {
		if c := d.clusters[id]; c.Parent == clusterID {
			out = append(out, c)
		}
	}
	return out
}

// ClusterDepth returns the nesting depth of a cluster, 1 for top-level clusters.
// It returns 0 for unknown IDs.
func (d *Diagram) ClusterDepth(id string) int {
	depth := 0
	for seen := 0; id != "" && seen <= len(d.clusters); seen++ {
		c, ok := d.clusters[id]
		if !ok {
			break
		}
		depth++
		id = c.Parent
	}
	return depth
}

// Outgoing returns the targets of edges leaving id, one entry per edge.
func (d *Diagram) Outgoing(id string) []string { return d.outgoing[id] }

// Incoming returns the sources of edges entering id, one entry per edge.
func (d *Diagram) Incoming(id string) []string { return d.incoming[id] }

// Validate checks that the assembled diagram is a well-formed rendering input:
// every edge endpoint and cluster reference is declared and cluster nesting
// is acyclic. Diagrams built only through Add* methods always validate; the
// check exists for diagrams decoded from definition files.
func (d *Diagram) Validate() error {
	for _, e := range d.edges {
		if _, ok := d.nodes[e.From]; !ok {
			return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownSourceNode)
		}
		if _, ok := d.nodes[e.To]; !ok {
			return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownTargetNode)
		}
	}
	for _, n := range d.nodes {
		if n.Cluster == "" {
			continue
		}
		if _, ok := d.clusters[n.Cluster]; !ok {
			return fmt.Errorf("node %s: %w: %s", n.ID, ErrUnknownCluster, n.Cluster)
		}
	}
	for _, id := range d.clusterOrder {
		seen := map[string]bool{}
		for cur := id; cur != ""; {
			if seen[cur] {
				return fmt.Errorf("cluster %s: %w", id, ErrClusterCycle)
			}
			seen[cur] = true
			c, ok := d.clusters[cur]
			if !ok {
				return fmt.Errorf("cluster %s: %w: %s", id, ErrUnknownCluster, cur)
			}
			cur = c.Parent
		}
	}
	return nil
}
