package diagram

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram/icons"
)

// Builder assembles a Diagram in script order. Node and cluster IDs are
// derived from labels, so the same sequence of calls always produces the
// same IDs.
//
// Builder methods never return errors. The first failure is recorded and
// reported by [Builder.Build]; calls after a failure are ignored.
type Builder struct {
	d       *Diagram
	cluster string
	err     *error
}

// NewBuilder starts a diagram.
func NewBuilder(name string, opts ...Option) *Builder {
	var err error
	return &Builder{d: New(name, opts...), err: &err}
}

func (b *Builder) fail(err error) {
	if *b.err == nil {
		*b.err = err
	}
}

func (b *Builder) failed() bool { return *b.err != nil }

// Node declares a node in the current cluster and returns its ID.
func (b *Builder) Node(icon icons.Icon, label string) string {
	if b.failed() {
		return ""
	}
	id := uniqueID(Slug(label), func(s string) bool { _, ok := b.d.nodes[s]; return ok })
	if err := b.d.AddNode(Node{ID: id, Label: label, Icon: icon, Cluster: b.cluster}); err != nil {
		b.fail(fmt.Errorf("node %q: %w", label, err))
		return ""
	}
	return id
}

// Nodes declares n nodes labeled by formatting format with 1..n.
func (b *Builder) Nodes(icon icons.Icon, format string, n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, b.Node(icon, fmt.Sprintf(format, i)))
	}
	return ids
}

// Cluster declares a cluster nested in the current one and runs fn with a
// builder scoped to it.
func (b *Builder) Cluster(label string, fn func(c *Builder)) {
	if b.failed() {
		return
	}
	id := uniqueID(Slug(label), func(s string) bool { _, ok := b.d.clusters[s]; return ok })
	if err := b.d.AddCluster(Cluster{ID: id, Label: label, Parent: b.cluster}); err != nil {
		b.fail(fmt.Errorf("cluster %q: %w", label, err))
		return
	}
	fn(&Builder{d: b.d, cluster: id, err: b.err})
}

// EdgeOption styles an edge declared through [Builder.Connect].
type EdgeOption func(*Edge)

// Label sets the edge text.
func Label(s string) EdgeOption { return func(e *Edge) { e.Label = s } }

// Color sets the stroke color.
func Color(c string) EdgeOption { return func(e *Edge) { e.Color = c } }

// Style sets the stroke pattern.
func Style(s EdgeStyle) EdgeOption { return func(e *Edge) { e.Style = s } }

// Dir sets the arrowhead placement.
func Dir(d EdgeDir) EdgeOption { return func(e *Edge) { e.Dir = d } }

// Attr sets a raw Graphviz edge attribute.
func Attr(key, value string) EdgeOption {
	return func(e *Edge) {
		if e.Attrs == nil {
			e.Attrs = Attrs{}
		}
		e.Attrs[key] = value
	}
}

// Connect declares an edge from one node to another.
func (b *Builder) Connect(from, to string, opts ...EdgeOption) {
	if b.failed() {
		return
	}
	e := Edge{From: from, To: to}
	for _, opt := range opts {
		opt(&e)
	}
	if err := b.d.AddEdge(e); err != nil {
		b.fail(fmt.Errorf("edge %s->%s: %w", from, to, err))
	}
}

// Fan connects every node in froms to to, in order.
func (b *Builder) Fan(froms []string, to string, opts ...EdgeOption) {
	for _, from := range froms {
		b.Connect(from, to, opts...)
	}
}

// Build returns the assembled diagram or the first recorded error.
func (b *Builder) Build() (*Diagram, error) {
	if *b.err != nil {
		return nil, *b.err
	}
	if err := b.d.Validate(); err != nil {
		return nil, err
	}
	return b.d, nil
}

// Slug derives an identifier from a label: lower-case alphanumerics separated
// by single dashes.
func Slug(label string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if sb.Len() == 0 {
		return "node"
	}
	return sb.String()
}

func uniqueID(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		if id := base + "-" + strconv.Itoa(i); !taken(id) {
			return id
		}
	}
}
