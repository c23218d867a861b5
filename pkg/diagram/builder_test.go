package diagram

import (
	"errors"
	"testing"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram/icons"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Prometheus Metrics", "prometheus-metrics"},
		{"Infra Collector\n(Deployment)", "infra-collector-deployment"},
		{"VM-Pod-1", "vm-pod-1"},
		{"  --  ", "node"},
		{"KubeVirt Metrics\n(kubevirt-prometheus-metrics)", "kubevirt-metrics-kubevirt-prometheus-metrics"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuilderDeduplicatesIDs(t *testing.T) {
	b := NewBuilder("dup")
	a := b.Node(icons.Server, "Collector")
	c := b.Node(icons.Server, "collector")
	d := b.Node(icons.Server, "COLLECTOR")
	if a != "collector" || c != "collector-2" || d != "collector-3" {
		t.Errorf("ids = %q %q %q", a, c, d)
	}
}

func TestBuilderClusters(t *testing.T) {
	b := NewBuilder("clusters")
	var inner, outer []string
	b.Cluster("Outer", func(o *Builder) {
		outer = o.Nodes(icons.Node, "Node-%d", 2)
		o.Cluster("Inner", func(i *Builder) {
			inner = i.Nodes(icons.Pod, "Pod-%d", 3)
		})
	})
	top := b.Node(icons.Server, "Top")
	b.Fan(inner, top, Label("x"))
	b.Fan(outer, top)

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if d.NodeCount() != 6 || d.EdgeCount() != 5 || d.ClusterCount() != 2 {
		t.Errorf("counts = %d/%d/%d", d.NodeCount(), d.EdgeCount(), d.ClusterCount())
	}
	if got := d.NodesIn("inner"); len(got) != 3 {
		t.Errorf("NodesIn(inner) = %d nodes", len(got))
	}
	if c, _ := d.Cluster("inner"); c.Parent != "outer" {
		t.Errorf("inner parent = %q", c.Parent)
	}
	if n, _ := d.Node("top"); n.Cluster != "" {
		t.Errorf("top cluster = %q, want top level", n.Cluster)
	}
	for _, e := range d.Edges()[:3] {
		if e.Label != "x" {
			t.Errorf("edge %s->%s label = %q", e.From, e.To, e.Label)
		}
	}
}

func TestBuilderEdgeOptions(t *testing.T) {
	b := NewBuilder("opts")
	a := b.Node(icons.Spring, "A")
	z := b.Node(icons.Quarkus, "Z")
	b.Connect(a, z, Label("OTLP"), Color("darkgreen"), Style(StyleDashed), Dir(DirBoth), Attr("penwidth", "2"))
	d, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	e := d.Edges()[0]
	if e.Label != "OTLP" || e.Color != "darkgreen" || e.Style != StyleDashed || e.Dir != DirBoth || e.Attrs["penwidth"] != "2" {
		t.Errorf("edge = %+v", e)
	}
}

func TestBuilderRecordsFirstError(t *testing.T) {
	b := NewBuilder("broken")
	a := b.Node(icons.Server, "A")
	b.Connect(a, "missing")
	b.Connect("also-missing", a)
	if id := b.Node(icons.Server, "B"); id != "" {
		t.Errorf("Node() after failure = %q, want empty", id)
	}

	_, err := b.Build()
	if !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("Build() error = %v, want %v", err, ErrUnknownTargetNode)
	}
}

func TestBuilderDeterministic(t *testing.T) {
	build := func() *Diagram {
		b := NewBuilder("same")
		var pods []string
		b.Cluster("NS", func(c *Builder) { pods = c.Nodes(icons.Pod, "Pod-%d", 3) })
		s := b.Node(icons.Server, "Sink")
		b.Fan(pods, s)
		d, err := b.Build()
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	d1, d2 := build(), build()
	n1, n2 := d1.Nodes(), d2.Nodes()
	if len(n1) != len(n2) {
		t.Fatalf("node counts differ: %d vs %d", len(n1), len(n2))
	}
	for i := range n1 {
		if n1[i].ID != n2[i].ID || n1[i].Cluster != n2[i].Cluster {
			t.Errorf("node %d differs: %+v vs %+v", i, n1[i], n2[i])
		}
	}
	for i := range d1.Edges() {
		if d1.Edges()[i].From != d2.Edges()[i].From || d1.Edges()[i].To != d2.Edges()[i].To {
			t.Errorf("edge %d differs", i)
		}
	}
}
