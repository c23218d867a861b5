package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/diagram/icons"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
)

func sample(t *testing.T) *diagram.Diagram {
	t.Helper()
	b := diagram.NewBuilder("Sample Flow",
		diagram.WithDirection(diagram.LeftToRight),
		diagram.WithCurveStyle(diagram.CurveSpline),
		diagram.WithFormats("png", "svg"),
		diagram.WithGraphAttr(diagram.Attrs{"pad": "0.5"}),
	)
	var app string
	b.Cluster("Apps", func(a *diagram.Builder) {
		a.Cluster("Team", func(tb *diagram.Builder) {
			app = tb.Node(icons.Spring, "Frontend")
		})
	})
	col := b.Node(icons.Server, "Collector")
	b.Connect(app, col, diagram.Label("OTLP"), diagram.Color("darkgreen"), diagram.Style(diagram.StyleBold))
	b.Connect(col, app, diagram.Dir(diagram.DirBoth), diagram.Attr("penwidth", "2"))
	d, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatTOML, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			orig := sample(t)
			var buf bytes.Buffer
			if err := Write(orig, &buf, format); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			got, err := Read(&buf, format)
			if err != nil {
				t.Fatalf("Read() error: %v\n%s", err, buf.String())
			}

			if got.Name() != orig.Name() || got.Direction() != orig.Direction() || got.CurveStyle() != orig.CurveStyle() {
				t.Errorf("header = %s/%s/%s", got.Name(), got.Direction(), got.CurveStyle())
			}
			if got.NodeCount() != orig.NodeCount() || got.EdgeCount() != orig.EdgeCount() || got.ClusterCount() != orig.ClusterCount() {
				t.Errorf("counts = %d/%d/%d", got.NodeCount(), got.EdgeCount(), got.ClusterCount())
			}
			if got.GraphAttr()["pad"] != "0.5" {
				t.Errorf("graph attr lost: %v", got.GraphAttr())
			}
			if n, ok := got.Node("frontend"); !ok || n.Icon != icons.Spring || n.Cluster != "team" {
				t.Errorf("frontend = %+v", n)
			}
			e := got.Edges()[0]
			if e.Label != "OTLP" || e.Color != "darkgreen" || e.Style != diagram.StyleBold {
				t.Errorf("edge = %+v", e)
			}
			if got.Edges()[1].Attrs["penwidth"] != "2" {
				t.Errorf("edge attrs lost: %+v", got.Edges()[1])
			}

			a, _ := MarshalJSON(orig)
			b, _ := MarshalJSON(got)
			if !bytes.Equal(a, b) {
				t.Errorf("round trip changed definition:\n%s\n%s", a, b)
			}
		})
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
		code errors.Code
	}{
		{"unknown icon", `{"name":"x","nodes":[{"id":"a","icon":"k8s.compute.nope"}],"edges":[]}`, errors.ErrCodeUnknownIcon},
		{"unknown field", `{"name":"x","nodez":[]}`, errors.ErrCodeInvalidDefinition},
		{"no name", `{"nodes":[],"edges":[]}`, errors.ErrCodeInvalidDefinition},
		{"bad direction", `{"name":"x","direction":"UP","nodes":[],"edges":[]}`, errors.ErrCodeInvalidDirection},
		{"bad format", `{"name":"x","formats":["gif"],"nodes":[],"edges":[]}`, errors.ErrCodeInvalidDefinition},
		{"dangling edge", `{"name":"x","nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b"}]}`, errors.ErrCodeInvalidDefinition},
		{"bad color", `{"name":"x","nodes":[{"id":"a"}],"edges":[{"from":"a","to":"a","color":"#zz"}]}`, errors.ErrCodeInvalidDefinition},
		{"bad style", `{"name":"x","nodes":[{"id":"a"}],"edges":[{"from":"a","to":"a","style":"wavy"}]}`, errors.ErrCodeInvalidDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.json))
			if err == nil {
				t.Fatal("ReadJSON() should fail")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestReadTOML_UnknownKey(t *testing.T) {
	src := `
name = "x"
colour = "red"

[[nodes]]
id = "a"
`
	_, err := ReadTOML(strings.NewReader(src))
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Errorf("ReadTOML() error = %v, want unknown key colour", err)
	}
}

func TestReadYAML_UnknownKey(t *testing.T) {
	src := "name: x\nnodes:\n  - id: a\n    colour: red\n"
	if _, err := ReadYAML(strings.NewReader(src)); !errors.Is(err, errors.ErrCodeInvalidDefinition) {
		t.Errorf("ReadYAML() error = %v, want INVALID_DEFINITION", err)
	}
}

func TestClusterOrdering(t *testing.T) {
	src := `
name: nested
clusters:
  - id: leaf
    parent: mid
  - id: mid
    parent: root
  - id: root
nodes:
  - id: a
    cluster: leaf
edges: []
`
	d, err := ReadYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadYAML() error: %v", err)
	}
	if got := d.ClusterDepth("leaf"); got != 3 {
		t.Errorf("ClusterDepth(leaf) = %d, want 3", got)
	}
}

func TestClusterCycle(t *testing.T) {
	src := `{"name":"c","clusters":[{"id":"a","parent":"b"},{"id":"b","parent":"a"}],"nodes":[],"edges":[]}`
	_, err := ReadJSON(strings.NewReader(src))
	if !errors.Is(err, errors.ErrCodeInvalidDefinition) || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("ReadJSON() error = %v, want cluster cycle", err)
	}

	src = `{"name":"c","clusters":[{"id":"a","parent":"ghost"}],"nodes":[],"edges":[]}`
	_, err = ReadJSON(strings.NewReader(src))
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("ReadJSON() error = %v, want unknown parent", err)
	}
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	d := sample(t)

	for _, name := range []string{"d.json", "d.toml", "d.yaml", "d.yml"} {
		path := filepath.Join(dir, name)
		if err := Export(d, path); err != nil {
			t.Fatalf("Export(%s) error: %v", name, err)
		}
		got, err := Import(path)
		if err != nil {
			t.Fatalf("Import(%s) error: %v", name, err)
		}
		if got.NodeCount() != d.NodeCount() {
			t.Errorf("Import(%s) nodes = %d, want %d", name, got.NodeCount(), d.NodeCount())
		}
	}

	if _, err := Import(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if err := Export(d, filepath.Join(dir, "d.txt")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Export(.txt) error = %v, want INVALID_FORMAT", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "d.txt")); !os.IsNotExist(err) {
		t.Error("Export(.txt) should not create a file")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.json":          FormatJSON,
		"dir/a.toml":      FormatTOML,
		"a.yaml":          FormatYAML,
		"/abs/path/a.yml": FormatYAML,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
}
