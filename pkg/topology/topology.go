// Package topology holds the fixed architecture diagrams of the
// observability stack: the high-level design (hld) and the OTLP flow from
// the demo applications into the collector.
//
// Each diagram is a [Factory] that builds a fresh [diagram.Diagram] on every
// call, so callers may mutate the result (for example to override the
// direction) without affecting other callers.
package topology

import (
	"slices"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/diagram/icons"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
)

// Factory builds a diagram.
type Factory func() (*diagram.Diagram, error)

const (
	NameHLD      = "hld"
	NameOTLPFlow = "otlp-flow"
)

var registry = map[string]Factory{
	NameHLD:      HLD,
	NameOTLPFlow: OTLPFlow,
}

// Names returns the registered diagram names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Build builds the diagram registered under name.
func Build(name string) (*diagram.Diagram, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeDiagramNotFound, "unknown diagram %q (available: %v)", name, Names())
	}
	d, err := f()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build %s", name)
	}
	return d, nil
}

// HLD is the high-level design: infrastructure and application sources feed
// two collectors, which export to the metrics, traces and logs backends that
// Grafana reads.
func HLD() (*diagram.Diagram, error) {
	b := diagram.NewBuilder(NameHLD, diagram.WithDirection(diagram.TopToBottom))

	metrics := b.Node(icons.Prometheus, "Prometheus Metrics")
	traces := b.Node(icons.Tempo, "Tempo Traces")
	logs := b.Node(icons.Loki, "Loki Logs")
	grafana := b.Node(icons.Grafana, "Grafana Dashboards")

	infraCollector := b.Node(icons.Server, "Infra Collector\n(Deployment)")
	appCollector := b.Node(icons.Server, "App Collector\n(Deployment)")

	var kubevirt string
	var nodes, vmPods, appPods []string
	b.Cluster("Cluster Infra", func(c *diagram.Builder) {
		kubevirt = c.Node(icons.Service, "KubeVirt Metrics\n(kubevirt-prometheus-metrics)")
		nodes = c.Nodes(icons.Node, "Node-%d", 3)
		vmPods = c.Nodes(icons.Pod, "VM-Pod-%d", 3)
	})
	b.Cluster("App Namespace", func(c *diagram.Builder) {
		appPods = c.Nodes(icons.Pod, "MyApp-Pod-%d", 3)
	})

	b.Connect(kubevirt, infraCollector)
	b.Fan(nodes, infraCollector)
	b.Fan(vmPods, infraCollector)
	b.Fan(appPods, appCollector)

	b.Connect(infraCollector, metrics)
	b.Connect(appCollector, metrics)
	b.Connect(appCollector, traces)
	b.Connect(appCollector, logs)

	b.Fan([]string{metrics, traces, logs}, grafana)

	return b.Build()
}

// OTLPFlow shows the two demo applications exporting telemetry over OTLP to
// a single collector, and the collector fanning signals out to the backends.
func OTLPFlow() (*diagram.Diagram, error) {
	b := diagram.NewBuilder(NameOTLPFlow,
		diagram.WithDirection(diagram.LeftToRight),
		diagram.WithCurveStyle(diagram.CurveSpline),
	)

	var frontend, backend string
	b.Cluster("Applications", func(c *diagram.Builder) {
		frontend = c.Node(icons.Spring, "Spring Boot\nFrontend")
		backend = c.Node(icons.Quarkus, "Quarkus\nBackend")
	})

	collector := b.Node(icons.Server, "OTel Collector")

	var metrics, traces, logs string
	b.Cluster("Observability Backend", func(c *diagram.Builder) {
		metrics = c.Node(icons.Prometheus, "Prometheus")
		traces = c.Node(icons.Tempo, "Tempo")
		logs = c.Node(icons.Loki, "Loki")
	})
	grafana := b.Node(icons.Grafana, "Grafana")

	b.Connect(frontend, backend, diagram.Label("HTTP /analyze"), diagram.Style(diagram.StyleDashed))

	otlp := []diagram.EdgeOption{diagram.Label("OTLP"), diagram.Color("darkgreen"), diagram.Style(diagram.StyleBold)}
	b.Fan([]string{frontend, backend}, collector, otlp...)

	b.Connect(collector, metrics, diagram.Label("metrics"), diagram.Color("firebrick"))
	b.Connect(collector, traces, diagram.Label("traces"), diagram.Color("darkorange"))
	b.Connect(collector, logs, diagram.Label("logs"), diagram.Color("royalblue"))

	b.Fan([]string{metrics, traces, logs}, grafana, diagram.Style(diagram.StyleDotted))

	return b.Build()
}
