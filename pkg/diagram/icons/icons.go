// Package icons is the catalog of shape classes a diagram node can use.
//
// Icons are addressed by a dotted key of the form provider.category.name,
// for example "onprem.monitoring.prometheus" or "k8s.compute.pod". Each icon
// carries a fill color taken from its provider palette, which is what the
// renderer uses when no PNG asset is available. When an assets directory is
// configured, [Icon.Asset] resolves the conventional image path
// <dir>/<provider>/<category>/<name>.png.
package icons

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Icon identifies a node shape class.
type Icon struct {
	Provider string
	Category string
	Name     string
	Color    string // fill color used when rendering without an image asset
}

// Key returns the dotted catalog key.
func (i Icon) Key() string {
	return i.Provider + "." + i.Category + "." + i.Name
}

// IsZero reports whether i is the zero Icon.
func (i Icon) IsZero() bool { return i == Icon{} }

// Asset returns the PNG path for i under dir if such a file exists.
func (i Icon) Asset(dir string) (string, bool) {
	if dir == "" || i.IsZero() {
		return "", false
	}
	path := filepath.Join(dir, i.Provider, i.Category, i.Name+".png")
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Provider palettes.
const (
	colorK8s         = "#326CE5"
	colorOnPrem      = "#E6522C"
	colorProgramming = "#6DB33F"
	colorGeneric     = "#B2BEC3"
)

// Built-in icons.
var (
	Pod     = Icon{"k8s", "compute", "pod", colorK8s}
	Node    = Icon{"k8s", "infra", "node", colorK8s}
	Service = Icon{"k8s", "network", "service", colorK8s}

	Prometheus = Icon{"onprem", "monitoring", "prometheus", colorOnPrem}
	Grafana    = Icon{"onprem", "monitoring", "grafana", "#F46800"}
	Tempo      = Icon{"onprem", "tracing", "tempo", "#F2CC0C"}
	Loki       = Icon{"onprem", "logging", "loki", "#F2A20C"}
	Server     = Icon{"onprem", "compute", "server", colorGeneric}

	Spring  = Icon{"programming", "framework", "spring", colorProgramming}
	Quarkus = Icon{"programming", "framework", "quarkus", "#4695EB"}

	Blank = Icon{"generic", "blank", "blank", colorGeneric}
)

var catalog = func() map[string]Icon {
	m := make(map[string]Icon)
	for _, i := range []Icon{Pod, Node, Service, Prometheus, Grafana, Tempo, Loki, Server, Spring, Quarkus, Blank} {
		m[i.Key()] = i
	}
	return m
}()

// Lookup returns the icon registered under key. Keys are case-insensitive.
func Lookup(key string) (Icon, bool) {
	i, ok := catalog[strings.ToLower(strings.TrimSpace(key))]
	return i, ok
}

// MustLookup is like Lookup but panics if key is unknown.
// Intended for package-level tables of known icons.
func MustLookup(key string) Icon {
	i, ok := Lookup(key)
	if !ok {
		panic("icons: unknown icon " + key)
	}
	return i
}

// All returns every registered icon sorted by key.
func All() []Icon {
	out := make([]Icon, 0, len(catalog))
	for _, i := range catalog {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b Icon) int { return strings.Compare(a.Key(), b.Key()) })
	return out
}
