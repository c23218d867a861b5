package icons

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		key  string
		want Icon
		ok   bool
	}{
		{"k8s.compute.pod", Pod, true},
		{"ONPREM.Monitoring.Prometheus", Prometheus, true},
		{" onprem.logging.loki ", Loki, true},
		{"aws.compute.ec2", Icon{}, false},
		{"", Icon{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Lookup(tt.key)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic on unknown key")
		}
	}()
	MustLookup("nope.nope.nope")
}

func TestAllSortedAndUnique(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("All() returned no icons")
	}
	seen := make(map[string]bool)
	for i, ic := range all {
		if seen[ic.Key()] {
			t.Errorf("duplicate key %s", ic.Key())
		}
		seen[ic.Key()] = true
		if i > 0 && all[i-1].Key() >= ic.Key() {
			t.Errorf("All() not sorted at %d: %s >= %s", i, all[i-1].Key(), ic.Key())
		}
		if ic.Color == "" {
			t.Errorf("%s has no color", ic.Key())
		}
	}
}

func TestAsset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "k8s", "compute", "pod.png")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	got, ok := Pod.Asset(dir)
	if !ok || got != path {
		t.Errorf("Pod.Asset() = %q, %v; want %q, true", got, ok, path)
	}
	if _, ok := Loki.Asset(dir); ok {
		t.Error("Loki.Asset() should be missing")
	}
	if _, ok := Pod.Asset(""); ok {
		t.Error("Asset with empty dir should be missing")
	}
	if _, ok := (Icon{}).Asset(dir); ok {
		t.Error("zero icon should have no asset")
	}
}
