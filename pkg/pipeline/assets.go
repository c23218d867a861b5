package pipeline

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/telemetry-lab/stackdiagrams/pkg/cache"
	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
)

// assetFingerprint hashes the size and modification time of every icon
// asset d resolves under iconsDir, so replacing an icon in place changes the
// artifact key. It returns "" when no asset is used.
func assetFingerprint(d *diagram.Diagram, iconsDir string) string {
	if iconsDir == "" {
		return ""
	}
	var paths []string
	for _, n := range d.Nodes() {
		if path, ok := n.Icon.Asset(iconsDir); ok {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return ""
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	var b strings.Builder
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(&b, "%s missing\n", path)
			continue
		}
		fmt.Fprintf(&b, "%s %d %d\n", path, info.Size(), info.ModTime().UnixNano())
	}
	return cache.Hash([]byte(b.String()))
}
