package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
	"github.com/telemetry-lab/stackdiagrams/pkg/render"
)

// Render produces the artifact for format from DOT source.
// FormatDOT returns the source unchanged. FormatJSON is not handled here
// because it is a definition export, not a rendering.
func Render(ctx context.Context, dot string, format string) ([]byte, error) {
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return RenderSVG(ctx, dot)
	case render.FormatPNG:
		return RenderPNG(ctx, dot)
	case render.FormatJPG:
		return RenderJPG(ctx, dot)
	case render.FormatPDF:
		return RenderPDF(ctx, dot)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "nodelink cannot render %q", format)
}

// wasmMu serializes access to go-graphviz. Its parser and renderer share one
// wasm module whose memory is not safe for concurrent use.
var wasmMu sync.Mutex

// Check parses dot without rendering it, reporting syntax errors.
func Check(dot string) error {
	wasmMu.Lock()
	defer wasmMu.Unlock()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	return g.Close()
}

func renderWith(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	wasmMu.Lock()
	defer wasmMu.Unlock()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackendUnavailable, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders DOT to SVG using Graphviz.
// The root element gets a zero-origin viewBox with pixel width and height.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := renderWith(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders DOT to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderWith(ctx, dot, graphviz.PNG)
}

// RenderJPG renders DOT to JPEG using Graphviz.
func RenderJPG(ctx context.Context, dot string) ([]byte, error) {
	return renderWith(ctx, dot, graphviz.JPG)
}

// RenderPDF renders DOT as PDF via SVG conversion.
// It needs rsvg-convert on PATH.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
