package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
)

// rsvgPath names the librsvg converter looked up on PATH.
var rsvgPath = "rsvg-convert"

const rsvgInstallHint = "install librsvg (macOS: brew install librsvg, Linux: apt install librsvg2-bin)"

// ToPDF converts an SVG document to PDF with rsvg-convert.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convertSVG(ctx, svg, "pdf")
}

// ToPNG rasterizes an SVG document at the given zoom, so 2 doubles the
// pixel dimensions.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return convertSVG(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convertSVG(ctx context.Context, svg []byte, format string, flags ...string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackendUnavailable, err,
			"%s output needs %s: %s", strings.ToUpper(format), rsvgPath, rsvgInstallHint)
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, flags...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err,
			"%s conversion failed: %s", format, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
