package render

import (
	"slices"
	"strings"

	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJPG  = "jpg"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// DefaultFormat is used when neither the caller nor the diagram names one.
const DefaultFormat = FormatPNG

// Formats lists every supported format in display order.
var Formats = []string{FormatPNG, FormatSVG, FormatJPG, FormatPDF, FormatDOT, FormatJSON}

// ContentTypes maps formats to HTTP content types.
var ContentTypes = map[string]string{
	FormatPNG:  "image/png",
	FormatSVG:  "image/svg+xml",
	FormatJPG:  "image/jpeg",
	FormatPDF:  "application/pdf",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatJSON: "application/json",
}

// ValidateFormat checks that f is a supported format.
func ValidateFormat(f string) error {
	if !slices.Contains(Formats, f) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", f, strings.Join(Formats, ", "))
	}
	return nil
}

// ParseFormats parses a comma-separated format list. "jpeg" is accepted as an
// alias for jpg. Duplicates are dropped; order is preserved. An empty string
// yields nil so callers can fall back to diagram defaults.
func ParseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "jpeg" {
			f = FormatJPG
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}
