package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateDiagramName validates a diagram name used in URLs and file names.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences or separators
//   - Maximum length of 128 characters
func ValidateDiagramName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "diagram name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "diagram name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "diagram name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "diagram name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDefinitionFilename validates a definition file name by extension.
// It returns the lower-cased extension without the dot.
func ValidateDefinitionFilename(filename string) (string, error) {
	if filename == "" {
		return "", New(ErrCodeInvalidPath, "definition filename cannot be empty")
	}
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return "", New(ErrCodeInvalidFormat, "definition file %q has no extension (want .json, .toml, .yaml)", filename)
	}
	ext := strings.ToLower(filename[i+1:])
	switch ext {
	case "json", "toml", "yaml", "yml":
		return ext, nil
	}
	return "", New(ErrCodeInvalidFormat, "unsupported definition extension %q (want .json, .toml, .yaml)", ext)
}

// ValidateOutputDir validates an output directory for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputDir(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// colorRegex matches hex colors and Graphviz/X11 color names.
var colorRegex = regexp.MustCompile(`^(#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?|#[0-9A-Fa-f]{3}|[A-Za-z][A-Za-z0-9]*)$`)

// ValidateColor validates an edge or fill color.
// Empty is accepted and means "use the default".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidDefinition, "invalid color: %q", color)
	}
	return nil
}
