package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/telemetry-lab/stackdiagrams/pkg/diagram"
	"github.com/telemetry-lab/stackdiagrams/pkg/errors"
)

// Definition file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// FormatFromPath returns the codec for a path based on its extension.
func FormatFromPath(path string) (string, error) {
	ext, err := errors.ValidateDefinitionFilename(filepath.Base(path))
	if err != nil {
		return "", err
	}
	if ext == "yml" {
		return FormatYAML, nil
	}
	return ext, nil
}

// ReadJSON decodes a JSON definition from r.
func ReadJSON(r io.Reader) (*diagram.Diagram, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "decode json")
	}
	return def.Diagram()
}

// WriteJSON encodes d as an indented JSON definition.
func WriteJSON(d *diagram.Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDiagram(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON returns the JSON definition of d.
func MarshalJSON(d *diagram.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadTOML decodes a TOML definition from r. Keys that do not map to a
// definition field are rejected.
func ReadTOML(r io.Reader) (*diagram.Diagram, error) {
	var def Definition
	md, err := toml.NewDecoder(r).Decode(&def)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidDefinition, "unknown toml keys: %s", strings.Join(keys, ", "))
	}
	return def.Diagram()
}

// WriteTOML encodes d as a TOML definition.
func WriteTOML(d *diagram.Diagram, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(FromDiagram(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadYAML decodes a YAML definition from r.
func ReadYAML(r io.Reader) (*diagram.Diagram, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "decode yaml")
	}
	return def.Diagram()
}

// WriteYAML encodes d as a YAML definition.
func WriteYAML(d *diagram.Diagram, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromDiagram(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Read decodes a definition in the given format.
func Read(r io.Reader, format string) (*diagram.Diagram, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported definition format %q", format)
}

// Write encodes a definition in the given format.
func Write(d *diagram.Diagram, w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(d, w)
	case FormatTOML:
		return WriteTOML(d, w)
	case FormatYAML:
		return WriteYAML(d, w)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported definition format %q", format)
}

// Import reads the definition file at path, choosing the codec by extension.
func Import(path string) (*diagram.Diagram, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "definition %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Export writes d to path, choosing the codec by extension.
func Export(d *diagram.Diagram, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(d, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
