package workbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"wbdeps/pkg/logging"
)

// Format is the serialization of a document on disk.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the format from the file extension, falling back to
// sniffing the first non-space byte.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json", ".workbook":
		return FormatJSON
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Document is a decoded dashboard document.
type Document struct {
	Path   string
	Format Format
	// Root is the decoded tree. Repair edits it in place.
	Root interface{}
	// Mode is the permission of the file Root was read from.
	Mode os.FileMode

	raw []byte // original bytes as JSON
}

// Load reads and decodes the document at path. "-" reads standard input.
func Load(path string) (*Document, error) {
	var (
		data []byte
		err  error
		mode os.FileMode = 0o644
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		var info os.FileInfo
		if info, err = os.Stat(path); err == nil {
			mode = info.Mode().Perm()
			data, err = os.ReadFile(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	doc.Mode = mode
	logging.Debug("Workbook", "Loaded %s (%s, %d bytes)", path, doc.Format, len(data))
	return doc, nil
}

// Parse decodes data. path is only used to pick the format and in errors.
func Parse(path string, data []byte) (*Document, error) {
	format := DetectFormat(path, data)
	raw := data
	if format == FormatYAML {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s as YAML: %w", path, err)
		}
		raw = converted
	}

	root, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s as %s: %w", path, format, err)
	}
	return &Document{Path: path, Format: format, Root: root, raw: raw}, nil
}

// decode parses a single JSON value, keeping numbers as json.Number.
func decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}
