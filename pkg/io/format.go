package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/depgraph/pkg/errors"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Formats lists the supported document formats.
var Formats = []Format{FormatJSON, FormatCSV}

// baseFilename is the stem of every exported file.
const baseFilename = "dependency_graph"

// ParseFormat converts a user-supplied format name ("json", "CSV", ".csv").
// Returns INVALID_FORMAT for anything else.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (must be 'json' or 'csv')", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer format of %q without an extension", path)
	}
	return ParseFormat(ext)
}

// DefaultFilename returns the conventional export filename for an extension,
// e.g. "dependency_graph.json" for "json" or "dependency_graph.png" for "png".
func DefaultFilename(ext string) string {
	return baseFilename + "." + strings.TrimPrefix(ext, ".")
}
