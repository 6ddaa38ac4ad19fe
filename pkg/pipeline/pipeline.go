// Package pipeline turns a task graph into an exported artifact.
//
// Both the CLI and the HTTP API export through a [Runner] so that document
// encoding, Graphviz rendering and the artifact cache behave the same at
// every entry point.
//
// # Formats
//
//   - json, csv: documents produced by the io package, never cached
//   - dot: Graphviz source, never cached
//   - png, svg: rendered by Graphviz and cached by the hash of the DOT source
//
// # Usage
//
//	runner := pipeline.NewRunner(c, 24*time.Hour, logger)
//	result, err := runner.Export(ctx, store.Snapshot(), pipeline.Options{
//	    Format:  "png",
//	    RankDir: "LR",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(result.Filename(), result.Data, 0o644)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depgraph/pkg/errors"
	depio "github.com/matzehuels/depgraph/pkg/io"
	"github.com/matzehuels/depgraph/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is used when no format is requested.
const DefaultFormat = "json"

// DefaultTTL is how long rendered images stay cached.
const DefaultTTL = 24 * time.Hour

// Format constants for output formats.
const (
	FormatJSON = string(depio.FormatJSON)
	FormatCSV  = string(depio.FormatCSV)
	FormatPNG  = string(nodelink.FormatPNG)
	FormatSVG  = string(nodelink.FormatSVG)
	FormatDOT  = string(nodelink.FormatDOT)
)

// ValidFormats lists every export format, documents first.
var ValidFormats = []string{FormatJSON, FormatCSV, FormatPNG, FormatSVG, FormatDOT}

// =============================================================================
// Options - Export Configuration
// =============================================================================

// Options configures a single export.
type Options struct {
	// Format is one of [ValidFormats]. Case and a leading dot are ignored.
	Format string `json:"format"`

	// RankDir is the Graphviz rank direction for image formats.
	RankDir string `json:"rankdir,omitempty"`

	// Highlight lists task ids to emphasize in image formats.
	Highlight []string `json:"highlight,omitempty"`

	// Refresh bypasses the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives debug output. Defaults to the runner's logger.
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is an exported artifact.
type Result struct {
	Format string
	Data   []byte
	Cached bool
	Stats  Stats
}

// Stats contains export statistics.
type Stats struct {
	TaskCount int
	EdgeCount int
	Duration  time.Duration
}

// Filename returns the conventional file name for the result.
func (r *Result) Filename() string {
	return depio.DefaultFilename(r.Format)
}

// ContentType returns the MIME type of the result.
func (r *Result) ContentType() string {
	return ContentType(r.Format)
}

// Cacheable reports whether the result went through the artifact cache.
func (r *Result) Cacheable() bool {
	return Cacheable(r.Format)
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat normalizes format and checks that it is supported.
func ValidateFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if !slices.Contains(ValidFormats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unsupported format %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return f, nil
}

// IsDocument reports whether format is a re-importable document format.
func IsDocument(format string) bool {
	return format == FormatJSON || format == FormatCSV
}

// Cacheable reports whether exports in format are stored in the artifact cache.
func Cacheable(format string) bool {
	return format == FormatPNG || format == FormatSVG
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return nodelink.Format(format).ContentType()
	}
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	f, err := ValidateFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = f

	if o.RankDir == "" {
		o.RankDir = nodelink.DefaultRankDir
	}
	o.RankDir = strings.ToUpper(o.RankDir)
	if !slices.Contains(nodelink.RankDirs, o.RankDir) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"unsupported rank direction %q (must be one of: %s)", o.RankDir, strings.Join(nodelink.RankDirs, ", "))
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IsDocument reports whether the options select a document format.
func (o *Options) IsDocument() bool {
	return IsDocument(o.Format)
}

// Cacheable reports whether the output is stored in the artifact cache.
func (o *Options) Cacheable() bool {
	return Cacheable(o.Format)
}

// nodelinkOptions converts o to DOT generation options.
func (o *Options) nodelinkOptions() nodelink.Options {
	opts := nodelink.Options{RankDir: o.RankDir}
	if len(o.Highlight) > 0 {
		opts.Highlight = make(map[string]bool, len(o.Highlight))
		for _, id := range o.Highlight {
			opts.Highlight[id] = true
		}
	}
	return opts
}
