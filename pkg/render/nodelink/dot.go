package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

// Format identifies a rendered output.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatPNG, FormatSVG, FormatDOT}

// ParseFormat converts a user-supplied format name ("png", "SVG", ".dot").
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q (must be 'png', 'svg' or 'dot')", s)
	}
	return f, nil
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz"
	}
}

// RankDirs lists the accepted Graphviz rank directions.
var RankDirs = []string{"TB", "LR", "BT", "RL"}

// DefaultRankDir places prerequisites below their dependents.
const DefaultRankDir = "TB"

// Options configures node-link diagram rendering.
type Options struct {
	// RankDir is the Graphviz rankdir. Empty means [DefaultRankDir].
	RankDir string

	// Highlight marks the ids of tasks to emphasize, typically the result of a
	// text search. Other tasks are drawn dimmed. An empty set draws every task
	// normally.
	Highlight map[string]bool
}

// ToDOT converts tasks to Graphviz DOT format for node-link visualization.
// Each task becomes a node labelled with its text, and each dependency an edge
// from the dependent to its prerequisite. The resulting DOT string can be
// rendered using [RenderSVG], [RenderPNG], or [Render].
func ToDOT(tasks []graph.Task, opts Options) string {
	rankdir := strings.ToUpper(opts.RankDir)
	if !slices.Contains(RankDirs, rankdir) {
		rankdir = DefaultRankDir
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, t := range tasks {
		attrs := fmtAttrs(t, opts.Highlight)
		fmt.Fprintf(&buf, "  %q [%s];\n", t.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			fmt.Fprintf(&buf, "  %q -> %q;\n", t.ID, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(t graph.Task, highlight map[string]bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", t.Text)}
	switch {
	case len(highlight) == 0:
	case highlight[t.ID]:
		attrs = append(attrs, "fillcolor=\"#fff3b0\"", "penwidth=2")
	default:
		attrs = append(attrs, "color=lightgrey", "fontcolor=grey")
	}
	return attrs
}

// Render renders a DOT graph in the given format. FormatDOT returns the source
// unchanged.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return RenderPNG(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", format)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderGraphviz(ctx, dot, graphviz.PNG)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
