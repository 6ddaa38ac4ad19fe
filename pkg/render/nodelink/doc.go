// Package nodelink renders task graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// each task is a rounded box labelled with its text and each dependency is an
// arrow from the dependent task to its prerequisite.
//
// # Usage
//
// Convert tasks to DOT format, then render:
//
//	dot := nodelink.ToDOT(store.Tasks(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [Render] dispatches on a [Format], and [ParseFormat] accepts user input such
// as "png" or ".svg".
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - RankDir: Graphviz layout direction (TB, LR, BT, RL); defaults to TB
//   - Highlight: ids drawn emphasized, with every other task dimmed
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG] or [RenderPNG]
//   - Saved and processed with external Graphviz tools
//
// Output is deterministic for a given task list, which makes the DOT source a
// suitable cache key for rendered images.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process. No system installation is required.
package nodelink
