// Package render provides visualization rendering for task graphs.
//
// The [nodelink] subpackage renders directed graph diagrams using Graphviz.
// Tasks appear as boxes connected by arrows that point from a task to the
// tasks it depends on.
//
//	dot := nodelink.ToDOT(store.Tasks(), nodelink.Options{})
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/depgraph/pkg/render/nodelink
package render
