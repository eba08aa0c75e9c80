// Package render turns engine snapshots into files.
//
// # Overview
//
// This package holds the format conversions shared by every renderer:
//
//   - [ToJSON] encodes a snapshot as indented JSON
//   - [ToPDF] and [ToPNG] convert SVG using the external rsvg-convert tool
//
// The [nodelink] subpackage draws the snapshot itself with Graphviz:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/fourcolor/pkg/render/nodelink
package render
