// Package nodelink renders coloring snapshots as node-link diagrams.
//
// # Overview
//
// Every node is drawn at its canvas position, filled with its palette color.
// Graphviz's neato engine keeps the pinned positions and routes the edges.
//
// # Usage
//
//	dot := nodelink.ToDOT(e.Snapshot(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
//   - Boundary nodes: heavy outline
//   - Enclosed nodes: dashed outline
//   - Overflow node: double circle in the sentinel color
//   - Seed edge: bold
//   - Edges named by angle warnings: orange, when Options.Warnings is set
//   - Crossing edges: dashed red, when Options.Warnings is set
//
// Edge curvature is not drawn; Graphviz routes edges straight.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
