package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fourcolor/pkg/engine"
	"github.com/matzehuels/fourcolor/pkg/graph"
	"github.com/matzehuels/fourcolor/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the color name, rotation and face in node labels.
	// When false, only the node id is shown.
	Detailed bool

	// Warnings highlights edge pairs that leave a node too close together
	// and edges that cross.
	Warnings bool
}

var fills = map[graph.Color]string{
	graph.NoColor:  "#ffffff",
	graph.Yellow:   "#f5d547",
	graph.Green:    "#5cb85c",
	graph.Blue:     "#4a90d9",
	graph.Red:      "#d9534f",
	graph.Overflow: "#9b59b6",
}

// FillColor returns the hex fill used for a palette color.
func FillColor(c graph.Color) string {
	if f, ok := fills[c]; ok {
		return f
	}
	return fills[graph.NoColor]
}

// ToDOT converts a snapshot to Graphviz DOT with every node pinned at its
// canvas position. The result is meant for the neato engine, which
// [RenderSVG] selects.
//
// Boundary nodes get a heavy outline, enclosed nodes a dashed one, and the
// current overflow node is drawn as a double circle.
func ToDOT(s engine.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.45, fontsize=12];\n")
	buf.WriteString("  edge [penwidth=1.5];\n")
	buf.WriteString("\n")

	overflow := 0
	if s.Overflow != nil {
		overflow = s.Overflow.Node
	}
	for _, n := range s.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == overflow)
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	warned := make(map[[2]int]bool)
	crossed := make(map[[2]int]bool)
	if opts.Warnings {
		for _, w := range s.Warnings {
			warned[edgeKey(w.Node, w.First)] = true
			warned[edgeKey(w.Node, w.Next)] = true
		}
		for _, c := range s.Crossings {
			crossed[edgeKey(c.First[0], c.First[1])] = true
			crossed[edgeKey(c.Second[0], c.Second[1])] = true
		}
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		var attrs []string
		if e.Fixed {
			attrs = append(attrs, "style=bold")
		}
		switch k := edgeKey(e.A, e.B); {
		case crossed[k]:
			attrs = append(attrs, "color=\"#c0392b\"", "style=dashed")
		case warned[k]:
			attrs = append(attrs, "color=\"#e67e22\"")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %d -- %d;\n", e.A, e.B)
			continue
		}
		fmt.Fprintf(&buf, "  %d -- %d [%s];\n", e.A, e.B, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func fmtLabel(n engine.NodeView, detailed bool) string {
	id := strconv.Itoa(n.ID)
	if !detailed {
		return id
	}
	face := "enclosed"
	if n.Boundary {
		face = "boundary"
	}
	rot := make([]string, len(n.Rotation))
	for i, r := range n.Rotation {
		rot[i] = strconv.Itoa(r)
	}
	return id + "\n" + n.Name + "\n" + face + "\n[" + strings.Join(rot, " ") + "]"
}

func fmtAttrs(n engine.NodeView, label string, overflow bool) []string {
	// Graphviz y grows upward
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%g,%g!\"", n.Pos.X, -n.Pos.Y),
		fmt.Sprintf("fillcolor=%q", FillColor(n.Color)),
	}
	switch {
	case overflow:
		attrs = append(attrs, "shape=doublecircle", "penwidth=2")
	case n.Boundary:
		attrs = append(attrs, "penwidth=3")
	default:
		attrs = append(attrs, "style=\"filled,dashed\"")
	}
	return attrs
}

// RenderSVG lays out a DOT graph with neato and renders it to SVG.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
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

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
