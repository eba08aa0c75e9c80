// Package coloring assigns palette colors and resolves palette exhaustion with
// Kempe-chain swaps.
//
// Assignment is greedy: a node receives the lowest of the four real colors that
// none of its neighbors carries. When all four are taken the node receives the
// [graph.Overflow] sentinel and is queued for the [Resolver], which frees a
// color by swapping a two-colored chain reachable from the node's neighbors.
//
// After the queue drains the resolver runs a single [Rebalance] that trades
// the most common outer-face color for the rarest color overall.
//
// Every committed color change is reported through
// observability.Coloring().OnColorChange so collaborators can redraw.
package coloring

import (
	"slices"

	"github.com/matzehuels/fourcolor/pkg/graph"
	"github.com/matzehuels/fourcolor/pkg/observability"
)

// Color aliases the graph color type so callers need only this package.
type Color = graph.Color

// ReasonNoFreeColor is the overflow reason recorded by CheckConflicts.
const ReasonNoFreeColor = "no lower priorities available"

// AssignColor returns the lowest real color absent among id's neighbors,
// or graph.Overflow if all four are present. It does not mutate the graph.
func AssignColor(g *graph.Graph, id int) Color {
	used := g.NeighborColors(id)
	for _, c := range graph.Palette {
		if !slices.Contains(used, c) {
			return c
		}
	}
	return graph.Overflow
}

// Outcome is the result of a conflict check.
type Outcome struct {
	Node     int
	From, To Color
	Changed  bool   // a new color was committed
	Overflow bool   // the node now holds the sentinel and must be queued
	Reason   string // set when Overflow is true
}

// CheckConflicts recolors id if its current color collides with a neighbor.
// Uncolored nodes are treated as colliding. The new color is committed even
// when it is the overflow sentinel; the caller is responsible for queueing.
func CheckConflicts(g *graph.Graph, id int) Outcome {
	n, ok := g.Node(id)
	if !ok {
		return Outcome{Node: id}
	}
	out := Outcome{Node: id, From: n.Color, To: n.Color}
	if n.Color != graph.NoColor && !slices.Contains(g.NeighborColors(id), n.Color) {
		return out
	}

	next := AssignColor(g, id)
	out.To = next
	if next != n.Color {
		setColor(g, id, next)
		out.Changed = true
	}
	if next == graph.Overflow {
		out.Overflow = true
		out.Reason = ReasonNoFreeColor
	}
	return out
}

// setColor commits a color and notifies the coloring hooks.
func setColor(g *graph.Graph, id int, c Color) {
	n, ok := g.Node(id)
	if !ok || n.Color == c {
		return
	}
	from := n.Color
	_ = g.SetColor(id, c)
	observability.Coloring().OnColorChange(id, int(from), int(c))
}
