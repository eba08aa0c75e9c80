package coloring

import (
	"github.com/matzehuels/fourcolor/pkg/graph"
	"github.com/matzehuels/fourcolor/pkg/observability"
)

// RebalanceResult describes one global rebalance.
type RebalanceResult struct {
	BoundaryMajority Color // most common color on the outer face
	GlobalMinority   Color // least common color overall
	Swapped          int   // nodes recolored, 0 for a no-op
	Skipped          bool  // no boundary nodes, nothing compared
}

// Rebalance swaps the most common boundary color with the least common color
// overall. Ties resolve to the lowest color. Colors absent from the graph count
// as zero, so an unused color is always the global minority. When both picks
// are the same color nothing changes.
func Rebalance(g *graph.Graph) RebalanceResult {
	var boundary, global [graph.PaletteSize + 1]int
	anyBoundary := false
	for _, n := range g.Nodes() {
		if !n.Color.IsReal() {
			continue
		}
		global[n.Color]++
		if n.Boundary() {
			boundary[n.Color]++
			anyBoundary = true
		}
	}
	if !anyBoundary {
		return RebalanceResult{Skipped: true}
	}

	major, minor := graph.Palette[0], graph.Palette[0]
	for _, c := range graph.Palette[1:] {
		if boundary[c] > boundary[major] {
			major = c
		}
		if global[c] < global[minor] {
			minor = c
		}
	}
	res := RebalanceResult{BoundaryMajority: major, GlobalMinority: minor}
	if major == minor {
		return res
	}

	for _, n := range g.Nodes() {
		switch n.Color {
		case major:
			setColor(g, n.ID, minor)
			res.Swapped++
		case minor:
			setColor(g, n.ID, major)
			res.Swapped++
		}
	}
	observability.Coloring().OnRebalance(int(major), int(minor), res.Swapped)
	return res
}
