package graph

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/vec"
)

// EntryAngle returns the clockwise angle in degrees, in [0,360), from screen
// north to the direction from -> toward. Screen coordinates grow downward, so
// north is (0,-1). Coincident points yield 0.
func EntryAngle(from, toward vec.Vec2) float64 {
	d := toward.Sub(from)
	if d.X == 0 && d.Y == 0 {
		return 0
	}
	deg := math.Atan2(d.X, -d.Y) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// EdgeAngle returns the entry angle of the edge to neighbor nb at node id.
func (g *Graph) EdgeAngle(id, nb int) (float64, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return 0, false
	}
	e, ok := g.edges[keyOf(id, nb)]
	if !ok {
		return 0, false
	}
	return EntryAngle(n.Pos, g.Midpoint(e)), true
}

// UpdateRotation recomputes the clockwise neighbor order of a node.
// Equal angles keep neighbor insertion order.
func (g *Graph) UpdateRotation(id int) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	type entry struct {
		id    int
		angle float64
	}
	entries := make([]entry, 0, len(n.neighbors))
	for _, nb := range n.neighbors {
		a, _ := g.EdgeAngle(id, nb)
		entries = append(entries, entry{id: nb, angle: a})
	}
	slices.SortStableFunc(entries, func(x, y entry) int { return cmp.Compare(x.angle, y.angle) })

	n.rotation = n.rotation[:0]
	for _, e := range entries {
		n.rotation = append(n.rotation, e.id)
	}
}

// AngleWarning flags two consecutive rotation entries whose entry angles are
// closer than the configured minimum gap.
type AngleWarning struct {
	Node  int
	First int
	Next  int
	Gap   float64
}

// AngleWarnings reports consecutive edge pairs, including the wrap-around
// pair, whose angular gap is below minGap degrees. Nodes with fewer than two
// edges never warn.
func (g *Graph) AngleWarnings(minGap float64) []AngleWarning {
	var out []AngleWarning
	for _, id := range g.order {
		n := g.nodes[id]
		if len(n.rotation) < 2 {
			continue
		}
		for i, cur := range n.rotation {
			next := n.rotation[(i+1)%len(n.rotation)]
			a1, _ := g.EdgeAngle(id, cur)
			a2, _ := g.EdgeAngle(id, next)
			gap := a2 - a1
			if gap < 0 {
				gap += 360
			}
			if gap < minGap {
				out = append(out, AngleWarning{Node: id, First: cur, Next: next, Gap: gap})
			}
		}
	}
	return out
}
