package graph

import (
	"slices"

	"github.com/matzehuels/fourcolor/pkg/errors"
)

// BoundaryResult describes one boundary retrace.
type BoundaryResult struct {
	Boundary []int  // boundary node ids in walk order
	Steps    int    // walk steps taken
	Fallback bool   // true if every node was marked boundary after a failure
	Reason   string // why the fallback was taken
}

// UpdateBoundary recomputes the boundary flag of every node by walking the
// outer face from the seed edge.
//
// Graphs with at most three nodes are entirely boundary. If the rotations are
// malformed or the walk exceeds the safety bound, every node is marked
// boundary and the failure is logged.
func (g *Graph) UpdateBoundary() BoundaryResult {
	if len(g.nodes) <= 3 {
		g.markAll(true)
		return BoundaryResult{Boundary: g.NodeIDs()}
	}

	visited, steps, err := g.walkOuterFace()
	if err != nil {
		g.logger.Warn("boundary walk failed, marking all nodes boundary", "error", err, "steps", steps)
		g.markAll(true)
		return BoundaryResult{
			Boundary: g.NodeIDs(),
			Steps:    steps,
			Fallback: true,
			Reason:   errors.UserMessage(err),
		}
	}

	g.markAll(false)
	for _, id := range visited {
		g.nodes[id].boundary = true
	}
	return BoundaryResult{Boundary: visited, Steps: steps}
}

// walkOuterFace follows the face to the right of the directed seed edge A→B
// and returns the distinct nodes visited in order.
func (g *Graph) walkOuterFace() ([]int, int, error) {
	a, b := g.seedA, g.seedB
	if _, ok := g.nodes[a]; !ok {
		return nil, 0, inconsistency("seed node %d missing", a)
	}
	if _, ok := g.nodes[b]; !ok {
		return nil, 0, inconsistency("seed node %d missing", b)
	}

	limit := g.safety * len(g.nodes)
	visited := []int{a, b}
	prev, cur := a, b
	for steps := 1; ; steps++ {
		if steps > limit {
			return nil, steps, inconsistency("walk did not close within %d steps", limit)
		}
		n, ok := g.nodes[cur]
		if !ok {
			return nil, steps, inconsistency("node %d missing during walk", cur)
		}
		if len(n.rotation) == 0 {
			return nil, steps, inconsistency("node %d has an empty rotation", cur)
		}
		i := slices.Index(n.rotation, prev)
		if i < 0 {
			return nil, steps, inconsistency("node %d absent from rotation of node %d", prev, cur)
		}
		next := n.rotation[(i+1)%len(n.rotation)]
		if cur == a && next == b {
			return visited, steps, nil
		}
		if !slices.Contains(visited, next) {
			visited = append(visited, next)
		}
		prev, cur = cur, next
	}
}

func (g *Graph) markAll(boundary bool) {
	for _, n := range g.nodes {
		n.boundary = boundary
	}
}

// BoundaryIDs returns the ids of all boundary nodes in creation order.
func (g *Graph) BoundaryIDs() []int {
	var out []int
	for _, id := range g.order {
		if g.nodes[id].boundary {
			out = append(out, id)
		}
	}
	return out
}

// EnclosedIDs returns the ids of all enclosed nodes in creation order.
func (g *Graph) EnclosedIDs() []int {
	var out []int
	for _, id := range g.order {
		if !g.nodes[id].boundary {
			out = append(out, id)
		}
	}
	return out
}

func inconsistency(format string, args ...any) error {
	return errors.New(errors.ErrCodeStructuralInconsistency, format, args...)
}
