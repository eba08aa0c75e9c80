package graph

import (
	"slices"

	"github.com/charmbracelet/log"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/fourcolor/pkg/errors"
)

// DefaultSafetyFactor bounds the boundary walk at factor × node count steps.
const DefaultSafetyFactor = 2

// Graph is the arena store for nodes and edges of a planar embedding.
//
// The zero value is not usable - use New to create a valid Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes     map[int]*Node
	order     []int // node ids in creation order
	edges     map[edgeKey]*Edge
	edgeOrder []edgeKey
	nextID    int

	seedA, seedB int
	safety       int
	logger       *log.Logger
}

// New creates an empty graph. Node ids start at 1.
// If logger is nil, log.Default() is used.
func New(logger *log.Logger) *Graph {
	if logger == nil {
		logger = log.Default()
	}
	return &Graph{
		nodes:  make(map[int]*Node),
		edges:  make(map[edgeKey]*Edge),
		nextID: 1,
		safety: DefaultSafetyFactor,
		logger: logger,
	}
}

// SetSafetyFactor changes the boundary walk bound. Values below 1 are ignored.
func (g *Graph) SetSafetyFactor(f int) {
	if f >= 1 {
		g.safety = f
	}
}

// SetSeeds designates the two nodes whose edge anchors the outer face walk.
func (g *Graph) SetSeeds(a, b int) error {
	if _, ok := g.nodes[a]; !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown seed node %d", a)
	}
	if _, ok := g.nodes[b]; !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown seed node %d", b)
	}
	if a == b {
		return errors.New(errors.ErrCodeInvalidInput, "seed nodes must differ")
	}
	g.seedA, g.seedB = a, b
	return nil
}

// Seeds returns the seed pair, or zeros if none was set.
func (g *Graph) Seeds() (a, b int) { return g.seedA, g.seedB }

// =============================================================================
// Nodes
// =============================================================================

// AddNode places a new uncolored node and returns its id.
// Ids are monotonic and never reused.
func (g *Graph) AddNode(pos vec.Vec2) int {
	id := g.nextID
	g.nextID++
	g.nodes[id] = &Node{ID: id, Pos: pos}
	g.order = append(g.order, id)
	return id
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeIDs returns all node ids in creation order.
func (g *Graph) NodeIDs() []int { return slices.Clone(g.order) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// RemoveNode deletes a node after removing all of its incident edges.
// Rotations of former neighbors are recomputed.
func (g *Graph) RemoveNode(id int) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id)
	}
	for _, nb := range slices.Clone(n.neighbors) {
		if err := g.RemoveEdge(id, nb); err != nil {
			return err
		}
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(v int) bool { return v == id })
	if id == g.seedA || id == g.seedB {
		g.seedA, g.seedB = 0, 0
	}
	return nil
}

// MoveNode repositions a node and recomputes the rotations it affects.
func (g *Graph) MoveNode(id int, pos vec.Vec2) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id)
	}
	n.Pos = pos
	g.UpdateRotation(id)
	for _, nb := range n.neighbors {
		g.UpdateRotation(nb)
	}
	return nil
}

// SetColor assigns a color without any conflict checking.
func (g *Graph) SetColor(id int, c Color) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id)
	}
	n.Color = c
	return nil
}

// NeighborColors returns the distinct colors of id's neighbors in ascending order.
func (g *Graph) NeighborColors(id int) []Color {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	var out []Color
	for _, nb := range n.neighbors {
		c := g.nodes[nb].Color
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// =============================================================================
// Edges
// =============================================================================

// AddEdge connects a and b and recomputes both rotations.
// Returns ErrCodeInvalidReference for unknown ids, ErrCodeInvalidInput for a
// self-loop and ErrCodeDuplicateEdge if the pair is already connected.
func (g *Graph) AddEdge(a, b int) (*Edge, error) {
	na, ok := g.nodes[a]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidReference, "unknown node %d", a)
	}
	nb, ok := g.nodes[b]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidReference, "unknown node %d", b)
	}
	if a == b {
		return nil, errors.New(errors.ErrCodeInvalidInput, "self-loop on node %d", a)
	}
	k := keyOf(a, b)
	if _, exists := g.edges[k]; exists {
		return nil, errors.New(errors.ErrCodeDuplicateEdge, "edge %d-%d already exists", k.lo, k.hi)
	}

	e := &Edge{A: k.lo, B: k.hi}
	g.edges[k] = e
	g.edgeOrder = append(g.edgeOrder, k)
	na.neighbors = append(na.neighbors, b)
	nb.neighbors = append(nb.neighbors, a)

	g.UpdateRotation(a)
	g.UpdateRotation(b)
	return e, nil
}

// RemoveEdge disconnects a and b and recomputes both rotations.
func (g *Graph) RemoveEdge(a, b int) error {
	k := keyOf(a, b)
	if _, ok := g.edges[k]; !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown edge %d-%d", k.lo, k.hi)
	}
	delete(g.edges, k)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(v edgeKey) bool { return v == k })

	na, nb := g.nodes[a], g.nodes[b]
	na.neighbors = slices.DeleteFunc(na.neighbors, func(v int) bool { return v == b })
	nb.neighbors = slices.DeleteFunc(nb.neighbors, func(v int) bool { return v == a })

	g.UpdateRotation(a)
	g.UpdateRotation(b)
	return nil
}

// Edge returns the edge between a and b in either orientation.
func (g *Graph) Edge(a, b int) (*Edge, bool) {
	e, ok := g.edges[keyOf(a, b)]
	return e, ok
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, k := range g.edgeOrder {
		out = append(out, g.edges[k])
	}
	return out
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SetCurvature replaces an edge's midpoint offset and recomputes both rotations.
func (g *Graph) SetCurvature(a, b int, offset vec.Vec2) error {
	e, ok := g.edges[keyOf(a, b)]
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown edge %d-%d", a, b)
	}
	e.Curve = offset
	g.UpdateRotation(a)
	g.UpdateRotation(b)
	return nil
}

// Midpoint returns the curvature-adjusted midpoint of an edge.
func (g *Graph) Midpoint(e *Edge) vec.Vec2 {
	pa, pb := g.nodes[e.A].Pos, g.nodes[e.B].Pos
	return pa.Add(pb).Mul(0.5).Add(e.Curve)
}

// Proper reports whether no edge joins two nodes of the same color.
// Nodes holding the overflow sentinel are ignored.
func (g *Graph) Proper() bool {
	for _, e := range g.edges {
		ca, cb := g.nodes[e.A].Color, g.nodes[e.B].Color
		if ca == Overflow || cb == Overflow {
			continue
		}
		if ca == cb {
			return false
		}
	}
	return true
}
