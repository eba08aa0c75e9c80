package graph

import (
	"fmt"
	"slices"

	"seehuhn.de/go/geom/vec"
)

// =============================================================================
// Colors
// =============================================================================

// Color is a palette index. Lower values have higher assignment priority.
type Color int

// Palette colors, ordered by priority, followed by the overflow sentinel.
const (
	NoColor  Color = 0
	Yellow   Color = 1
	Green    Color = 2
	Blue     Color = 3
	Red      Color = 4
	Overflow Color = 5
)

// PaletteSize is the number of real colors.
const PaletteSize = 4

// Palette lists the real colors in priority order.
var Palette = [PaletteSize]Color{Yellow, Green, Blue, Red}

var colorNames = map[Color]string{
	Yellow:   "yellow",
	Green:    "green",
	Blue:     "blue",
	Red:      "red",
	Overflow: "violet",
}

// String returns the display name of the color.
func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// IsReal reports whether c is one of the four palette colors.
func (c Color) IsReal() bool { return c >= Yellow && c <= Red }

// ParseColor returns the color with the given display name.
func ParseColor(name string) (Color, bool) {
	for c, n := range colorNames {
		if n == name {
			return c, true
		}
	}
	return NoColor, false
}

// =============================================================================
// Node
// =============================================================================

// Node is a placed vertex of the embedding.
//
// Neighbors, rotation and the boundary flag are derived state owned by the
// [Graph]; read them through the accessor methods.
type Node struct {
	ID     int
	Pos    vec.Vec2
	Color  Color
	Fixed  bool // seed nodes only
	Locked bool // collaborator flag, no meaning to the engine

	boundary  bool
	neighbors []int
	rotation  []int
}

// Neighbors returns the neighbor ids in insertion order.
func (n *Node) Neighbors() []int { return slices.Clone(n.neighbors) }

// Rotation returns the neighbor ids in clockwise order.
func (n *Node) Rotation() []int { return slices.Clone(n.rotation) }

// Degree returns the number of incident edges.
func (n *Node) Degree() int { return len(n.neighbors) }

// Boundary reports whether the node lies on the outer face.
func (n *Node) Boundary() bool { return n.boundary }

// Enclosed reports whether the node lies strictly inside the outer face.
func (n *Node) Enclosed() bool { return !n.boundary }

// HasNeighbor reports whether id is adjacent to the node.
func (n *Node) HasNeighbor(id int) bool { return slices.Contains(n.neighbors, id) }

// =============================================================================
// Edge
// =============================================================================

// Edge is an undirected connection. A is always the smaller endpoint id.
type Edge struct {
	A, B  int
	Curve vec.Vec2 // midpoint displacement
	Fixed bool     // seed edge only
}

// Other returns the endpoint opposite id.
func (e *Edge) Other(id int) int {
	if e.A == id {
		return e.B
	}
	return e.A
}

// Has reports whether id is an endpoint of the edge.
func (e *Edge) Has(id int) bool { return e.A == id || e.B == id }

type edgeKey struct{ lo, hi int }

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}
