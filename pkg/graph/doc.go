// Package graph provides the planar embedding store used by the coloring engine.
//
// A [Graph] owns dense tables of [Node] and [Edge] values keyed by stable integer
// ids. Every other component holds ids, never pointers it keeps across calls.
// The store keeps three derived structures in sync with the edge table:
//
//   - Neighbor sets: insertion-ordered, symmetric across both endpoints
//   - Rotations: per-node clockwise neighbor order computed from geometry
//   - Boundary flags: outer-face membership computed by [Graph.UpdateBoundary]
//
// # Rotation System
//
// A node's rotation lists its neighbors by ascending entry angle. The entry angle
// of an edge at a node is the clockwise angle in degrees from screen north
// (negative y) to the direction from the node toward the edge's midpoint, where
// the midpoint is shifted by the edge's curvature offset:
//
//	north (0,-1) →   0°
//	east  (1, 0) →  90°
//	south (0, 1) → 180°
//	west  (-1,0) → 270°
//
// Rotations are recomputed automatically whenever an incident edge is added,
// removed or recurved, and when a node or one of its neighbors moves.
//
// # Boundary Tracing
//
// The outer face is walked starting along the seed edge A→B. At each node the
// walk leaves through the rotation entry that follows the node it arrived from.
// The walk stops when it traverses A→B again:
//
//	g.SetSeeds(a, b)
//	res := g.UpdateBoundary()
//	if res.Fallback {
//	    // malformed rotations; every node was marked boundary
//	}
//
// # Colors
//
// Nodes carry a [Color] in 1..5. Colors 1..4 form the palette ordered by
// priority; [Overflow] marks a node waiting for Kempe-chain resolution.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
package graph
