package engine

import (
	"github.com/matzehuels/fourcolor/pkg/config"
	"github.com/matzehuels/fourcolor/pkg/graph"
)

// Snapshot is an immutable copy of the engine state for rendering.
type Snapshot struct {
	Session   string          `json:"session"`
	Nodes     []NodeView      `json:"nodes"`
	Edges     []EdgeView      `json:"edges"`
	Overflow  *OverflowView   `json:"overflow,omitempty"`
	Queue     int             `json:"queue"`
	Pending   []OverflowView  `json:"pending,omitempty"` // every queued node, head first
	Warnings  []AngleWarning  `json:"warnings,omitempty"`
	Crossings []CrossingView  `json:"crossings,omitempty"`
	Boundary  BoundarySummary `json:"boundary"`
	Proper    bool            `json:"proper"`
}

// NodeView is the rendering view of one node.
type NodeView struct {
	ID       int          `json:"id"`
	Pos      config.Point `json:"pos"`
	Color    graph.Color  `json:"color"`
	Name     string       `json:"name"`
	Boundary bool         `json:"boundary"`
	Enclosed bool         `json:"enclosed"`
	Fixed    bool         `json:"fixed,omitempty"`
	Locked   bool         `json:"locked,omitempty"`
	Rotation []int        `json:"rotation"`
}

// EdgeView is the rendering view of one edge.
type EdgeView struct {
	A     int          `json:"a"`
	B     int          `json:"b"`
	Curve config.Point `json:"curve"`
	Mid   config.Point `json:"mid"`
	Fixed bool         `json:"fixed,omitempty"`
}

// OverflowView is the must-fix signal for the current overflow node.
type OverflowView struct {
	Node   int    `json:"node"`
	Reason string `json:"reason"`
}

// AngleWarning flags two edges leaving a node too close together.
type AngleWarning struct {
	Node  int     `json:"node"`
	First int     `json:"first"`
	Next  int     `json:"next"`
	Gap   float64 `json:"gap"`
}

// CrossingView names two edges whose drawn paths intersect.
type CrossingView struct {
	First  [2]int `json:"first"`
	Second [2]int `json:"second"`
}

// BoundarySummary reports the last outer face retrace.
type BoundarySummary struct {
	Walk     []int  `json:"walk"`
	Steps    int    `json:"steps"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Snapshot copies the current state. Nodes and edges are in creation order.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Session: e.session,
		Queue:   e.queue.Len(),
		Proper:  e.g.Proper(),
		Boundary: BoundarySummary{
			Walk:     append([]int(nil), e.boundary.Boundary...),
			Steps:    e.boundary.Steps,
			Fallback: e.boundary.Fallback,
			Reason:   e.boundary.Reason,
		},
	}
	for _, n := range e.g.Nodes() {
		rot := n.Rotation()
		if rot == nil {
			rot = []int{}
		}
		s.Nodes = append(s.Nodes, NodeView{
			ID:       n.ID,
			Pos:      config.Point{X: n.Pos.X, Y: n.Pos.Y},
			Color:    n.Color,
			Name:     n.Color.String(),
			Boundary: n.Boundary(),
			Enclosed: n.Enclosed(),
			Fixed:    n.Fixed,
			Locked:   n.Locked,
			Rotation: rot,
		})
	}
	for _, ed := range e.g.Edges() {
		mid := e.g.Midpoint(ed)
		s.Edges = append(s.Edges, EdgeView{
			A:     ed.A,
			B:     ed.B,
			Curve: config.Point{X: ed.Curve.X, Y: ed.Curve.Y},
			Mid:   config.Point{X: mid.X, Y: mid.Y},
			Fixed: ed.Fixed,
		})
	}
	if id, reason, ok := e.Overflow(); ok {
		s.Overflow = &OverflowView{Node: id, Reason: reason}
	}
	for _, q := range e.queue.Entries() {
		s.Pending = append(s.Pending, OverflowView{Node: q.Node, Reason: q.Reason})
	}
	for _, w := range e.warnings {
		s.Warnings = append(s.Warnings, AngleWarning(w))
	}
	for _, c := range e.crossings {
		s.Crossings = append(s.Crossings, CrossingView{
			First:  [2]int{c.First.A, c.First.B},
			Second: [2]int{c.Second.A, c.Second.B},
		})
	}
	return s
}

// Node returns the view of a single node.
func (s Snapshot) Node(id int) (NodeView, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

// ColorCounts returns how many nodes carry each color.
func (s Snapshot) ColorCounts() map[graph.Color]int {
	out := make(map[graph.Color]int)
	for _, n := range s.Nodes {
		out[n.Color]++
	}
	return out
}
