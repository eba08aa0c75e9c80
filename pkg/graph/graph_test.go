package graph

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/fourcolor/pkg/errors"
)

func quiet() *log.Logger { return log.New(io.Discard) }

func pt(x, y float64) vec.Vec2 { return vec.Vec2{X: x, Y: y} }

// seeded returns a graph with seeds A(15,60) and B(60,15) joined by an edge.
func seeded(t *testing.T) (*Graph, int, int) {
	t.Helper()
	g := New(quiet())
	a := g.AddNode(pt(15, 60))
	b := g.AddNode(pt(60, 15))
	if _, err := g.AddEdge(a, b); err != nil {
		t.Fatalf("AddEdge(seed) error: %v", err)
	}
	if err := g.SetSeeds(a, b); err != nil {
		t.Fatalf("SetSeeds() error: %v", err)
	}
	return g, a, b
}

func TestAddNode_MonotonicIDs(t *testing.T) {
	g := New(quiet())
	first := g.AddNode(pt(0, 0))
	second := g.AddNode(pt(10, 0))
	if first != 1 || second != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first, second)
	}
	if err := g.RemoveNode(second); err != nil {
		t.Fatalf("RemoveNode() error: %v", err)
	}
	if third := g.AddNode(pt(20, 0)); third != 3 {
		t.Errorf("id after removal = %d, want 3", third)
	}
}

func TestAddEdge_Errors(t *testing.T) {
	g := New(quiet())
	a := g.AddNode(pt(0, 0))
	b := g.AddNode(pt(10, 0))
	if _, err := g.AddEdge(a, b); err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}

	tests := []struct {
		name string
		a, b int
		code errors.Code
	}{
		{"duplicate", a, b, errors.ErrCodeDuplicateEdge},
		{"duplicate reversed", b, a, errors.ErrCodeDuplicateEdge},
		{"unknown first", 99, b, errors.ErrCodeInvalidReference},
		{"unknown second", a, 99, errors.ErrCodeInvalidReference},
		{"self loop", a, a, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddEdge(tt.a, tt.b)
			if !errors.Is(err, tt.code) {
				t.Errorf("AddEdge(%d, %d) error = %v, want code %s", tt.a, tt.b, err, tt.code)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestAddEdge_Symmetric(t *testing.T) {
	g := New(quiet())
	a := g.AddNode(pt(0, 0))
	b := g.AddNode(pt(10, 0))
	e, err := g.AddEdge(b, a)
	if err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}
	if e.A != a || e.B != b {
		t.Errorf("edge = %d-%d, want canonical %d-%d", e.A, e.B, a, b)
	}
	na, _ := g.Node(a)
	nb, _ := g.Node(b)
	if !na.HasNeighbor(b) || !nb.HasNeighbor(a) {
		t.Error("neighbor sets are not symmetric")
	}
	if diff := cmp.Diff([]int{b}, na.Rotation()); diff != "" {
		t.Errorf("rotation of %d mismatch (-want +got):\n%s", a, diff)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New(quiet())
	a := g.AddNode(pt(0, 0))
	b := g.AddNode(pt(10, 0))
	g.AddEdge(a, b)

	if err := g.RemoveEdge(b, a); err != nil {
		t.Fatalf("RemoveEdge() error: %v", err)
	}
	if _, ok := g.Edge(a, b); ok {
		t.Error("edge still present after removal")
	}
	na, _ := g.Node(a)
	if na.Degree() != 0 || len(na.Rotation()) != 0 {
		t.Errorf("node %d keeps degree %d rotation %v", a, na.Degree(), na.Rotation())
	}
	if err := g.RemoveEdge(a, b); !errors.Is(err, errors.ErrCodeInvalidReference) {
		t.Errorf("second RemoveEdge() error = %v, want INVALID_REFERENCE", err)
	}
}

func TestRemoveNode_DropsIncidentEdges(t *testing.T) {
	g := New(quiet())
	center := g.AddNode(pt(0, 0))
	var leaves []int
	for _, p := range []vec.Vec2{pt(0, -10), pt(10, 0), pt(0, 10)} {
		id := g.AddNode(p)
		g.AddEdge(center, id)
		leaves = append(leaves, id)
	}

	if err := g.RemoveNode(center); err != nil {
		t.Fatalf("RemoveNode() error: %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	for _, id := range leaves {
		n, _ := g.Node(id)
		if n.Degree() != 0 {
			t.Errorf("leaf %d degree = %d, want 0", id, n.Degree())
		}
	}
	if diff := cmp.Diff(leaves, g.NodeIDs()); diff != "" {
		t.Errorf("NodeIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestNeighborColors(t *testing.T) {
	g := New(quiet())
	center := g.AddNode(pt(0, 0))
	for i, c := range []Color{Blue, Yellow, Blue, Red} {
		id := g.AddNode(pt(float64(10*(i+1)), 0))
		g.SetColor(id, c)
		g.AddEdge(center, id)
	}
	want := []Color{Yellow, Blue, Red}
	if diff := cmp.Diff(want, g.NeighborColors(center)); diff != "" {
		t.Errorf("NeighborColors() mismatch (-want +got):\n%s", diff)
	}
}

func TestMidpoint_Curvature(t *testing.T) {
	g := New(quiet())
	a := g.AddNode(pt(0, 0))
	b := g.AddNode(pt(100, 0))
	e, _ := g.AddEdge(a, b)
	if got := g.Midpoint(e); got != pt(50, 0) {
		t.Errorf("Midpoint() = %v, want (50,0)", got)
	}
	if err := g.SetCurvature(a, b, pt(0, -30)); err != nil {
		t.Fatalf("SetCurvature() error: %v", err)
	}
	if got := g.Midpoint(e); got != pt(50, -30) {
		t.Errorf("curved Midpoint() = %v, want (50,-30)", got)
	}
}

func TestProper(t *testing.T) {
	g := New(quiet())
	a := g.AddNode(pt(0, 0))
	b := g.AddNode(pt(10, 0))
	g.AddEdge(a, b)
	g.SetColor(a, Yellow)
	g.SetColor(b, Green)
	if !g.Proper() {
		t.Error("Proper() = false for distinct colors")
	}
	g.SetColor(b, Yellow)
	if g.Proper() {
		t.Error("Proper() = true for a monochrome edge")
	}
	g.SetColor(a, Overflow)
	g.SetColor(b, Overflow)
	if !g.Proper() {
		t.Error("Proper() = false for overflow endpoints")
	}
}

func TestColor_String(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Yellow, "yellow"},
		{Green, "green"},
		{Blue, "blue"},
		{Red, "red"},
		{Overflow, "violet"},
		{Color(9), "color(9)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Color(%d).String() = %q, want %q", int(tt.c), got, tt.want)
		}
		if c, ok := ParseColor(tt.want); ok && c != tt.c {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.want, c, tt.c)
		}
	}
}
