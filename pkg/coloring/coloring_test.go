package coloring

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/graph"
)

func quiet() *log.Logger { return log.New(io.Discard) }

func newGraph() *graph.Graph { return graph.New(quiet()) }

// addColored adds a node at (x, y) with color c.
func addColored(t *testing.T, g *graph.Graph, x, y float64, c Color) int {
	t.Helper()
	id := g.AddNode(vec.Vec2{X: x, Y: y})
	if err := g.SetColor(id, c); err != nil {
		t.Fatalf("SetColor() error: %v", err)
	}
	return id
}

func connect(t *testing.T, g *graph.Graph, pairs ...[2]int) {
	t.Helper()
	for _, p := range pairs {
		if _, err := g.AddEdge(p[0], p[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d) error: %v", p[0], p[1], err)
		}
	}
}

// wheel builds a hub holding the sentinel inside a rim cycle colored 1,2,3,4.
func wheel(t *testing.T) (g *graph.Graph, hub int, rim []int) {
	t.Helper()
	g = newGraph()
	rim = []int{
		addColored(t, g, 100, 0, graph.Yellow),
		addColored(t, g, 200, 100, graph.Green),
		addColored(t, g, 100, 200, graph.Blue),
		addColored(t, g, 0, 100, graph.Red),
	}
	hub = addColored(t, g, 100, 100, graph.Overflow)
	for i := range rim {
		connect(t, g, [2]int{rim[i], rim[(i+1)%len(rim)]}, [2]int{hub, rim[i]})
	}
	return g, hub, rim
}

func colorsOf(g *graph.Graph) map[int]Color {
	out := make(map[int]Color)
	for _, n := range g.Nodes() {
		out[n.ID] = n.Color
	}
	return out
}

func TestAssignColor(t *testing.T) {
	tests := []struct {
		name      string
		neighbors []Color
		want      Color
	}{
		{"isolated", nil, graph.Yellow},
		{"lowest free", []Color{graph.Yellow, graph.Green}, graph.Blue},
		{"gap", []Color{graph.Yellow, graph.Blue}, graph.Green},
		{"only red free", []Color{graph.Blue, graph.Green, graph.Yellow}, graph.Red},
		{"exhausted", []Color{graph.Red, graph.Blue, graph.Green, graph.Yellow}, graph.Overflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph()
			center := addColored(t, g, 0, 0, graph.NoColor)
			for i, c := range tt.neighbors {
				nb := addColored(t, g, float64(10*(i+1)), 0, c)
				connect(t, g, [2]int{center, nb})
			}
			if got := AssignColor(g, center); got != tt.want {
				t.Errorf("AssignColor() = %v, want %v", got, tt.want)
			}
			if n, _ := g.Node(center); n.Color != graph.NoColor {
				t.Errorf("AssignColor() mutated color to %v", n.Color)
			}
		})
	}
}

func TestCheckConflicts(t *testing.T) {
	t.Run("no collision", func(t *testing.T) {
		g := newGraph()
		a := addColored(t, g, 0, 0, graph.Blue)
		b := addColored(t, g, 10, 0, graph.Yellow)
		connect(t, g, [2]int{a, b})

		out := CheckConflicts(g, a)
		if out.Changed || out.Overflow || out.To != graph.Blue {
			t.Errorf("CheckConflicts() = %+v, want unchanged blue", out)
		}
	})

	t.Run("collision recolors", func(t *testing.T) {
		g := newGraph()
		a := addColored(t, g, 0, 0, graph.Yellow)
		b := addColored(t, g, 10, 0, graph.Yellow)
		connect(t, g, [2]int{a, b})

		out := CheckConflicts(g, b)
		if !out.Changed || out.To != graph.Green {
			t.Errorf("CheckConflicts() = %+v, want green", out)
		}
		if !g.Proper() {
			t.Error("graph not proper after recolor")
		}
	})

	t.Run("uncolored node", func(t *testing.T) {
		g := newGraph()
		a := addColored(t, g, 0, 0, graph.NoColor)
		out := CheckConflicts(g, a)
		if out.To != graph.Yellow {
			t.Errorf("CheckConflicts() = %+v, want yellow", out)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		g, hub, _ := wheel(t)
		_ = g.SetColor(hub, graph.Yellow)

		out := CheckConflicts(g, hub)
		if !out.Overflow || out.To != graph.Overflow {
			t.Fatalf("CheckConflicts() = %+v, want overflow", out)
		}
		if out.Reason != ReasonNoFreeColor {
			t.Errorf("Reason = %q, want %q", out.Reason, ReasonNoFreeColor)
		}
		if n, _ := g.Node(hub); n.Color != graph.Overflow {
			t.Errorf("hub color = %v, want sentinel committed", n.Color)
		}
	})
}

func TestResolveCurrent_Wheel(t *testing.T) {
	g, hub, rim := wheel(t)
	q := NewQueue()
	q.Enqueue(hub, ReasonNoFreeColor)
	r := NewResolver(q, quiet())

	res, err := r.ResolveCurrent(g)
	if err != nil {
		t.Fatalf("ResolveCurrent() error: %v", err)
	}
	if !res.Color.IsReal() {
		t.Fatalf("hub resolved to %v, want a real color", res.Color)
	}
	for _, id := range rim {
		if n, _ := g.Node(id); n.Color == res.Color {
			t.Errorf("rim node %d shares color %v with the hub", id, res.Color)
		}
	}
	if !g.Proper() {
		t.Error("graph not proper after resolution")
	}
	if q.State() != Idle {
		t.Errorf("queue state = %v, want idle", q.State())
	}

	// (yellow, green) are adjacent on the rim, (yellow, blue) are opposite
	if !res.Swapped || res.C1 != graph.Yellow || res.C2 != graph.Blue {
		t.Errorf("Resolution = %+v, want yellow/blue swap", res)
	}
	if diff := cmp.Diff([]int{rim[0]}, res.Chain); diff != "" {
		t.Errorf("Chain mismatch (-want +got):\n%s", diff)
	}
	if res.Rebalance == nil || !res.Rebalance.Skipped {
		t.Errorf("Rebalance = %+v, want skipped with no boundary nodes", res.Rebalance)
	}
}

func TestResolveCurrent_FreeColor(t *testing.T) {
	g := newGraph()
	a := addColored(t, g, 0, 0, graph.Overflow)
	b := addColored(t, g, 10, 0, graph.Yellow)
	connect(t, g, [2]int{a, b})

	q := NewQueue()
	q.Enqueue(a, "")
	res, err := NewResolver(q, quiet()).ResolveCurrent(g)
	if err != nil {
		t.Fatalf("ResolveCurrent() error: %v", err)
	}
	if res.Swapped || res.Color != graph.Green {
		t.Errorf("Resolution = %+v, want green without swap", res)
	}
}

func TestResolveCurrent_Exhaustion(t *testing.T) {
	// K5 is not planar: every color pair links inside the neighborhood
	g := newGraph()
	rim := []int{
		addColored(t, g, 100, 0, graph.Yellow),
		addColored(t, g, 200, 100, graph.Green),
		addColored(t, g, 100, 200, graph.Blue),
		addColored(t, g, 0, 100, graph.Red),
	}
	hub := addColored(t, g, 100, 100, graph.Overflow)
	for i, a := range rim {
		connect(t, g, [2]int{hub, a})
		for _, b := range rim[i+1:] {
			connect(t, g, [2]int{a, b})
		}
	}
	before := colorsOf(g)

	q := NewQueue()
	q.Enqueue(hub, ReasonNoFreeColor)
	_, err := NewResolver(q, quiet()).ResolveCurrent(g)
	if !errors.Is(err, errors.ErrCodeKempeExhaustion) {
		t.Fatalf("ResolveCurrent() error = %v, want KEMPE_EXHAUSTION", err)
	}
	var ex *errors.ExhaustionError
	if !stderrors.As(err, &ex) || ex.Pairs != 6 || ex.NodeID != hub {
		t.Errorf("ExhaustionError = %+v, want node %d after 6 pairs", ex, hub)
	}
	if diff := cmp.Diff(before, colorsOf(g)); diff != "" {
		t.Errorf("colors mutated on exhaustion (-before +after):\n%s", diff)
	}
	if cur, ok := q.Current(); !ok || cur.Node != hub {
		t.Errorf("Current() = %+v, %v, want hub still queued", cur, ok)
	}
}

func TestResolveCurrent_Idle(t *testing.T) {
	_, err := NewResolver(NewQueue(), quiet()).ResolveCurrent(newGraph())
	if err != ErrIdle {
		t.Errorf("ResolveCurrent() error = %v, want ErrIdle", err)
	}
}

func TestResolveCurrent_MissingNode(t *testing.T) {
	q := NewQueue()
	q.Enqueue(42, "")
	_, err := NewResolver(q, quiet()).ResolveCurrent(newGraph())
	if !errors.Is(err, errors.ErrCodeInvalidReference) {
		t.Errorf("ResolveCurrent() error = %v, want INVALID_REFERENCE", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want stale entry dropped", q.Len())
	}
}

func TestDrain(t *testing.T) {
	g, hub, _ := wheel(t)
	lone := addColored(t, g, 500, 500, graph.Overflow)

	q := NewQueue()
	q.Enqueue(hub, ReasonNoFreeColor)
	q.Enqueue(lone, ReasonNoFreeColor)
	got, err := NewResolver(q, quiet()).Drain(g)
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Drain() resolved %d nodes, want 2", len(got))
	}
	if got[0].Rebalance != nil {
		t.Error("rebalance ran before the queue drained")
	}
	if got[1].Rebalance == nil {
		t.Error("rebalance did not run after the queue drained")
	}
	if got[1].Color != graph.Yellow {
		t.Errorf("isolated node color = %v, want yellow", got[1].Color)
	}
}

func TestKempeChain(t *testing.T) {
	g := newGraph()
	a := addColored(t, g, 0, 0, graph.Yellow)
	b := addColored(t, g, 10, 0, graph.Blue)
	c := addColored(t, g, 20, 0, graph.Yellow)
	d := addColored(t, g, 30, 0, graph.Green)
	e := addColored(t, g, 40, 0, graph.Blue)
	connect(t, g, [2]int{a, b}, [2]int{b, c}, [2]int{c, d}, [2]int{d, e})

	got := KempeChain(g, []int{a}, graph.Yellow, graph.Blue)
	if diff := cmp.Diff([]int{a, b, c}, got); diff != "" {
		t.Errorf("KempeChain() mismatch (-want +got):\n%s", diff)
	}
	if got := KempeChain(g, []int{d}, graph.Yellow, graph.Blue); len(got) != 0 {
		t.Errorf("KempeChain() from off-pair start = %v, want empty", got)
	}
}

// seededPath builds a path along the x axis with the given colors. The first
// two nodes are the seeds, so the outer face walk covers every node.
func seededPath(t *testing.T, colors ...Color) *graph.Graph {
	t.Helper()
	g := newGraph()
	ids := make([]int, len(colors))
	for i, c := range colors {
		ids[i] = addColored(t, g, float64(100*i), 0, c)
		if i > 0 {
			connect(t, g, [2]int{ids[i-1], ids[i]})
		}
	}
	if err := g.SetSeeds(ids[0], ids[1]); err != nil {
		t.Fatalf("SetSeeds() error: %v", err)
	}
	if res := g.UpdateBoundary(); res.Fallback || len(res.Boundary) != len(ids) {
		t.Fatalf("UpdateBoundary() = %+v, want every node on the boundary", res)
	}
	return g
}

func TestRebalance(t *testing.T) {
	Y, G, B, R := graph.Yellow, graph.Green, graph.Blue, graph.Red
	tests := []struct {
		name   string
		colors []Color
		want   RebalanceResult
		after  []Color
	}{
		{
			// every color once: yellow wins both ties
			name:   "no-op",
			colors: []Color{Y, G, B, R},
			want:   RebalanceResult{BoundaryMajority: Y, GlobalMinority: Y},
			after:  []Color{Y, G, B, R},
		},
		{
			name:   "swap with unused color",
			colors: []Color{G, Y, G, B},
			want:   RebalanceResult{BoundaryMajority: G, GlobalMinority: R, Swapped: 2},
			after:  []Color{R, Y, R, B},
		},
		{
			// yellow ties green on the boundary, blue ties red globally
			name:   "ties pick lowest",
			colors: []Color{Y, G, Y, G, B, R},
			want:   RebalanceResult{BoundaryMajority: Y, GlobalMinority: B, Swapped: 3},
			after:  []Color{B, G, B, G, Y, R},
		},
		{
			name:   "five node path",
			colors: []Color{Y, G, Y, G, B},
			want:   RebalanceResult{BoundaryMajority: Y, GlobalMinority: R, Swapped: 2},
			after:  []Color{R, G, R, G, B},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := seededPath(t, tt.colors...)

			got := Rebalance(g)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Rebalance() mismatch (-want +got):\n%s", diff)
			}
			var after []Color
			for _, n := range g.Nodes() {
				after = append(after, n.Color)
			}
			if diff := cmp.Diff(tt.after, after); diff != "" {
				t.Errorf("colors after Rebalance() mismatch (-want +got):\n%s", diff)
			}
			if !g.Proper() {
				t.Error("graph not proper after Rebalance()")
			}
		})
	}
}

func TestRebalance_IgnoresEnclosed(t *testing.T) {
	// the hub is enclosed, so its color counts globally but not on the boundary
	g, hub, rim := wheel(t)
	for id, c := range map[int]Color{hub: graph.Green, rim[1]: graph.Blue, rim[2]: graph.Yellow, rim[3]: graph.Blue} {
		_ = g.SetColor(id, c)
	}
	if err := g.SetSeeds(rim[0], rim[1]); err != nil {
		t.Fatalf("SetSeeds() error: %v", err)
	}
	g.UpdateBoundary()
	if n, _ := g.Node(hub); !n.Enclosed() {
		t.Fatal("hub should be enclosed by the rim")
	}

	got := Rebalance(g)
	want := RebalanceResult{BoundaryMajority: graph.Yellow, GlobalMinority: graph.Red, Swapped: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rebalance() mismatch (-want +got):\n%s", diff)
	}
	if n, _ := g.Node(hub); n.Color != graph.Green {
		t.Errorf("hub color = %v, want green untouched", n.Color)
	}
	if !g.Proper() {
		t.Error("graph not proper after Rebalance()")
	}
}

func TestQueue_Enqueue(t *testing.T) {
	q := NewQueue()
	tests := []struct {
		id     int
		reason string
		added  bool
		want   string
	}{
		{3, ReasonNoFreeColor, true, ReasonNoFreeColor},
		{4, "", true, DefaultReason},
		{5, "bad\x00reason", true, DefaultReason},
		{6, "   ", true, DefaultReason},
		{3, "again", false, ReasonNoFreeColor},
	}
	for _, tt := range tests {
		if got := q.Enqueue(tt.id, tt.reason); got != tt.added {
			t.Errorf("Enqueue(%d, %q) = %v, want %v", tt.id, tt.reason, got, tt.added)
		}
		if got, _ := q.Reason(tt.id); got != tt.want {
			t.Errorf("Reason(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}

	want := []Entry{
		{3, ReasonNoFreeColor},
		{4, DefaultReason},
		{5, DefaultReason},
		{6, DefaultReason},
	}
	if diff := cmp.Diff(want, q.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
