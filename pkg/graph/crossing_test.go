package graph

import (
	"testing"

	"seehuhn.de/go/geom/vec"
)

func TestCrossings(t *testing.T) {
	tests := []struct {
		name  string
		nodes []vec.Vec2
		edges [][2]int // indexes into nodes
		curve vec.Vec2 // applied to the first edge
		want  int
	}{
		{
			name:  "x shape",
			nodes: []vec.Vec2{pt(0, 0), pt(100, 100), pt(100, 0), pt(0, 100)},
			edges: [][2]int{{0, 1}, {2, 3}},
			want:  1,
		},
		{
			name:  "parallel",
			nodes: []vec.Vec2{pt(0, 0), pt(100, 0), pt(0, 50), pt(100, 50)},
			edges: [][2]int{{0, 1}, {2, 3}},
		},
		{
			name:  "shared endpoint",
			nodes: []vec.Vec2{pt(0, 0), pt(100, 100), pt(100, 0)},
			edges: [][2]int{{0, 1}, {0, 2}},
		},
		{
			name:  "endpoint touches edge",
			nodes: []vec.Vec2{pt(0, 0), pt(100, 0), pt(50, 0), pt(50, 80)},
			edges: [][2]int{{0, 1}, {2, 3}},
		},
		{
			name:  "curve bends into edge",
			nodes: []vec.Vec2{pt(0, 0), pt(100, 0), pt(40, -50), pt(60, -50)},
			edges: [][2]int{{0, 1}, {2, 3}},
			curve: vec.Vec2{X: 0, Y: -60},
			want:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(quiet())
			ids := make([]int, len(tt.nodes))
			for i, p := range tt.nodes {
				ids[i] = g.AddNode(p)
			}
			for _, e := range tt.edges {
				if _, err := g.AddEdge(ids[e[0]], ids[e[1]]); err != nil {
					t.Fatalf("AddEdge() error: %v", err)
				}
			}
			first := tt.edges[0]
			if err := g.SetCurvature(ids[first[0]], ids[first[1]], tt.curve); err != nil {
				t.Fatalf("SetCurvature() error: %v", err)
			}

			got := g.Crossings()
			if len(got) != tt.want {
				t.Fatalf("Crossings() = %+v, want %d", got, tt.want)
			}
			if tt.want > 0 && (got[0].First.A != ids[first[0]] || got[0].Second.A != ids[tt.edges[1][0]]) {
				t.Errorf("Crossings()[0] = %+v, want edges in creation order", got[0])
			}
		})
	}
}
