package graph

import "seehuhn.de/go/geom/vec"

// Crossing names two edges whose drawn paths intersect away from their
// endpoints. A curved edge is drawn as two straight segments through its
// midpoint.
type Crossing struct {
	First  Edge
	Second Edge
}

// Crossings reports every pair of edges without a shared endpoint whose
// paths cross. Pairs come in edge creation order. The rotation system cannot
// represent such a drawing, so the outer face walk and Kempe resolution on it
// may fail.
func (g *Graph) Crossings() []Crossing {
	type path struct {
		e   *Edge
		pts []vec.Vec2
	}
	paths := make([]path, 0, len(g.edgeOrder))
	for _, k := range g.edgeOrder {
		e := g.edges[k]
		pts := []vec.Vec2{g.nodes[e.A].Pos, g.nodes[e.B].Pos}
		if e.Curve != (vec.Vec2{}) {
			pts = []vec.Vec2{pts[0], g.Midpoint(e), pts[1]}
		}
		paths = append(paths, path{e, pts})
	}

	var out []Crossing
	for i, p := range paths {
		for _, q := range paths[i+1:] {
			if p.e.Has(q.e.A) || p.e.Has(q.e.B) {
				continue
			}
			if pathsCross(p.pts, q.pts) {
				out = append(out, Crossing{First: *p.e, Second: *q.e})
			}
		}
	}
	return out
}

func pathsCross(p, q []vec.Vec2) bool {
	for i := 0; i+1 < len(p); i++ {
		for j := 0; j+1 < len(q); j++ {
			if segmentsCross(p[i], p[i+1], q[j], q[j+1]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper intersection of ab and cd. Touching at an
// endpoint and collinear overlap do not count.
func segmentsCross(a, b, c, d vec.Vec2) bool {
	d1 := orient(a, b, c)
	d2 := orient(a, b, d)
	d3 := orient(c, d, a)
	d4 := orient(c, d, b)
	return d1*d2 < 0 && d3*d4 < 0
}

func orient(a, b, c vec.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
