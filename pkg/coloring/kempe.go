package coloring

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/graph"
	"github.com/matzehuels/fourcolor/pkg/observability"
)

// ErrIdle is returned by ResolveCurrent when nothing is queued.
var ErrIdle error = errors.New(errors.ErrCodeInvalidInput, "overflow queue is idle")

// Resolution describes how one overflow node was recolored.
type Resolution struct {
	Node  int
	Color Color

	// Set when a Kempe chain was swapped to free Color.
	Swapped bool
	C1, C2  Color
	Chain   []int

	// Set when this resolution drained the queue.
	Rebalance *RebalanceResult
}

// Resolver drains an overflow queue against a graph.
type Resolver struct {
	queue  *Queue
	logger *log.Logger
}

// NewResolver creates a resolver for q. If logger is nil, log.Default() is used.
func NewResolver(q *Queue, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{queue: q, logger: logger}
}

// Queue returns the queue the resolver drains.
func (r *Resolver) Queue() *Queue { return r.queue }

// ResolveCurrent recolors the head of the queue with a real color.
//
// A color already free among the neighbors is assigned directly. Otherwise each
// unordered pair (c1, c2) of neighbor colors is tried in ascending order: the
// {c1,c2} chain is grown from the neighbors colored c1 and, if it reaches no
// neighbor colored c2, its colors are swapped and c1 is assigned.
//
// If no pair works the graph is left untouched, the node stays queued and an
// error carrying ErrCodeKempeExhaustion is returned. When the queue becomes
// empty the global rebalance runs once.
func (r *Resolver) ResolveCurrent(g *graph.Graph) (Resolution, error) {
	entry, ok := r.queue.Current()
	if !ok {
		return Resolution{}, ErrIdle
	}
	id := entry.Node
	if _, ok := g.Node(id); !ok {
		r.queue.Advance()
		return Resolution{Node: id}, errors.New(errors.ErrCodeInvalidReference, "queued node %d no longer exists", id)
	}

	res, err := r.recolor(g, id)
	if err != nil {
		r.logger.Error("kempe resolution failed", "node", id, "reason", entry.Reason, "error", err)
		observability.Coloring().OnExhaustion(id, err)
		return res, err
	}

	r.queue.Advance()
	if r.queue.Len() == 0 {
		rb := Rebalance(g)
		res.Rebalance = &rb
	}
	return res, nil
}

// Drain resolves queued nodes until the queue is empty. The first error aborts.
func (r *Resolver) Drain(g *graph.Graph) ([]Resolution, error) {
	var out []Resolution
	for r.queue.Len() > 0 {
		res, err := r.ResolveCurrent(g)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Resolver) recolor(g *graph.Graph, id int) (Resolution, error) {
	if c := AssignColor(g, id); c != graph.Overflow {
		setColor(g, id, c)
		r.logger.Debug("overflow resolved with free color", "node", id, "color", c)
		return Resolution{Node: id, Color: c}, nil
	}

	n, _ := g.Node(id)
	byColor := make(map[Color][]int)
	var present []Color
	for _, nb := range n.Neighbors() {
		m, _ := g.Node(nb)
		if !m.Color.IsReal() {
			continue
		}
		if _, seen := byColor[m.Color]; !seen {
			present = append(present, m.Color)
		}
		byColor[m.Color] = append(byColor[m.Color], nb)
	}
	slices.Sort(present)

	pairs := 0
	for i, c1 := range present {
		for _, c2 := range present[i+1:] {
			pairs++
			chain := KempeChain(g, byColor[c1], c1, c2)
			if containsAny(chain, byColor[c2]) {
				r.logger.Debug("kempe chain links both colors", "node", id, "c1", c1, "c2", c2, "chain", len(chain))
				continue
			}
			swapChain(g, chain, c1, c2)
			setColor(g, id, c1)
			r.logger.Debug("kempe chain swapped", "node", id, "c1", c1, "c2", c2, "chain", len(chain))
			observability.Coloring().OnKempeSwap(id, int(c1), int(c2), len(chain))
			return Resolution{Node: id, Color: c1, Swapped: true, C1: c1, C2: c2, Chain: chain}, nil
		}
	}

	colors := make([]int, len(present))
	for i, c := range present {
		colors[i] = int(c)
	}
	return Resolution{Node: id, Color: graph.Overflow}, &errors.ExhaustionError{NodeID: id, Pairs: pairs, Colors: colors}
}

// KempeChain returns the maximal set of nodes colored c1 or c2 that is
// connected to starts through edges whose endpoints both carry c1 or c2.
// Nodes are returned in breadth-first discovery order.
func KempeChain(g *graph.Graph, starts []int, c1, c2 Color) []int {
	in := func(id int) bool {
		n, ok := g.Node(id)
		return ok && (n.Color == c1 || n.Color == c2)
	}
	seen := make(map[int]bool)
	var chain, queue []int
	for _, s := range starts {
		if in(s) && !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		chain = append(chain, cur)
		n, _ := g.Node(cur)
		for _, nb := range n.Neighbors() {
			if !seen[nb] && in(nb) {
				seen[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return chain
}

func swapChain(g *graph.Graph, chain []int, c1, c2 Color) {
	for _, id := range chain {
		n, _ := g.Node(id)
		switch n.Color {
		case c1:
			setColor(g, id, c2)
		case c2:
			setColor(g, id, c1)
		}
	}
}

func containsAny(haystack, needles []int) bool {
	for _, n := range needles {
		if slices.Contains(haystack, n) {
			return true
		}
	}
	return false
}
