// Package engine is the single owner of an interactive four-coloring session.
//
// An [Engine] holds the embedding store, the overflow queue and the Kempe
// resolver, and exposes the structural commands a drawing collaborator issues:
// place, connect, recurve, move, remove and resolve. Every command runs to
// completion synchronously, recomputes the affected rotations, retraces the
// outer face and rechecks colors before it returns.
//
// # Seeds
//
// New creates two fixed seed nodes (ids 1 and 2) joined by a fixed edge. The
// outer face walk always starts along that edge, so the seeds anchor which
// side of the drawing is outside. Seeds and the seed edge can never be moved,
// removed or recurved.
//
// # Commands
//
// Each command comes in two forms. The boolean form matches what a UI needs:
//
//	id, ok := e.PlaceNode(vec.Vec2{X: 200, Y: 120})
//	res := e.ConnectNew(id, []int{1, 2})
//
// The error form (Place, Link, Curve, Move, Remove, Unlink) returns a coded
// error from pkg/errors so callers such as the HTTP facade can tell an unknown
// id from a duplicate edge.
//
// # Overflow
//
// When a connection leaves a node with all four colors among its neighbors,
// the node takes the sentinel color and is queued. The collaborator then calls
// ResolveOverflowHead until Overflow reports an empty queue. A resolution
// failure carries ErrCodeKempeExhaustion and is never retried silently.
//
// # Concurrency
//
// An Engine is not safe for concurrent use.
package engine

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/fourcolor/pkg/coloring"
	"github.com/matzehuels/fourcolor/pkg/config"
	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/graph"
	"github.com/matzehuels/fourcolor/pkg/observability"
)

// Engine owns all state of one coloring session.
type Engine struct {
	cfg      config.Config
	logger   *log.Logger
	session  string
	g        *graph.Graph
	queue    *coloring.Queue
	resolver *coloring.Resolver

	seedA, seedB int
	boundary     graph.BoundaryResult
	warnings     []graph.AngleWarning
	crossings    []graph.Crossing
}

// New creates an engine with its seed pair in place.
// If logger is nil, log.Default() is used.
func New(cfg config.Config, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		cfg:     cfg,
		session: uuid.NewString(),
	}
	e.logger = logger.With("session", e.session[:8])
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

// init builds a fresh graph holding only the seeds.
func (e *Engine) init() error {
	e.g = graph.New(e.logger)
	e.g.SetSafetyFactor(e.cfg.SafetyFactor)
	e.queue = coloring.NewQueue()
	e.resolver = coloring.NewResolver(e.queue, e.logger)

	e.seedA = e.g.AddNode(toVec(e.cfg.SeedA))
	e.seedB = e.g.AddNode(toVec(e.cfg.SeedB))
	for _, id := range []int{e.seedA, e.seedB} {
		n, _ := e.g.Node(id)
		n.Fixed = true
		coloring.CheckConflicts(e.g, id)
	}
	edge, err := e.g.AddEdge(e.seedA, e.seedB)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "connect seeds")
	}
	edge.Fixed = true
	coloring.CheckConflicts(e.g, e.seedB)
	if err := e.g.SetSeeds(e.seedA, e.seedB); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "set seeds")
	}
	e.retrace()
	return nil
}

// Reset discards every node except the seeds and empties the overflow queue.
// The session id is kept.
func (e *Engine) Reset() {
	if err := e.init(); err != nil {
		// init only fails on a broken config, which New already rejected
		e.logger.Error("reset failed", "error", err)
		return
	}
	e.logger.Info("engine reset")
}

// Session returns the engine's session id.
func (e *Engine) Session() string { return e.session }

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Seeds returns the ids of the two fixed seed nodes.
func (e *Engine) Seeds() (a, b int) { return e.seedA, e.seedB }

// Color returns the current color of a node.
func (e *Engine) Color(id int) (graph.Color, bool) {
	n, ok := e.g.Node(id)
	if !ok {
		return graph.NoColor, false
	}
	return n.Color, true
}

// Proper reports whether no edge joins two equal real colors.
func (e *Engine) Proper() bool { return e.g.Proper() }

// =============================================================================
// Placement
// =============================================================================

// PlaceNode adds an unconnected node and reports its id.
// It returns false for positions inside the protected zone.
func (e *Engine) PlaceNode(pos vec.Vec2) (int, bool) {
	id, err := e.Place(pos)
	if err != nil {
		e.logger.Debug("placement refused", "x", pos.X, "y", pos.Y, "error", err)
		return 0, false
	}
	return id, true
}

// Place adds an unconnected node colored from an empty neighborhood.
//
// A position closer than three node radii to an existing node is pushed out
// along the same ray to four radii. Positions with both coordinates below the
// protected zone limit are refused with ErrCodeProtectedZone.
func (e *Engine) Place(pos vec.Vec2) (int, error) {
	if err := errors.ValidatePoint(pos.X, pos.Y); err != nil {
		return 0, err
	}
	if e.inProtectedZone(pos) {
		return 0, errors.New(errors.ErrCodeProtectedZone, "(%.0f,%.0f) is inside the protected zone", pos.X, pos.Y)
	}
	pos = e.pushAway(pos)
	if e.inProtectedZone(pos) {
		return 0, errors.New(errors.ErrCodeProtectedZone, "pushed position (%.0f,%.0f) is inside the protected zone", pos.X, pos.Y)
	}

	id := e.g.AddNode(pos)
	out := coloring.CheckConflicts(e.g, id)
	e.retrace()
	e.logger.Debug("node placed", "node", id, "x", pos.X, "y", pos.Y, "color", out.To)
	return id, nil
}

func (e *Engine) inProtectedZone(p vec.Vec2) bool {
	return p.X < e.cfg.ProtectedZone && p.Y < e.cfg.ProtectedZone
}

// pushAway moves p out to 4r from its nearest node if it lies within 3r.
func (e *Engine) pushAway(p vec.Vec2) vec.Vec2 {
	r := e.cfg.NodeRadius
	var nearest *graph.Node
	best := math.Inf(1)
	for _, n := range e.g.Nodes() {
		if d := p.Sub(n.Pos).Length(); d < best {
			best, nearest = d, n
		}
	}
	if nearest == nil || best >= 3*r {
		return p
	}
	dir := vec.Vec2{X: 1, Y: 0}
	if best > 0 {
		dir = p.Sub(nearest.Pos).Mul(1 / best)
	}
	return nearest.Pos.Add(dir.Mul(4 * r))
}

// =============================================================================
// Connections
// =============================================================================

// Connect joins a and b. It fails on unknown ids and existing edges.
func (e *Engine) Connect(a, b int) bool {
	if err := e.Link(a, b); err != nil {
		e.logger.Debug("connect refused", "a", a, "b", b, "error", err)
		return false
	}
	return true
}

// Link joins a and b and retraces the outer face. On a color collision the
// more recently placed endpoint is recolored.
func (e *Engine) Link(a, b int) error {
	if _, err := e.g.AddEdge(a, b); err != nil {
		return err
	}
	e.recheck(max(a, b))
	e.retrace()
	e.logger.Debug("nodes connected", "a", a, "b", b)
	return nil
}

// PlacementResult describes a ConnectNew batch.
type PlacementResult struct {
	Node      int
	Connected []int       // targets joined to Node, empty when refused
	Color     graph.Color // Node's color after the batch
	Overflow  bool        // Node was queued for Kempe resolution
	Removed   bool        // Node ended up enclosed and was removed
	Err       error       // why the batch was refused
}

// OK reports whether the node survived the batch with its edges.
func (r PlacementResult) OK() bool { return r.Err == nil && !r.Removed }

// ConnectNew joins a freshly placed node to every target in one batch.
//
// The batch is refused without changes if any target is enclosed, since a new
// node must attach from the exterior. Otherwise all edges are added, the new
// node's color is checked once and the outer face is retraced. If the new node
// ends up enclosed it is removed again.
func (e *Engine) ConnectNew(newID int, targets []int) PlacementResult {
	res := PlacementResult{Node: newID}
	if err := e.validateBatch(newID, targets); err != nil {
		res.Err = err
		e.logger.Debug("connection batch refused", "node", newID, "error", err)
		return res
	}

	for _, t := range targets {
		if _, err := e.g.AddEdge(newID, t); err != nil {
			for _, done := range res.Connected {
				_ = e.g.RemoveEdge(newID, done)
			}
			res.Connected = nil
			res.Err = err
			return res
		}
		res.Connected = append(res.Connected, t)
	}

	res.Overflow = e.recheck(newID)
	e.retrace()

	if n, _ := e.g.Node(newID); n.Enclosed() {
		e.logger.Info("new node enclosed by its connections, removing", "node", newID)
		_ = e.Remove(newID)
		res.Removed = true
		return res
	}
	n, _ := e.g.Node(newID)
	res.Color = n.Color
	e.logger.Debug("node connected", "node", newID, "targets", targets, "color", res.Color)
	return res
}

func (e *Engine) validateBatch(newID int, targets []int) error {
	n, ok := e.g.Node(newID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown node %d", newID)
	}
	if n.Fixed {
		return errors.New(errors.ErrCodeFixedElement, "node %d is fixed", newID)
	}
	if len(targets) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no targets for node %d", newID)
	}
	seen := make(map[int]bool, len(targets))
	for _, t := range targets {
		if seen[t] {
			return errors.New(errors.ErrCodeDuplicateEdge, "target %d listed twice", t)
		}
		seen[t] = true
		tn, ok := e.g.Node(t)
		if !ok {
			return errors.New(errors.ErrCodeInvalidReference, "unknown node %d", t)
		}
		if t == newID {
			return errors.New(errors.ErrCodeInvalidInput, "node %d cannot connect to itself", t)
		}
		if tn.Enclosed() {
			return errors.New(errors.ErrCodeEnclosed, "target %d is enclosed", t)
		}
	}
	return nil
}

// RemoveEdge disconnects a and b. The seed edge cannot be removed.
func (e *Engine) RemoveEdge(a, b int) bool {
	if err := e.Unlink(a, b); err != nil {
		e.logger.Debug("disconnect refused", "a", a, "b", b, "error", err)
		return false
	}
	return true
}

// Unlink removes the edge between a and b and retraces the outer face.
func (e *Engine) Unlink(a, b int) error {
	edge, ok := e.g.Edge(a, b)
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown edge %d-%d", a, b)
	}
	if edge.Fixed {
		return errors.New(errors.ErrCodeFixedElement, "edge %d-%d is fixed", edge.A, edge.B)
	}
	if err := e.g.RemoveEdge(a, b); err != nil {
		return err
	}
	e.retrace()
	e.logger.Debug("nodes disconnected", "a", a, "b", b)
	return nil
}

// SetEdgeCurvature displaces the midpoint of the edge between a and b.
func (e *Engine) SetEdgeCurvature(a, b int, offset vec.Vec2) bool {
	if err := e.Curve(a, b, offset); err != nil {
		e.logger.Debug("curvature refused", "a", a, "b", b, "error", err)
		return false
	}
	return true
}

// Curve sets an edge's curvature offset and recomputes both rotations.
//
// Offsets that bring the curved midpoint within MinHandleDistance of either
// endpoint, or into the protected zone, are refused without change. The seed
// edge cannot be curved.
func (e *Engine) Curve(a, b int, offset vec.Vec2) error {
	if err := errors.ValidatePoint(offset.X, offset.Y); err != nil {
		return err
	}
	edge, ok := e.g.Edge(a, b)
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown edge %d-%d", a, b)
	}
	if edge.Fixed {
		return errors.New(errors.ErrCodeFixedElement, "edge %d-%d is fixed", edge.A, edge.B)
	}

	na, _ := e.g.Node(edge.A)
	nb, _ := e.g.Node(edge.B)
	mid := na.Pos.Add(nb.Pos).Mul(0.5).Add(offset)
	for _, p := range []vec.Vec2{na.Pos, nb.Pos} {
		if d := mid.Sub(p).Length(); d < e.cfg.MinHandleDistance {
			return errors.New(errors.ErrCodeInvalidInput, "curved midpoint %.1f from an endpoint, minimum %.1f", d, e.cfg.MinHandleDistance)
		}
	}
	if e.inProtectedZone(mid) {
		return errors.New(errors.ErrCodeProtectedZone, "curved midpoint is inside the protected zone")
	}

	if err := e.g.SetCurvature(a, b, offset); err != nil {
		return err
	}
	e.retrace()
	return nil
}

// =============================================================================
// Moves and Removal
// =============================================================================

// MoveNode repositions a node. It returns false for fixed nodes and rolls the
// move back if a boundary node would become enclosed.
func (e *Engine) MoveNode(id int, pos vec.Vec2) bool {
	if err := e.Move(id, pos); err != nil {
		e.logger.Debug("move refused", "node", id, "error", err)
		return false
	}
	return true
}

// Move repositions a node, recomputing its rotation and its neighbors'.
func (e *Engine) Move(id int, pos vec.Vec2) error {
	if err := errors.ValidatePoint(pos.X, pos.Y); err != nil {
		return err
	}
	n, ok := e.g.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id)
	}
	if n.Fixed {
		return errors.New(errors.ErrCodeFixedElement, "node %d is fixed", id)
	}
	if e.inProtectedZone(pos) {
		return errors.New(errors.ErrCodeProtectedZone, "(%.0f,%.0f) is inside the protected zone", pos.X, pos.Y)
	}

	old, wasBoundary := n.Pos, n.Boundary()
	if err := e.g.MoveNode(id, pos); err != nil {
		return err
	}
	e.retrace()
	if wasBoundary && n.Enclosed() {
		_ = e.g.MoveNode(id, old)
		e.retrace()
		return errors.New(errors.ErrCodeEnclosed, "move would enclose boundary node %d", id)
	}
	return nil
}

// RemoveNode deletes a node and its edges. Seed nodes cannot be removed.
func (e *Engine) RemoveNode(id int) bool {
	if err := e.Remove(id); err != nil {
		e.logger.Debug("remove refused", "node", id, "error", err)
		return false
	}
	return true
}

// Remove deletes a node, its edges and its queue entry, then retraces.
func (e *Engine) Remove(id int) error {
	n, ok := e.g.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id)
	}
	if n.Fixed {
		return errors.New(errors.ErrCodeFixedElement, "node %d is fixed", id)
	}
	e.queue.Remove(id)
	if err := e.g.RemoveNode(id); err != nil {
		return err
	}
	e.retrace()
	e.logger.Debug("node removed", "node", id)
	return nil
}

// SetLocked sets a node's collaborator lock flag. The engine ignores it.
func (e *Engine) SetLocked(id int, locked bool) bool {
	n, ok := e.g.Node(id)
	if !ok {
		return false
	}
	n.Locked = locked
	return true
}

// =============================================================================
// Overflow
// =============================================================================

// ResolveOverflowHead resolves the current overflow node and returns its
// final color. With an empty queue it returns false and a nil error.
// Kempe exhaustion is returned as an error and leaves the node queued.
func (e *Engine) ResolveOverflowHead() (coloring.Color, bool, error) {
	entry, ok := e.queue.Current()
	if !ok {
		return graph.NoColor, false, nil
	}
	res, err := e.resolver.ResolveCurrent(e.g)
	if err != nil {
		return graph.Overflow, false, err
	}
	final := res.Color
	if n, ok := e.g.Node(entry.Node); ok {
		final = n.Color
	}
	e.logger.Info("overflow resolved", "node", entry.Node, "color", final, "swapped", res.Swapped, "remaining", e.queue.Len())
	return final, true, nil
}

// ResolveAll drains the overflow queue. The first error aborts.
func (e *Engine) ResolveAll() ([]coloring.Resolution, error) {
	return e.resolver.Drain(e.g)
}

// Overflow returns the current overflow node and its reason.
func (e *Engine) Overflow() (id int, reason string, ok bool) {
	entry, ok := e.queue.Current()
	if !ok {
		return 0, "", false
	}
	return entry.Node, entry.Reason, true
}

// =============================================================================
// Internal
// =============================================================================

// recheck runs the palette check on id and queues it on overflow.
func (e *Engine) recheck(id int) bool {
	out := coloring.CheckConflicts(e.g, id)
	if !out.Overflow {
		return false
	}
	if e.queue.Enqueue(id, out.Reason) {
		e.logger.Info("node needs kempe resolution", "node", id, "reason", out.Reason)
	}
	return true
}

// retrace recomputes the outer face and the advisory angle and crossing
// warnings.
func (e *Engine) retrace() graph.BoundaryResult {
	res := e.g.UpdateBoundary()
	e.boundary = res
	hooks := observability.Embedding()
	hooks.OnBoundaryUpdate(len(res.Boundary), e.g.NodeCount()-len(res.Boundary), res.Steps, res.Fallback)

	e.warnings = e.g.AngleWarnings(e.cfg.MinAngleGap)
	for _, w := range e.warnings {
		hooks.OnAngleWarning(w.Node, w.First, w.Next, w.Gap)
	}

	crossings := e.g.Crossings()
	if len(crossings) > len(e.crossings) {
		c := crossings[len(crossings)-1]
		e.logger.Warn("edges cross, coloring may not resolve",
			"crossings", len(crossings), "first", [2]int{c.First.A, c.First.B}, "second", [2]int{c.Second.A, c.Second.B})
	}
	e.crossings = crossings
	return res
}

func toVec(p config.Point) vec.Vec2 { return vec.Vec2{X: p.X, Y: p.Y} }
