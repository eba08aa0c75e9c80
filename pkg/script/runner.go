package script

import (
	"context"
	"maps"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/fourcolor/pkg/engine"
	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/graph"
)

// StepResult records the outcome of one replayed step.
type StepResult struct {
	Index int         // 1-based position in the script
	Step  Step        // the step as written
	OK    bool        // the engine accepted the command
	Node  int         // node placed, connected or resolved, if any
	Color graph.Color // that node's color afterwards
	Err   error       // why the engine refused, if it did
}

// Report is the result of a complete replay.
type Report struct {
	Name     string
	Steps    []StepResult
	Labels   map[string]int
	Refused  int
	Snapshot engine.Snapshot
	Duration time.Duration
}

// Runner replays scripts against an engine. Labels assigned by place steps
// stay valid until the next Run or reset step.
type Runner struct {
	Engine *engine.Engine
	Logger *log.Logger

	labels map[string]int
}

// NewRunner creates a runner over e.
// If logger is nil, log.Default() is used.
func NewRunner(e *engine.Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Engine: e, Logger: logger, labels: make(map[string]int)}
}

// Do validates and applies a single step outside of a script.
func (r *Runner) Do(st Step) StepResult {
	if err := st.validate(); err != nil {
		return StepResult{Step: st, Err: err}
	}
	if st.Label != "" {
		if _, taken := r.labels[st.Label]; taken {
			return StepResult{Step: st, Err: errors.New(errors.ErrCodeInvalidScript, "label %q already in use", st.Label)}
		}
	}
	return r.apply(st)
}

// Labels returns a copy of the current label table.
func (r *Runner) Labels() map[string]int {
	return maps.Clone(r.labels)
}

// Run replays s step by step and returns the report so far together with the
// first error that aborted the replay.
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	start := time.Now()
	clear(r.labels)
	rep := &Report{Name: s.Name}
	finish := func() {
		rep.Labels = r.Labels()
		rep.Snapshot = r.Engine.Snapshot()
		rep.Duration = time.Since(start)
	}

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			finish()
			return rep, err
		}
		res := r.apply(st)
		res.Index = i + 1
		rep.Steps = append(rep.Steps, res)

		if !res.OK {
			rep.Refused++
			r.Logger.Debug("step refused", "step", res.Index, "op", st.Op, "error", res.Err)
		}
		if err := r.check(s, res); err != nil {
			finish()
			return rep, err
		}
	}

	finish()
	r.Logger.Info("script replayed",
		"script", rep.Name,
		"steps", len(rep.Steps),
		"refused", rep.Refused,
		"nodes", len(rep.Snapshot.Nodes),
		"duration", rep.Duration)
	return rep, nil
}

// check decides whether a step outcome aborts the replay.
func (r *Runner) check(s *Script, res StepResult) error {
	if res.Err != nil && errors.Is(res.Err, errors.ErrCodeKempeExhaustion) && res.Step.Expect != ExpectRefused {
		return errors.Wrap(errors.ErrCodeKempeExhaustion, res.Err, "step %d: %s", res.Index, res.Step)
	}
	switch res.Step.Expect {
	case ExpectOK:
		if !res.OK {
			return errors.Wrap(errors.ErrCodeInvalidScript, res.Err, "step %d: %s expected ok", res.Index, res.Step)
		}
	case ExpectRefused:
		if res.OK {
			return errors.New(errors.ErrCodeInvalidScript, "step %d: %s expected refusal", res.Index, res.Step)
		}
	default:
		if s.Strict && !res.OK {
			return errors.Wrap(errors.ErrCodeInvalidScript, res.Err, "step %d: %s refused", res.Index, res.Step)
		}
	}
	if want, ok := graph.ParseColor(res.Step.Color); ok && res.OK && res.Color != want {
		return errors.New(errors.ErrCodeInvalidScript, "step %d: %s left node %d %s, expected %s", res.Index, res.Step, res.Node, res.Color, want)
	}
	return nil
}

// apply issues a single step against the engine.
func (r *Runner) apply(st Step) StepResult {
	res := StepResult{Step: st}
	e := r.Engine
	labels := r.labels

	ref := func(s string) (int, error) { return resolveRef(s, labels) }
	pair := func() (int, int, error) {
		a, err := ref(st.A)
		if err != nil {
			return 0, 0, err
		}
		b, err := ref(st.B)
		return a, b, err
	}
	fail := func(err error) StepResult {
		res.Err = err
		return res
	}

	switch st.Op {
	case OpPlace:
		id, err := e.Place(vec.Vec2{X: st.X, Y: st.Y})
		if err != nil {
			return fail(err)
		}
		if st.Label != "" {
			labels[st.Label] = id
		}
		res.Node = id

	case OpConnect:
		a, b, err := pair()
		if err != nil {
			return fail(err)
		}
		if err := e.Link(a, b); err != nil {
			return fail(err)
		}
		res.Node = max(a, b)

	case OpConnectNew:
		id, err := ref(st.Node)
		if err != nil {
			return fail(err)
		}
		targets := make([]int, 0, len(st.Targets))
		for _, t := range st.Targets {
			tid, err := ref(t)
			if err != nil {
				return fail(err)
			}
			targets = append(targets, tid)
		}
		pr := e.ConnectNew(id, targets)
		res.Node = id
		if pr.Err != nil {
			return fail(pr.Err)
		}
		if pr.Removed {
			return fail(errors.New(errors.ErrCodeEnclosed, "node %d was enclosed by its connections and removed", id))
		}

	case OpDisconnect:
		a, b, err := pair()
		if err != nil {
			return fail(err)
		}
		if err := e.Unlink(a, b); err != nil {
			return fail(err)
		}

	case OpCurve:
		a, b, err := pair()
		if err != nil {
			return fail(err)
		}
		if err := e.Curve(a, b, vec.Vec2{X: st.X, Y: st.Y}); err != nil {
			return fail(err)
		}

	case OpMove:
		id, err := ref(st.Node)
		if err != nil {
			return fail(err)
		}
		res.Node = id
		if err := e.Move(id, vec.Vec2{X: st.X, Y: st.Y}); err != nil {
			return fail(err)
		}

	case OpRemove:
		id, err := ref(st.Node)
		if err != nil {
			return fail(err)
		}
		if err := e.Remove(id); err != nil {
			return fail(err)
		}

	case OpLock, OpUnlock:
		id, err := ref(st.Node)
		if err != nil {
			return fail(err)
		}
		res.Node = id
		if !e.SetLocked(id, st.Op == OpLock) {
			return fail(errors.New(errors.ErrCodeInvalidReference, "unknown node %d", id))
		}

	case OpResolve:
		id, _, _ := e.Overflow()
		c, ok, err := e.ResolveOverflowHead()
		if err != nil {
			res.Node = id
			return fail(err)
		}
		if !ok {
			return fail(errors.New(errors.ErrCodeInvalidInput, "overflow queue is empty"))
		}
		res.Node, res.Color, res.OK = id, c, true
		return res

	case OpResolveAll:
		if _, err := e.ResolveAll(); err != nil {
			id, _, _ := e.Overflow()
			res.Node = id
			return fail(err)
		}

	case OpReset:
		e.Reset()
		clear(labels)

	default:
		return fail(errors.New(errors.ErrCodeUnsupported, "op %q", st.Op))
	}

	res.OK = true
	if res.Node != 0 {
		res.Color, _ = e.Color(res.Node)
	}
	return res
}

// resolveRef maps a label or a decimal id to a node id.
func resolveRef(s string, labels map[string]int) (int, error) {
	if id, ok := labels[s]; ok {
		return id, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidReference, "unknown label %q", s)
	}
	if err := errors.ValidateNodeID(id); err != nil {
		return 0, err
	}
	return id, nil
}
