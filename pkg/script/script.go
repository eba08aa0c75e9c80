// Package script replays TOML command scripts against a coloring engine.
//
// A script is a list of steps, each naming one engine command. Nodes are
// referred to by label or by numeric id; the seeds are always "1" and "2".
//
//	name = "triangle"
//
//	[[step]]
//	op = "place"
//	label = "c"
//	x = 300
//	y = 300
//
//	[[step]]
//	op = "connect_new"
//	node = "c"
//	targets = ["1", "2"]
//
// A step may state what it expects with expect = "ok" or expect = "refused",
// and steps that name a node may add color = "blue" to pin the node's color
// afterwards. A mismatch aborts the replay. Without an expectation, refused steps are
// recorded and the replay continues unless the script sets strict = true.
// Kempe exhaustion always aborts.
package script

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/graph"
)

// Op names one engine command.
type Op string

const (
	OpPlace      Op = "place"
	OpConnect    Op = "connect"
	OpConnectNew Op = "connect_new"
	OpDisconnect Op = "disconnect"
	OpCurve      Op = "curve"
	OpMove       Op = "move"
	OpRemove     Op = "remove"
	OpLock       Op = "lock"
	OpUnlock     Op = "unlock"
	OpResolve    Op = "resolve"
	OpResolveAll Op = "resolve_all"
	OpReset      Op = "reset"
)

var ops = map[Op]bool{
	OpPlace: true, OpConnect: true, OpConnectNew: true, OpDisconnect: true,
	OpCurve: true, OpMove: true, OpRemove: true, OpLock: true, OpUnlock: true,
	OpResolve: true, OpResolveAll: true, OpReset: true,
}

// Expectations a step may declare.
const (
	ExpectOK      = "ok"
	ExpectRefused = "refused"
)

// Script is a parsed command script.
type Script struct {
	Name        string `toml:"name,omitempty"`
	Description string `toml:"description,omitempty"`
	Strict      bool   `toml:"strict,omitempty"`
	Steps       []Step `toml:"step"`
}

// Step is one command. Which fields matter depends on Op.
type Step struct {
	Op      Op       `toml:"op"`
	Label   string   `toml:"label,omitempty"`   // place: name for the new node
	Node    string   `toml:"node,omitempty"`    // connect_new, move, remove, lock, unlock
	A       string   `toml:"a,omitempty"`       // connect, disconnect, curve
	B       string   `toml:"b,omitempty"`       // connect, disconnect, curve
	Targets []string `toml:"targets,omitempty"` // connect_new
	X       float64  `toml:"x,omitempty"`       // place, move; offset for curve
	Y       float64  `toml:"y,omitempty"`
	Expect  string   `toml:"expect,omitempty"`
	Color   string   `toml:"color,omitempty"` // expected color of the step's node
}

// String renders a step the way it appears in logs and reports.
func (s Step) String() string {
	switch s.Op {
	case OpPlace:
		return string(s.Op) + " (" + ftoa(s.X) + "," + ftoa(s.Y) + ")"
	case OpConnect, OpDisconnect:
		return string(s.Op) + " " + s.A + "-" + s.B
	case OpCurve:
		return string(s.Op) + " " + s.A + "-" + s.B + " by (" + ftoa(s.X) + "," + ftoa(s.Y) + ")"
	case OpConnectNew:
		return string(s.Op) + " " + s.Node + " -> " + strings.Join(s.Targets, ",")
	case OpMove:
		return string(s.Op) + " " + s.Node + " to (" + ftoa(s.X) + "," + ftoa(s.Y) + ")"
	case OpRemove, OpLock, OpUnlock:
		return string(s.Op) + " " + s.Node
	}
	return string(s.Op)
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Parse decodes a script from r and validates it. Unknown keys are rejected.
func Parse(r io.Reader) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "decode script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScript, "unknown key %q", undecoded[0].String())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "open %s", path)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Encode writes s in the TOML form read by Parse.
func (s *Script) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(s); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode script")
	}
	return nil
}

// Validate checks every step for a known op and its required fields.
// It does not check that references resolve; that happens during replay.
func (s *Script) Validate() error {
	labels := make(map[string]bool)
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "step %d (%s)", i+1, st.Op)
		}
		if st.Label != "" {
			if labels[st.Label] {
				return errors.New(errors.ErrCodeInvalidScript, "step %d: label %q used twice", i+1, st.Label)
			}
			labels[st.Label] = true
		}
	}
	return nil
}

func (s Step) validate() error {
	if !ops[s.Op] {
		return errors.New(errors.ErrCodeInvalidScript, "unknown op %q", s.Op)
	}
	switch s.Expect {
	case "", ExpectOK, ExpectRefused:
	default:
		return errors.New(errors.ErrCodeInvalidScript, "expect must be %q or %q, got %q", ExpectOK, ExpectRefused, s.Expect)
	}
	if s.Color != "" {
		if _, ok := graph.ParseColor(s.Color); !ok {
			return errors.New(errors.ErrCodeInvalidScript, "unknown color %q", s.Color)
		}
		switch s.Op {
		case OpDisconnect, OpCurve, OpRemove, OpResolveAll, OpReset:
			return errors.New(errors.ErrCodeInvalidScript, "%s steps take no color", s.Op)
		}
	}
	if s.Label != "" {
		if s.Op != OpPlace {
			return errors.New(errors.ErrCodeInvalidScript, "only place steps take a label")
		}
		if _, err := strconv.Atoi(s.Label); err == nil {
			return errors.New(errors.ErrCodeInvalidScript, "label %q would shadow a node id", s.Label)
		}
	}

	switch s.Op {
	case OpPlace, OpMove, OpCurve:
		if err := errors.ValidatePoint(s.X, s.Y); err != nil {
			return err
		}
	}
	switch s.Op {
	case OpConnect, OpDisconnect, OpCurve:
		if s.A == "" || s.B == "" {
			return errors.New(errors.ErrCodeInvalidScript, "needs a and b")
		}
	case OpConnectNew:
		if s.Node == "" || len(s.Targets) == 0 {
			return errors.New(errors.ErrCodeInvalidScript, "needs node and targets")
		}
	case OpMove, OpRemove, OpLock, OpUnlock:
		if s.Node == "" {
			return errors.New(errors.ErrCodeInvalidScript, "needs node")
		}
	}
	return nil
}
