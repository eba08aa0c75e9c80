package script

import (
	"strconv"
	"strings"

	"github.com/matzehuels/fourcolor/pkg/errors"
)

// Usage lists the one-line command forms accepted by ParseLine.
var Usage = []string{
	"place X Y [LABEL]",
	"connect A B",
	"connect_new NODE TARGET...",
	"disconnect A B",
	"curve A B DX DY",
	"move NODE X Y",
	"remove NODE",
	"lock NODE",
	"unlock NODE",
	"resolve",
	"resolve_all",
	"reset",
}

// ParseLine parses the one-line form of a step, as typed in an interactive
// session:
//
//	place 200 120 hub
//	connect_new hub 1 2
func ParseLine(line string) (Step, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Step{}, errors.New(errors.ErrCodeInvalidScript, "empty command")
	}
	st := Step{Op: Op(strings.ToLower(f[0]))}
	args := f[1:]

	want := func(n int) error {
		if len(args) != n {
			return errors.New(errors.ErrCodeInvalidScript, "%s takes %d arguments, got %d", st.Op, n, len(args))
		}
		return nil
	}
	floats := func(a, b string) error {
		var err error
		if st.X, err = strconv.ParseFloat(a, 64); err != nil {
			return errors.New(errors.ErrCodeInvalidScript, "%q is not a number", a)
		}
		if st.Y, err = strconv.ParseFloat(b, 64); err != nil {
			return errors.New(errors.ErrCodeInvalidScript, "%q is not a number", b)
		}
		return nil
	}

	var err error
	switch st.Op {
	case OpPlace:
		if len(args) == 3 {
			st.Label = args[2]
			args = args[:2]
		}
		if err = want(2); err == nil {
			err = floats(args[0], args[1])
		}
	case OpConnect, OpDisconnect:
		if err = want(2); err == nil {
			st.A, st.B = args[0], args[1]
		}
	case OpCurve:
		if err = want(4); err == nil {
			st.A, st.B = args[0], args[1]
			err = floats(args[2], args[3])
		}
	case OpConnectNew:
		if len(args) < 2 {
			err = errors.New(errors.ErrCodeInvalidScript, "connect_new needs a node and at least one target")
			break
		}
		st.Node, st.Targets = args[0], args[1:]
	case OpMove:
		if err = want(3); err == nil {
			st.Node = args[0]
			err = floats(args[1], args[2])
		}
	case OpRemove, OpLock, OpUnlock:
		if err = want(1); err == nil {
			st.Node = args[0]
		}
	case OpResolve, OpResolveAll, OpReset:
		err = want(0)
	default:
		err = errors.New(errors.ErrCodeInvalidScript, "unknown command %q", f[0])
	}
	if err != nil {
		return Step{}, err
	}
	if err := st.validate(); err != nil {
		return Step{}, errors.Wrap(errors.ErrCodeInvalidScript, err, "%s", st.Op)
	}
	return st, nil
}
