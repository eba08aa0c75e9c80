package script

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/fourcolor/pkg/config"
	"github.com/matzehuels/fourcolor/pkg/engine"
	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/graph"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	logger := log.New(io.Discard)
	e, err := engine.New(config.Default(), logger)
	if err != nil {
		t.Fatalf("engine.New() error: %v", err)
	}
	return NewRunner(e, logger)
}

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return s
}

func TestParse(t *testing.T) {
	s := mustParse(t, `
name = "demo"
strict = true

[[step]]
op = "place"
label = "c"
x = 300
y = 300

[[step]]
op = "connect_new"
node = "c"
targets = ["1", "2"]
expect = "ok"
`)
	want := &Script{
		Name:   "demo",
		Strict: true,
		Steps: []Step{
			{Op: OpPlace, Label: "c", X: 300, Y: 300},
			{Op: OpConnectNew, Node: "c", Targets: []string{"1", "2"}, Expect: ExpectOK},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `[[step]] op = `},
		{"unknown op", "[[step]]\nop = \"explode\""},
		{"unknown key", "[[step]]\nop = \"reset\"\ncolour = \"red\""},
		{"connect without b", "[[step]]\nop = \"connect\"\na = \"1\""},
		{"connect_new without targets", "[[step]]\nop = \"connect_new\"\nnode = \"1\""},
		{"move without node", "[[step]]\nop = \"move\"\nx = 1\ny = 1"},
		{"bad expect", "[[step]]\nop = \"reset\"\nexpect = \"maybe\""},
		{"label on connect", "[[step]]\nop = \"connect\"\na = \"1\"\nb = \"2\"\nlabel = \"e\""},
		{"numeric label", "[[step]]\nop = \"place\"\nlabel = \"7\"\nx = 200\ny = 200"},
		{"label twice", "[[step]]\nop = \"place\"\nlabel = \"c\"\nx = 200\ny = 200\n[[step]]\nop = \"place\"\nlabel = \"c\"\nx = 300\ny = 200"},
		{"infinite coordinate", "[[step]]\nop = \"place\"\nx = inf\ny = 200"},
		{"unknown color", "[[step]]\nop = \"place\"\nx = 200\ny = 200\ncolor = \"purple\""},
		{"color on remove", "[[step]]\nop = \"remove\"\nnode = \"3\"\ncolor = \"red\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if !errors.Is(err, errors.ErrCodeInvalidScript) {
				t.Errorf("Parse() error = %v, want INVALID_SCRIPT", err)
			}
		})
	}
}

func TestLoad_NameFromFile(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "k4.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Name != "k4" {
		t.Errorf("Name = %q, want k4", s.Name)
	}
	if _, err := Load(filepath.Join("testdata", "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidScript) {
		t.Errorf("Load(missing) error = %v, want INVALID_SCRIPT", err)
	}
}

func TestRun_Wheel(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "wheel.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	rep, err := newRunner(t).Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(rep.Steps) != len(s.Steps) || rep.Refused != 0 {
		t.Fatalf("ran %d steps with %d refused, want %d and 0", len(rep.Steps), rep.Refused, len(s.Steps))
	}

	last := rep.Steps[len(rep.Steps)-1]
	if last.Node != rep.Labels["hub"] || !last.Color.IsReal() {
		t.Errorf("resolve step = node %d color %v, want hub %d with a real color", last.Node, last.Color, rep.Labels["hub"])
	}
	if !rep.Snapshot.Proper || rep.Snapshot.Overflow != nil {
		t.Errorf("final snapshot proper=%v overflow=%v", rep.Snapshot.Proper, rep.Snapshot.Overflow)
	}
}

func TestRun_K4Expectations(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "k4.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	rep, err := newRunner(t).Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.Refused != 2 {
		t.Errorf("Refused = %d, want 2", rep.Refused)
	}
	d, ok := rep.Snapshot.Node(rep.Labels["d"])
	if !ok || !d.Enclosed || d.Color != graph.Red {
		t.Errorf("inner node = %+v, want enclosed and red", d)
	}
	if diff := cmp.Diff(map[string]int{"c": 3, "d": 4, "e": 5}, rep.Labels); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Aborts(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		steps int
		code  errors.Code
	}{
		{
			name:  "expected ok but refused",
			src:   "[[step]]\nop = \"place\"\nx = 10\ny = 10\nexpect = \"ok\"\n[[step]]\nop = \"reset\"",
			steps: 1,
			code:  errors.ErrCodeInvalidScript,
		},
		{
			name:  "expected refusal but accepted",
			src:   "[[step]]\nop = \"place\"\nx = 200\ny = 200\nexpect = \"refused\"",
			steps: 1,
			code:  errors.ErrCodeInvalidScript,
		},
		{
			name:  "strict refusal",
			src:   "strict = true\n[[step]]\nop = \"remove\"\nnode = \"1\"\n[[step]]\nop = \"reset\"",
			steps: 1,
			code:  errors.ErrCodeInvalidScript,
		},
		{
			name:  "wrong color",
			src:   "[[step]]\nop = \"place\"\nlabel = \"c\"\nx = 300\ny = 300\n[[step]]\nop = \"connect_new\"\nnode = \"c\"\ntargets = [\"1\", \"2\"]\ncolor = \"yellow\"\n[[step]]\nop = \"reset\"",
			steps: 2,
			code:  errors.ErrCodeInvalidScript,
		},
		{
			name:  "unknown label",
			src:   "strict = true\n[[step]]\nop = \"remove\"\nnode = \"ghost\"",
			steps: 1,
			code:  errors.ErrCodeInvalidScript,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := newRunner(t).Run(context.Background(), mustParse(t, tt.src))
			if !errors.Is(err, tt.code) {
				t.Fatalf("Run() error = %v, want %s", err, tt.code)
			}
			if len(rep.Steps) != tt.steps {
				t.Errorf("ran %d steps, want %d", len(rep.Steps), tt.steps)
			}
		})
	}
}

func TestRun_LenientContinues(t *testing.T) {
	src := `
[[step]]
op = "remove"
node = "1"

[[step]]
op = "resolve"

[[step]]
op = "place"
label = "c"
x = 200
y = 200
`
	rep, err := newRunner(t).Run(context.Background(), mustParse(t, src))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.Refused != 2 || !rep.Steps[2].OK {
		t.Errorf("Refused = %d, last ok = %v, want 2 refusals then success", rep.Refused, rep.Steps[2].OK)
	}
	if !errors.Is(rep.Steps[0].Err, errors.ErrCodeFixedElement) {
		t.Errorf("remove seed error = %v, want FIXED_ELEMENT", rep.Steps[0].Err)
	}
}

func TestRun_ExhaustionAborts(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "k4.toml"))
	if err != nil {
		t.Fatal(err)
	}
	src := string(data)
	// drop the two refused steps and close a K5 around the outside
	src = src[:strings.Index(src, "[[step]]\nop = \"place\"\nlabel = \"e\"")] + `
[[step]]
op = "place"
label = "x"
x = 500
y = 100

[[step]]
op = "connect"
a = "1"
b = "x"

[[step]]
op = "connect"
a = "2"
b = "x"

[[step]]
op = "connect"
a = "c"
b = "x"

[[step]]
op = "connect"
a = "d"
b = "x"

[[step]]
op = "resolve_all"

[[step]]
op = "reset"
`
	rep, err := newRunner(t).Run(context.Background(), mustParse(t, src))
	if !errors.Is(err, errors.ErrCodeKempeExhaustion) {
		t.Fatalf("Run() error = %v, want KEMPE_EXHAUSTION", err)
	}
	last := rep.Steps[len(rep.Steps)-1]
	if last.Step.Op != OpResolveAll || last.Node != rep.Labels["x"] {
		t.Errorf("aborted at %s on node %d, want resolve_all on %d", last.Step, last.Node, rep.Labels["x"])
	}
	if rep.Snapshot.Overflow == nil {
		t.Error("overflow node dropped after exhaustion")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := newRunner(t).Run(ctx, mustParse(t, "[[step]]\nop = \"reset\""))
	if err != context.Canceled {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(rep.Steps) != 0 {
		t.Errorf("ran %d steps after cancellation", len(rep.Steps))
	}
}

func TestRun_ResetClearsLabels(t *testing.T) {
	src := `
[[step]]
op = "place"
label = "c"
x = 200
y = 200

[[step]]
op = "reset"

[[step]]
op = "lock"
node = "c"
`
	rep, err := newRunner(t).Run(context.Background(), mustParse(t, src))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.Steps[2].OK || !errors.Is(rep.Steps[2].Err, errors.ErrCodeInvalidReference) {
		t.Errorf("lock after reset = %+v, want INVALID_REFERENCE", rep.Steps[2])
	}
	if len(rep.Snapshot.Nodes) != 2 {
		t.Errorf("%d nodes after reset, want the two seeds", len(rep.Snapshot.Nodes))
	}
}

func TestStep_String(t *testing.T) {
	tests := []struct {
		step Step
		want string
	}{
		{Step{Op: OpPlace, X: 200, Y: 12.5}, "place (200,12.5)"},
		{Step{Op: OpConnect, A: "1", B: "c"}, "connect 1-c"},
		{Step{Op: OpConnectNew, Node: "c", Targets: []string{"1", "2"}}, "connect_new c -> 1,2"},
		{Step{Op: OpCurve, A: "c", B: "d", X: 0, Y: -20}, "curve c-d by (0,-20)"},
		{Step{Op: OpResolveAll}, "resolve_all"},
	}
	for _, tt := range tests {
		if got := tt.step.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEncode_ParsesBack(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "k4.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	var buf strings.Builder
	if err := s.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if strings.Contains(buf.String(), "label = \"\"") {
		t.Errorf("empty fields were written:\n%s", buf.String())
	}
	got := mustParse(t, buf.String())
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("Encode() did not parse back (-want +got):\n%s", diff)
	}
}

func TestRun_ColorExpectation(t *testing.T) {
	src := `
[[step]]
op = "place"
label = "c"
x = 300
y = 300

[[step]]
op = "connect_new"
node = "c"
targets = ["1", "2"]
color = "blue"
`
	rep, err := newRunner(t).Run(context.Background(), mustParse(t, src))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := rep.Steps[1].Color.String(); got != "blue" {
		t.Errorf("step 2 color = %s, want blue", got)
	}
}
