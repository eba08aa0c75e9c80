package script

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/fourcolor/pkg/errors"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    Step
		wantErr bool
	}{
		{line: "place 200 120", want: Step{Op: OpPlace, X: 200, Y: 120}},
		{line: "PLACE 200 120 hub", want: Step{Op: OpPlace, X: 200, Y: 120, Label: "hub"}},
		{line: "connect 1 hub", want: Step{Op: OpConnect, A: "1", B: "hub"}},
		{line: "connect_new c 1 2", want: Step{Op: OpConnectNew, Node: "c", Targets: []string{"1", "2"}}},
		{line: "curve 3 4 0 -25.5", want: Step{Op: OpCurve, A: "3", B: "4", Y: -25.5}},
		{line: "  move c 320 280 ", want: Step{Op: OpMove, Node: "c", X: 320, Y: 280}},
		{line: "resolve", want: Step{Op: OpResolve}},
		{line: "", wantErr: true},
		{line: "explode 3", wantErr: true},
		{line: "place 200", wantErr: true},
		{line: "place x 200", wantErr: true},
		{line: "place 200 200 7", wantErr: true},
		{line: "connect 1", wantErr: true},
		{line: "connect_new c", wantErr: true},
		{line: "resolve now", wantErr: true},
		{line: "move c NaN 3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidScript) {
					t.Errorf("ParseLine(%q) error = %v, want INVALID_SCRIPT", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) error: %v", tt.line, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestRunner_Do(t *testing.T) {
	r := newRunner(t)

	st, _ := ParseLine("place 300 300 c")
	if res := r.Do(st); !res.OK || res.Node != 3 {
		t.Fatalf("Do(place) = %+v", res)
	}
	if res := r.Do(st); res.OK || !errors.Is(res.Err, errors.ErrCodeInvalidScript) {
		t.Errorf("Do(place) with a taken label = %+v, want INVALID_SCRIPT", res)
	}
	st, _ = ParseLine("connect_new c 1 2")
	if res := r.Do(st); !res.OK || res.Color.String() != "blue" {
		t.Errorf("Do(connect_new) = %+v, want blue", res)
	}
	if res := r.Do(Step{Op: "bogus"}); res.OK || res.Err == nil {
		t.Errorf("Do(bogus) = %+v, want refusal", res)
	}
	if res := r.Do(Step{Op: OpRemove, Node: "0"}); res.OK || !errors.Is(res.Err, errors.ErrCodeInvalidReference) {
		t.Errorf("Do(remove 0) = %+v, want INVALID_REFERENCE", res)
	}
	if got := r.Labels()["c"]; got != 3 {
		t.Errorf("Labels()[c] = %d, want 3", got)
	}
}
