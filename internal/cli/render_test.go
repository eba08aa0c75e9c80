package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/fourcolor/pkg/engine"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid dot", []string{"dot"}, false},
		{"valid all", []string{"dot", "svg", "pdf", "png", "json"}, false},
		{"invalid format", []string{"gif"}, true},
		{"mixed valid invalid", []string{"svg", "gif"}, true},
		{"duplicate", []string{"svg", "svg"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "scripts/wheel.toml", "scripts/wheel"},
		{"out/graph", "wheel.toml", "out/graph"},
		{"out/graph.svg", "wheel.toml", "out/graph"},
		{"out/graph.v2", "wheel.toml", "out/graph.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	single := &renderOpts{output: "graph.svg", formats: []string{"svg"}}
	if got := outputPath(single, "wheel.toml", "svg"); got != "graph.svg" {
		t.Errorf("single format path = %q", got)
	}
	multi := &renderOpts{output: "out/graph", formats: []string{"svg", "dot"}}
	if got := outputPath(multi, "wheel.toml", "dot"); got != "out/graph.dot" {
		t.Errorf("multi format path = %q", got)
	}
	derived := &renderOpts{formats: []string{"svg"}}
	if got := outputPath(derived, "wheel.toml", "svg"); got != "wheel.svg" {
		t.Errorf("derived path = %q", got)
	}
}

func TestRenderCommand_DOTAndJSON(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "triangle")
	out, err := execute(t, "render", "testdata/triangle.toml", "-f", "dot,json", "-o", base)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, base+".dot") || !strings.Contains(out, base+".json") {
		t.Errorf("output does not list both files:\n%s", out)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "graph G {") {
		t.Errorf("DOT output starts with %q", string(dot)[:min(len(dot), 20)])
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(snap.Nodes) != 3 || !snap.Proper {
		t.Errorf("snapshot has %d nodes, proper=%v; want 3 and proper", len(snap.Nodes), snap.Proper)
	}
}

func TestRenderCommand_Stdout(t *testing.T) {
	out, err := execute(t, "render", "testdata/triangle.toml", "-f", "dot", "-o", "-")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.HasPrefix(out, "graph G {") || !strings.Contains(out, " -- 3") {
		t.Errorf("stdout is not the triangle DOT:\n%s", out)
	}

	if _, err := execute(t, "render", "testdata/triangle.toml", "-f", "dot,json", "-o", "-"); err == nil {
		t.Error("stdout with two formats should fail")
	}
}
