package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/fourcolor/pkg/engine"
	"github.com/matzehuels/fourcolor/pkg/graph"
	"github.com/matzehuels/fourcolor/pkg/render/nodelink"
	"github.com/matzehuels/fourcolor/pkg/script"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// swatch renders a color name on a background of that palette color.
func swatch(c graph.Color) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(nodelink.FillColor(c))).
		Foreground(lipgloss.Color("0")).
		Padding(0, 1).
		Render(c.String())
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Summaries
// =============================================================================

// printReport prints the outcome of a script replay.
func printReport(w io.Writer, rep *script.Report, steps bool) {
	fmt.Fprintln(w, StyleTitle.Render(rep.Name))
	if steps {
		fmt.Fprintln(w, stepTable(rep.Steps))
	}
	printSnapshot(w, rep.Snapshot)
	printKeyValue(w, "steps", fmt.Sprintf("%d (%d refused)", len(rep.Steps), rep.Refused))
}

// printSnapshot prints the node table and the coloring state.
func printSnapshot(w io.Writer, s engine.Snapshot) {
	fmt.Fprintln(w, nodeTable(s))
	printKeyValue(w, "nodes", strconv.Itoa(len(s.Nodes)))
	printKeyValue(w, "edges", strconv.Itoa(len(s.Edges)))
	printKeyValue(w, "colors", colorCounts(s))
	printKeyValue(w, "boundary", fmt.Sprintf("%v in %d steps", s.Boundary.Walk, s.Boundary.Steps))

	if s.Boundary.Fallback {
		printWarning(w, "boundary walk fell back: %s", s.Boundary.Reason)
	}
	for _, aw := range s.Warnings {
		printWarning(w, "edges %d and %d leave node %d only %.1f° apart", aw.First, aw.Next, aw.Node, aw.Gap)
	}
	for _, c := range s.Crossings {
		printWarning(w, "edge %d-%d crosses edge %d-%d", c.First[0], c.First[1], c.Second[0], c.Second[1])
	}
	switch {
	case s.Overflow != nil:
		printError(w, "node %d needs resolution: %s", s.Overflow.Node, s.Overflow.Reason)
		if len(s.Pending) > 1 {
			printInfo(w, "queued after it: %s", pendingIDs(s.Pending[1:]))
		}
	case s.Proper:
		printSuccess(w, "proper four-coloring")
	default:
		printError(w, "coloring is not proper")
	}
}

func colorCounts(s engine.Snapshot) string {
	counts := s.ColorCounts()
	var parts []string
	for _, c := range append(graph.Palette[:], graph.Overflow) {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", c, n))
		}
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func nodeTable(s engine.Snapshot) string {
	rows := make([][]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		face := "enclosed"
		if n.Boundary {
			face = "boundary"
		}
		var flags []string
		if n.Fixed {
			flags = append(flags, "seed")
		}
		if n.Locked {
			flags = append(flags, "locked")
		}
		rows = append(rows, []string{
			strconv.Itoa(n.ID),
			fmt.Sprintf("(%g, %g)", n.Pos.X, n.Pos.Y),
			swatch(n.Color),
			face,
			joinInts(n.Rotation),
			strings.Join(flags, ","),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Position", "Color", "Face", "Rotation", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func stepTable(results []script.StepResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := styleIconSuccess.Render(iconSuccess)
		detail := ""
		if !r.OK {
			status = styleIconError.Render(iconError)
			if r.Err != nil {
				detail = r.Err.Error()
			}
		} else if r.Node != 0 {
			detail = fmt.Sprintf("node %d %s", r.Node, r.Color)
		}
		rows = append(rows, []string{strconv.Itoa(r.Index), status, r.Step.String(), detail})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "", "Step", "Result").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func joinInts(ids []int) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(id)
	}
	return strings.Join(s, " ")
}

func pendingIDs(entries []engine.OverflowView) string {
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.Node
	}
	return joinInts(ids)
}
