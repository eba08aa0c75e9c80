package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fourcolor/pkg/errors"
	"github.com/matzehuels/fourcolor/pkg/script"
)

// Session styles
var (
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	inputStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	messageStyle = lipgloss.NewStyle().Foreground(colorGray)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	hintStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

const maxRecent = 5 // step results shown under the node table

// sessionCommand creates the session command, an interactive editor that
// applies one typed command at a time.
func (c *CLI) sessionCommand() *cobra.Command {
	var preload string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Build a graph interactively",
		Long: `Start an interactive session on a fresh engine.

Type the same commands a script uses, one per line, for example
"place 200 120 hub" or "connect_new hub 1 2". Type "help" for the list,
"save out.svg" to render, "export out.toml" to write the session as a
script, and "quit" to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// engine logs would corrupt the terminal UI
			e, err := c.newEngine(log.New(io.Discard))
			if err != nil {
				return err
			}
			m := NewSessionModel(script.NewRunner(e, log.New(io.Discard)))
			if preload != "" {
				if err := m.preload(cmd.Context(), preload); err != nil {
					return err
				}
			}

			p := tea.NewProgram(m,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&preload, "script", "", "script to replay before the session starts")

	return cmd
}

// =============================================================================
// SessionModel - Interactive graph editing
// =============================================================================

// savedMsg reports the outcome of a background save.
type savedMsg struct {
	path string
	err  error
}

// SessionModel is the bubbletea model for an interactive session.
type SessionModel struct {
	Runner *script.Runner

	input   []rune
	history []string // submitted lines, oldest first
	histPos int      // index into history while browsing, len(history) otherwise
	recent  []script.StepResult
	steps   []script.Step // steps that reached the engine, for export
	message string
	failed  bool
	help    bool
}

// NewSessionModel creates a session over r.
func NewSessionModel(r *script.Runner) *SessionModel {
	return &SessionModel{Runner: r}
}

// preload replays a script file and keeps its steps for export.
func (m *SessionModel) preload(ctx context.Context, path string) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	rep, err := m.Runner.Run(ctx, s)
	if err != nil {
		return err
	}
	for _, res := range rep.Steps {
		m.record(res)
	}
	m.message = fmt.Sprintf("replayed %s: %d steps, %d refused", rep.Name, len(rep.Steps), rep.Refused)
	return nil
}

func (m *SessionModel) Init() tea.Cmd {
	return nil
}

func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.err != nil {
			m.setMessage(true, "save %s: %v", msg.path, msg.err)
		} else {
			m.setMessage(false, "saved %s", msg.path)
		}
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(string(m.input))
			m.input = m.input[:0]
			if line == "" {
				return m, nil
			}
			m.history = append(m.history, line)
			m.histPos = len(m.history)
			return m, m.submit(line)
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeyCtrlU:
			m.input = m.input[:0]
		case tea.KeyUp:
			if m.histPos > 0 {
				m.histPos--
				m.input = []rune(m.history[m.histPos])
			}
		case tea.KeyDown:
			if m.histPos < len(m.history)-1 {
				m.histPos++
				m.input = []rune(m.history[m.histPos])
			} else {
				m.histPos = len(m.history)
				m.input = m.input[:0]
			}
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
	}
	return m, nil
}

// submit handles one entered line: session commands first, then engine
// steps.
func (m *SessionModel) submit(line string) tea.Cmd {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return tea.Quit
	case "help":
		m.help = !m.help
		return nil
	case "save":
		if len(fields) != 2 {
			m.setMessage(true, "usage: save FILE.{dot,svg,png,pdf,json}")
			return nil
		}
		return m.save(fields[1])
	case "export":
		if len(fields) != 2 {
			m.setMessage(true, "usage: export FILE.toml")
			return nil
		}
		if err := m.export(fields[1]); err != nil {
			m.setMessage(true, "export: %v", err)
		} else {
			m.setMessage(false, "exported %d steps to %s", len(m.steps), fields[1])
		}
		return nil
	}

	st, err := script.ParseLine(line)
	if err != nil {
		m.setMessage(true, "%v", err)
		return nil
	}
	res := m.Runner.Do(st)
	m.record(res)
	m.recent = append(m.recent, res)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}

	switch {
	case res.OK && res.Node != 0:
		m.setMessage(false, "%s: node %d is %s", st, res.Node, res.Color)
	case res.OK:
		m.setMessage(false, "%s: ok", st)
	default:
		m.setMessage(true, "%s: %s", st, errors.UserMessage(res.Err))
	}
	return nil
}

// record keeps a step for export if it reached the engine. Refused steps are
// kept with expect = "refused" since a refusal can still change the graph.
func (m *SessionModel) record(res script.StepResult) {
	if res.Err != nil && errors.Is(res.Err, errors.ErrCodeInvalidScript) {
		return
	}
	st := res.Step
	st.Expect = script.ExpectOK
	if !res.OK {
		st.Expect = script.ExpectRefused
	}
	if st.Op == script.OpReset && res.OK {
		m.steps = m.steps[:0]
		return
	}
	m.steps = append(m.steps, st)
}

func (m *SessionModel) export(path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	s := &script.Script{
		Name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Steps: m.steps,
	}
	if err := s.Encode(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// save renders the current graph in the background, picking the format
// from the file extension.
func (m *SessionModel) save(path string) tea.Cmd {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if !validFormats[format] {
		m.setMessage(true, "save: unknown format %q", format)
		return nil
	}
	snap := m.Runner.Engine.Snapshot()
	m.setMessage(false, "saving %s...", path)
	return func() tea.Msg {
		opts := &renderOpts{scale: defaultPNGScale, warnings: true}
		data, err := renderSnapshot(context.Background(), snap, format, opts)
		if err == nil {
			err = writeOutput(path, data)
		}
		return savedMsg{path: path, err: err}
	}
}

func (m *SessionModel) setMessage(failed bool, format string, args ...any) {
	m.failed = failed
	m.message = fmt.Sprintf(format, args...)
}

func (m *SessionModel) View() string {
	var b strings.Builder
	snap := m.Runner.Engine.Snapshot()

	b.WriteString(StyleTitle.Render(appName + " session"))
	b.WriteString(hintStyle.Render("  " + snap.Session))
	b.WriteString("\n\n")
	b.WriteString(nodeTable(snap))
	b.WriteString("\n")

	if labels := m.Runner.Labels(); len(labels) > 0 {
		b.WriteString(messageStyle.Render("labels: " + formatLabels(labels)))
		b.WriteString("\n")
	}
	b.WriteString(messageStyle.Render(fmt.Sprintf("%d edges  ", len(snap.Edges))))
	b.WriteString(colorCounts(snap))
	b.WriteString("\n")

	if snap.Overflow != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("node %d needs resolution (%s), queue [%s]: type resolve",
			snap.Overflow.Node, snap.Overflow.Reason, pendingIDs(snap.Pending))))
		b.WriteString("\n")
	}
	for _, aw := range snap.Warnings {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("edges %d and %d at node %d are %.1f° apart", aw.First, aw.Next, aw.Node, aw.Gap)))
		b.WriteString("\n")
	}
	for _, c := range snap.Crossings {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("edge %d-%d crosses edge %d-%d", c.First[0], c.First[1], c.Second[0], c.Second[1])))
		b.WriteString("\n")
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, r := range m.recent {
			icon := styleIconSuccess.Render(iconSuccess)
			if !r.OK {
				icon = styleIconError.Render(iconError)
			}
			b.WriteString(hintStyle.Render("  ") + icon + " " + messageStyle.Render(r.Step.String()) + "\n")
		}
	}

	b.WriteString("\n")
	if m.message != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(messageStyle.Render(m.message))
		}
		b.WriteString("\n")
	}
	b.WriteString(promptStyle.Render("> ") + inputStyle.Render(string(m.input)) + "█\n")

	if m.help {
		b.WriteString("\n")
		for _, u := range script.Usage {
			b.WriteString(hintStyle.Render("  "+u) + "\n")
		}
		b.WriteString(hintStyle.Render("  save FILE.{dot,svg,png,pdf,json}\n  export FILE.toml\n  quit") + "\n")
	} else {
		b.WriteString(hintStyle.Render("help  ↑/↓ history  esc quit") + "\n")
	}
	return b.String()
}

// formatLabels renders labels as "name=id" pairs sorted by id.
func formatLabels(labels map[string]int) string {
	type pair struct {
		name string
		id   int
	}
	pairs := make([]pair, 0, len(labels))
	for name, id := range labels {
		pairs = append(pairs, pair{name, id})
	}
	slices.SortFunc(pairs, func(a, b pair) int { return a.id - b.id })
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%d", p.name, p.id)
	}
	return strings.Join(parts, " ")
}
