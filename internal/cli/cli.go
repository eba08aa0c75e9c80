// Package cli implements the fourcolor command-line interface.
//
// # Commands
//
//   - run: replay a TOML command script and print a colored summary
//   - render: replay a script and write the result as DOT, SVG, PNG, PDF or JSON
//   - serve: expose an engine over HTTP
//   - session: build a graph interactively in the terminal
//   - version: print build information
//
// All commands accept --config to load engine geometry from a TOML file and
// --verbose (-v) for debug logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fourcolor/pkg/buildinfo"
	"github.com/matzehuels/fourcolor/pkg/config"
	"github.com/matzehuels/fourcolor/pkg/engine"
	"github.com/matzehuels/fourcolor/pkg/script"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "fourcolor"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "fourcolor builds planar graphs that stay four-colored",
		Long:         `fourcolor places nodes and edges of a planar graph one step at a time and keeps a proper four-coloring throughout, resolving conflicts with Kempe chain swaps.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "engine config file (default $XDG_CONFIG_HOME/fourcolor/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// newEngine loads the configuration and creates a fresh engine logging to
// logger.
func (c *CLI) newEngine(logger *log.Logger) (*engine.Engine, error) {
	cfg, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, logger)
}

// replay loads a script and runs it against a fresh engine.
func (c *CLI) replay(cmd *cobra.Command, path string) (*script.Report, error) {
	s, err := script.Load(path)
	if err != nil {
		return nil, err
	}
	e, err := c.newEngine(c.Logger)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("replaying script", "script", s.Name, "steps", len(s.Steps), "session", e.Session())
	return script.NewRunner(e, c.Logger).Run(cmd.Context(), s)
}
