package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fourcolor/pkg/cache"
	"github.com/matzehuels/fourcolor/pkg/engine"
	"github.com/matzehuels/fourcolor/pkg/render"
	"github.com/matzehuels/fourcolor/pkg/render/nodelink"
)

const defaultPNGScale = 2.0 // PNG pixels per SVG point

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format), base path (several), or "-" for stdout
	formats  []string // output formats: "dot", "svg", "pdf", "png", "json"
	detailed bool     // label nodes with rotation and face membership
	warnings bool     // highlight edges involved in angle warnings
	scale    float64  // PNG scale factor
	partial  bool     // render even if the script aborted
	noCache  bool     // skip the artifact cache
	cache    cache.Cache
}

// renderCommand creates the render command, which replays a script and
// writes the final graph in one or more formats.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: defaultPNGScale, warnings: true}

	cmd := &cobra.Command{
		Use:   "render <script.toml>",
		Short: "Replay a script and render the resulting graph",
		Long: `Replay a command script against a fresh engine and render the final graph.

Node positions are kept as placed; graphviz only draws them. SVG, PDF and PNG
need graphviz, and PDF and PNG additionally need rsvg-convert from librsvg.`,
		Example: `  fourcolor render wheel.toml
  fourcolor render wheel.toml -f svg,png -o out/wheel
  fourcolor render wheel.toml -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) > 1 {
				return fmt.Errorf("stdout output takes a single format, got %d", len(opts.formats))
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with rotation and face membership")
	cmd.Flags().BoolVar(&opts.warnings, "warnings", opts.warnings, "highlight edges that leave a node at nearly the same angle")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.partial, "partial", false, "render the graph even if the script aborted")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the rendered artifact cache")

	return cmd
}

// parseFormats parses the --format flag. If empty, it defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"dot": true, "svg": true, "json": true, "pdf": true, "png": true}

// validateFormats checks that all requested formats are valid and distinct.
func validateFormats(formats []string) error {
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'json', 'pdf', or 'png')", f)
		}
		if seen[f] {
			return fmt.Errorf("format %s requested twice", f)
		}
		seen[f] = true
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath picks the file for one format. A single format with an explicit
// output is written exactly there.
func outputPath(opts *renderOpts, input, format string) string {
	if len(opts.formats) == 1 && opts.output != "" {
		return opts.output
	}
	return basePath(opts.output, input) + "." + format
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	rep, err := c.replay(cmd, input)
	if err != nil {
		if rep == nil || !opts.partial {
			return err
		}
		c.Logger.Warn("rendering partial graph", "error", err)
	}
	prog.done("Replayed "+rep.Name, "nodes", len(rep.Snapshot.Nodes), "edges", len(rep.Snapshot.Edges))

	opts.cache = c.artifactCache(opts.noCache)
	defer opts.cache.Close()

	if opts.output == "-" {
		data, err := renderSnapshot(ctx, rep.Snapshot, opts.formats[0], opts)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	var spin *Spinner
	if needsLayout(opts.formats) {
		spin = newSpinner(ctx, cmd.ErrOrStderr(), "Rendering "+strings.Join(opts.formats, ", "))
		defer spin.release()
		spin.Start()
	}

	paths := make([]string, len(opts.formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range opts.formats {
		paths[i] = outputPath(opts, input, format)
		g.Go(func() error {
			data, err := renderSnapshot(gctx, rep.Snapshot, format, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
			if err := writeOutput(paths[i], data); err != nil {
				return err
			}
			c.Logger.Debug("wrote output", "format", format, "path", paths[i], "bytes", len(data))
			return nil
		})
	}
	err = g.Wait()
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Rendered %s", rep.Name)
	for _, p := range paths {
		printFile(w, p)
	}
	return nil
}

// artifactCache opens the file cache under the user cache directory. Any
// failure disables caching rather than the render.
func (c *CLI) artifactCache(disabled bool) cache.Cache {
	if disabled {
		return cache.NewNullCache()
	}
	dir, err := cache.DefaultDir()
	if err == nil {
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(dir); err == nil {
			c.Logger.Debug("artifact cache", "dir", fc.Dir())
			return fc
		}
	}
	c.Logger.Warn("artifact cache disabled", "error", err)
	return cache.NewNullCache()
}

// needsLayout reports whether any format goes through graphviz.
func needsLayout(formats []string) bool {
	for _, f := range formats {
		if f != "dot" && f != "json" {
			return true
		}
	}
	return false
}

// renderSnapshot produces the bytes of a single output format.
func renderSnapshot(ctx context.Context, s engine.Snapshot, format string, opts *renderOpts) ([]byte, error) {
	if format == "json" {
		return render.ToJSON(s)
	}
	dot := nodelink.ToDOT(s, nodelink.Options{Detailed: opts.detailed, Warnings: opts.warnings})
	var render func() ([]byte, error)
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		render = func() ([]byte, error) { return nodelink.RenderSVG(ctx, dot) }
	case "pdf":
		render = func() ([]byte, error) { return nodelink.RenderPDF(ctx, dot) }
	case "png":
		render = func() ([]byte, error) { return nodelink.RenderPNG(ctx, dot, opts.scale) }
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	if opts.cache == nil {
		return render()
	}
	scale := 1.0
	if format == "png" {
		scale = opts.scale
	}
	data, _, err := cache.GetOrRender(ctx, opts.cache, cache.ArtifactKey(dot, format, scale), 0, render)
	return data, err
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser. Otherwise it
// creates the file, along with missing parent directories.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
