package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/fourcolor/internal/server"
	"github.com/matzehuels/fourcolor/pkg/script"
)

// serveCommand creates the serve command, which exposes one engine over HTTP
// until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		preload string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an engine over HTTP",
		Long: `Serve a single engine over a JSON HTTP API.

The optional --script is replayed before the server starts, so clients see
its final graph. Shut down with Ctrl-C.`,
		Example: `  fourcolor serve --addr :8080
  fourcolor serve --script wheel.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEngine(c.Logger)
			if err != nil {
				return err
			}
			if preload != "" {
				s, err := script.Load(preload)
				if err != nil {
					return err
				}
				if _, err := script.NewRunner(e, c.Logger).Run(cmd.Context(), s); err != nil {
					return err
				}
			}
			return server.New(e, c.Logger).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&preload, "script", "", "script to replay before serving")

	return cmd
}
