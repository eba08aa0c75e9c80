package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/fourcolor/pkg/errors"
)

// runCommand creates the run command, which replays a script and prints the
// resulting graph.
func (c *CLI) runCommand() *cobra.Command {
	var (
		steps bool
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "run <script.toml>",
		Short: "Replay a command script and summarize the coloring",
		Long: `Replay a command script against a fresh engine.

Every step is applied in order. Refused steps are recorded and the replay
continues unless the step declares expect = "ok" or the script is strict.
A failed Kempe resolution always stops the replay.`,
		Example: `  fourcolor run wheel.toml
  fourcolor run wheel.toml --steps`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.replay(cmd, args[0])
			if rep == nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !quiet {
				printReport(w, rep, steps || err != nil)
			}
			if err != nil {
				if errors.Is(err, errors.ErrCodeKempeExhaustion) {
					printError(w, "no Kempe swap can recolor the overflow node")
				}
				return err
			}
			if rep.Refused > 0 {
				printInfo(w, "%d step(s) refused", rep.Refused)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&steps, "steps", false, "list every step with its outcome")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report errors")

	return cmd
}
