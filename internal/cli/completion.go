package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for fourcolor.

To load completions:

Bash:
  $ source <(fourcolor completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ fourcolor completion bash > /etc/bash_completion.d/fourcolor
  # macOS:
  $ fourcolor completion bash > $(brew --prefix)/etc/bash_completion.d/fourcolor

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ fourcolor completion zsh > "${fpath[1]}/_fourcolor"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ fourcolor completion fish | source

  # To load completions for each session, execute once:
  $ fourcolor completion fish > ~/.config/fish/completions/fourcolor.fish

PowerShell:
  PS> fourcolor completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> fourcolor completion powershell > fourcolor.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
