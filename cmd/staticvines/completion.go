package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for staticvines.

To load completions:

Bash:
  $ source <(staticvines completion bash)
  # To load permanently:
  $ staticvines completion bash > /etc/bash_completion.d/staticvines

Zsh:
  $ staticvines completion zsh > "${fpath[1]}/_staticvines"
  $ compinit

Fish:
  $ staticvines completion fish | source
  # To load permanently:
  $ staticvines completion fish > ~/.config/fish/completions/staticvines.fish

PowerShell:
  PS> staticvines completion powershell | Out-String | Invoke-Expression
`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletion(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
