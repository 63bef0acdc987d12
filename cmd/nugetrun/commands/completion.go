package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nugetrun.

To load completions:

Bash:
  $ source <(nugetrun completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nugetrun completion bash > /etc/bash_completion.d/nugetrun
  # macOS:
  $ nugetrun completion bash > $(brew --prefix)/etc/bash_completion.d/nugetrun

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ nugetrun completion zsh > "${fpath[1]}/_nugetrun"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nugetrun completion fish | source

  # To load completions for each session, execute once:
  $ nugetrun completion fish > ~/.config/fish/completions/nugetrun.fish

PowerShell:
  PS> nugetrun completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> nugetrun completion powershell > nugetrun.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
