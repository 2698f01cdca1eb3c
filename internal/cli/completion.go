package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mcinstall/pkg/game"
	"github.com/matzehuels/mcinstall/pkg/manifest"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mcinstall.

Bash:
  $ source <(mcinstall completion bash)

Zsh (with compinit enabled):
  $ mcinstall completion zsh > "${fpath[1]}/_mcinstall"

Fish:
  $ mcinstall completion fish > ~/.config/fish/completions/mcinstall.fish

PowerShell:
  PS> mcinstall completion powershell | Out-String | Invoke-Expression

Version arguments of install and show complete to the installed versions
and the release and snapshot aliases.`,
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
}

// completeVersions completes the first argument with the aliases and the
// versions installed in the main directory. It reads only local files so
// completion never waits on the network.
func (c *CLI) completeVersions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := c.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	gc, err := game.NewContext(c.Config.MainDir, "")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids, _ := gc.InstalledVersions()

	out := []string{manifest.AliasRelease, manifest.AliasSnapshot}
	out = append(out, ids...)
	matches := out[:0]
	for _, id := range out {
		if strings.HasPrefix(id, toComplete) {
			matches = append(matches, id)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
