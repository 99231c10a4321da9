package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/save"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nodecanvas. Completions cover
subcommands and flags.

To load completions:

Bash:
  $ source <(nodecanvas completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nodecanvas completion bash > /etc/bash_completion.d/nodecanvas
  # macOS:
  $ nodecanvas completion bash > $(brew --prefix)/etc/bash_completion.d/nodecanvas

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ nodecanvas completion zsh > "${fpath[1]}/_nodecanvas"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nodecanvas completion fish | source

  # To load completions for each session, execute once:
  $ nodecanvas completion fish > ~/.config/fish/completions/nodecanvas.fish

PowerShell:
  PS> nodecanvas completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> nodecanvas completion powershell > nodecanvas.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
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

// completeSceneNode completes [file] [id] arguments: scene files first, then
// the node ids found in that file.
func completeSceneNode(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	case 1:
		return nodeIDs(args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// nodeIDs lists the ids in the scene at path starting with prefix, topmost
// first. An unreadable file completes nothing.
func nodeIDs(path, prefix string) []string {
	c, err := save.ReadFile(path)
	if err != nil {
		return nil
	}
	var ids []string
	order := c.ZOrder()
	for i := len(order) - 1; i >= 0; i-- {
		if id := order[i]; strings.HasPrefix(string(id), prefix) {
			n, _ := c.Node(id)
			ids = append(ids, string(id)+"\t"+describeNode(n))
		}
	}
	return ids
}

func describeNode(n *scene.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return fmtVec(n.Position)
}
