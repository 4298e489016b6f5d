package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// sceneExts are the file extensions scene.Load accepts.
var sceneExts = []string{"toml", "json"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for infinicanvas.

Scene arguments complete to .toml and .json files, and --format completes to
the formats each command can write.

Bash:
  $ source <(infinicanvas completion bash)

Zsh:
  $ infinicanvas completion zsh > "${fpath[1]}/_infinicanvas"

Fish:
  $ infinicanvas completion fish > ~/.config/fish/completions/infinicanvas.fish

PowerShell:
  PS> infinicanvas completion powershell | Out-String | Invoke-Expression
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

// completeScenes offers scene files for up to limit positional arguments.
// A limit of 0 means any number.
func completeScenes(limit int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if limit > 0 && len(args) >= limit {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return sceneExts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeConfig offers TOML files for --config.
func completeConfig(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats offers the formats a command writes. With list set the value
// is comma-separated: earlier entries are kept and not offered again.
func completeFormats(list bool, formats ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix, last := "", toComplete
		if list {
			if i := strings.LastIndex(toComplete, ","); i >= 0 {
				prefix, last = toComplete[:i+1], toComplete[i+1:]
			}
		}
		taken := make(map[string]bool)
		for _, f := range strings.Split(prefix, ",") {
			taken[strings.TrimSpace(f)] = true
		}

		var out []string
		for _, f := range formats {
			if !taken[f] && strings.HasPrefix(f, last) {
				out = append(out, prefix+f)
			}
		}
		directive := cobra.ShellCompDirectiveNoFileComp
		if list {
			directive |= cobra.ShellCompDirectiveNoSpace
		}
		return out, directive
	}
}
