package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/schema"
)

// completionTimeout bounds library lookups made while the shell waits.
const completionTimeout = 2 * time.Second

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for figstyle.

Besides commands and flags, completions cover template library names
(store get/delete, make --from), lookup scopes taken from the active
schema, and output formats.

  bash:        source <(figstyle completion bash)
  zsh:         figstyle completion zsh > "${fpath[1]}/_figstyle"
  fish:        figstyle completion fish > ~/.config/fish/completions/figstyle.fish
  powershell:  figstyle completion powershell | Out-String | Invoke-Expression`,
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
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeLibraryNames completes the first argument with stored template
// names.
func (c *CLI) completeLibraryNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.libraryNames(cmd.Context(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// libraryNames returns the stored template names starting with prefix.
// Completion must never fail loudly, so errors yield no names.
func (c *CLI) libraryNames(ctx context.Context, prefix string) []string {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	st, err := c.newStore(ctx)
	if err != nil {
		return nil
	}
	defer st.Close()

	entries, err := st.List(ctx)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name, prefix) {
			names = append(names, e.Name)
		}
	}
	return names
}

// completeLookupScope completes the scope argument of lookup with the
// schema's trace types and "layout".
func (c *CLI) completeLookupScope(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := c.loadSchema()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	scopes := append([]string{schema.ScopeLayout}, reg.TraceTypes()...)
	return filterPrefix(scopes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// formatCompletion returns a flag completion function over formats.
func formatCompletion(formats ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return filterPrefix(formats, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// registerTemplateFormats adds completion for a template --format flag.
func registerTemplateFormats(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion(pipeline.FormatJSON, pipeline.FormatYAML))
}

func filterPrefix(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
