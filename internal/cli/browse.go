package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/pkg/pipeline"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <template>",
		Short: "Interactively browse the style values of a template",
		Long: `Interactively browse the style values of a template.

Keys: ↑/↓ or j/k to move, / to filter by path, esc to clear the filter,
q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pipeline.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			leaves := t.Leaves()
			if len(leaves) == 0 {
				printInfo(cmd.OutOrStdout(), "Template has no style values")
				return nil
			}

			p := tea.NewProgram(NewLeafBrowserModel(args[0], leaves), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			return nil
		},
	}
}
