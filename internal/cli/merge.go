package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/pkg/pipeline"
)

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "merge <old> <new>",
		Short: "Compose two templates",
		Long: `Compose two templates. Values from <new> win; <old> fills in whatever
<new> leaves unset. Repeated items (annotations, shapes, per-trace templates)
are matched by name first and by position otherwise.

Examples:
  figstyle merge corporate.json team.json -o combined.json
  figstyle merge base.yaml overrides.yaml --format yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			old, err := pipeline.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			next, err := pipeline.LoadTemplate(args[1])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			merged := runner.Merge(cmd.Context(), old, next)

			return emitTemplate(cmd.OutOrStdout(), merged, format, output, func(w io.Writer) {
				printSuccess(w, "Merged %s into %s", args[0], args[1])
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	registerTemplateFormats(cmd)

	return cmd
}
