package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/treeviz"
)

// Tree output formats.
const (
	treeFormatDOT = "dot"
	treeFormatSVG = "svg"
	treeFormatPNG = "png"
)

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format string
		output string
		opts   = treeviz.Options{Values: true}
	)

	cmd := &cobra.Command{
		Use:   "tree <template>",
		Short: "Draw the structure of a template",
		Long: `Draw the structure of a template as a Graphviz graph. Every object and list
becomes a box; style values are listed inside the box that holds them.

Examples:
  figstyle tree house.json | dot -Tsvg > house.svg   # DOT to stdout
  figstyle tree house.json -f svg -o house.svg       # Render with built-in Graphviz
  figstyle tree house.json --depth 3 --values=false  # Structure only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ferrors.ValidateFormat(format, treeFormatDOT, treeFormatSVG, treeFormatPNG); err != nil {
				return err
			}
			if format == treeFormatPNG && (output == "" || output == "-") {
				return ferrors.New(ferrors.ErrCodeInvalidInput, "png output needs --output")
			}

			t, err := pipeline.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			dot := treeviz.ToDOT(t, opts)

			var data []byte
			switch format {
			case treeFormatSVG:
				data, err = treeviz.RenderSVG(cmd.Context(), dot)
			case treeFormatPNG:
				data, err = treeviz.RenderPNG(cmd.Context(), dot)
			default:
				data = []byte(dot)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}

			toFile, err := writeOutput(output, data)
			if err != nil {
				return err
			}
			if toFile {
				printSuccess(cmd.OutOrStdout(), "Rendered template tree")
				printWritten(cmd.OutOrStdout(), output, format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", treeFormatDOT, "output format (dot, svg, png)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.Values, "values", opts.Values, "list style values inside boxes")
	cmd.Flags().IntVar(&opts.MaxDepth, "depth", 0, "maximum depth to draw (0 = unlimited)")
	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion(treeFormatDOT, treeFormatSVG, treeFormatPNG))

	return cmd
}
