package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/store"
	"github.com/matzehuels/figstyle/pkg/template"
)

// storeCommand creates the template library command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "store",
		Aliases: []string{"library"},
		Short:   "Manage the named template library",
		Long: `Manage the named template library.

The library lives in ~/.config/figstyle/templates by default, or in MongoDB
when store.backend is "mongo".`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo(cmd.OutOrStdout(), "No stored templates")
				printNextStep(cmd.OutOrStdout(), "Save one with", "figstyle make <figure> --save <name>")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), entryTable(entries))
			return nil
		},
	}
}

func entryTable(entries []*store.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Name,
			fmt.Sprintf("%d", e.Template.TraceCount()),
			fmt.Sprintf("%d", len(e.Template.Leaves())),
			formatRelativeTime(e.UpdatedAt),
		})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Traces", "Values", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 3:
				return StyleDim
			default:
				return StyleValue
			}
		}).
		Render()
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:               "get <name>",
		Short:             "Print a stored template",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLibraryNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			t, err := c.libraryTemplate(cmd, args[0])
			if err != nil {
				return err
			}
			return emitTemplate(cmd.OutOrStdout(), t, format, output, func(w io.Writer) {
				printSuccess(w, "Exported %s", args[0])
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	registerTemplateFormats(cmd)
	return cmd
}

func (c *CLI) storePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <template>",
		Short: "Store a template file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := pipeline.LoadTemplate(args[1])
			if err != nil {
				return err
			}
			reg, err := c.loadSchema()
			if err != nil {
				return err
			}
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			e, err := st.Put(cmd.Context(), args[0], t, reg.Hash())
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Stored %s", StyleHighlight.Render(e.Name))
			printDetail(cmd.OutOrStdout(), "ID: %s", e.ID)
			return nil
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>",
		Aliases:           []string{"rm"},
		Short:             "Remove a stored template",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLibraryNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return libraryError(args[0], err)
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %s", args[0])
			return nil
		},
	}
}

// libraryTemplate loads a template from the library.
func (c *CLI) libraryTemplate(cmd *cobra.Command, name string) (*template.Template, error) {
	st, err := c.newStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer st.Close()

	e, err := st.Get(cmd.Context(), name)
	if err != nil {
		return nil, libraryError(name, err)
	}
	return e.Template, nil
}

func libraryError(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ferrors.New(ferrors.ErrCodeTemplateNotFound, "no template named %q in the library", name)
	}
	return err
}
