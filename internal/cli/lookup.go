package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/pkg/schema"
)

// lookupCommand creates the lookup command.
func (c *CLI) lookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <trace-type|layout> <path>",
		Short: "Show how the schema classifies an attribute path",
		Long: `Show how the schema classifies an attribute path, and whether values at
that path end up in extracted templates.

Examples:
  figstyle lookup layout font.size
  figstyle lookup layout annotations[0].font.color
  figstyle lookup scatter marker.size`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeLookupScope,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.loadSchema()
			if err != nil {
				return err
			}
			info, err := reg.Lookup(args[0], args[1])
			if err != nil {
				return err
			}

			printAttribute(cmd.OutOrStdout(), args[0], args[1], describeAttribute(info))
			return nil
		},
	}
}

// describeAttribute returns display rows for info.
func describeAttribute(info schema.AttributeInfo) [][2]string {
	if info.IsGroup() {
		kind := "group"
		if info.LinkedToArray {
			kind = "array-linked group"
		}
		return [][2]string{{"kind", kind}, {"templated", "descends"}}
	}

	role := info.Role
	if role == "" {
		role = "-"
	}
	return [][2]string{
		{"kind", "attribute"},
		{"type", info.ValType},
		{"role", role},
		{"array ok", strconv.FormatBool(info.ArrayOK)},
		{"templated", templatedVerdict(info)},
	}
}

func templatedVerdict(info schema.AttributeInfo) string {
	switch {
	case info.NoTemplating:
		return "no (excluded from templates)"
	case info.ValType == schema.ValTypeDataArray:
		return "no (data)"
	case !info.IsStyle():
		return "no (not a style attribute)"
	case info.ArrayOK:
		return "yes, unless given per point"
	default:
		return "yes"
	}
}
