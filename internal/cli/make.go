package cli

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/template"
)

// makeOpts holds the command-line flags for the make command.
type makeOpts struct {
	prior     string // prior template file
	from      string // prior template from the library
	skipPrior bool   // ignore the figure's own template
	format    string // output format
	output    string // output file path (stdout if empty)
	noCache   bool
	refresh   bool
	save      string // library name to store the result under
}

// makeCommand creates the make command.
func (c *CLI) makeCommand() *cobra.Command {
	opts := makeOpts{format: pipeline.FormatJSON}

	cmd := &cobra.Command{
		Use:   "make <figure>",
		Short: "Extract a style template from a figure",
		Long: `Extract a style template from a figure file (JSON, JSON with comments, or YAML).

Data-carrying attributes are dropped and only presentational values are kept.
If the figure's layout already carries a template, the extracted values are
merged over it. Use --template or --from to merge over a different template
instead, or --skip-prior to ignore it.

Examples:
  figstyle make chart.json                        # Template to stdout
  figstyle make chart.json -o house.json          # Template to a file
  figstyle make chart.yaml --format yaml          # YAML output
  figstyle make chart.json --from corporate       # Merge over a stored template
  figstyle make chart.json --save house           # Store in the library
  figstyle make - < chart.json                    # Read from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMake(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.prior, "template", "", "prior template file (overrides the figure's own template)")
	cmd.Flags().StringVar(&opts.from, "from", "", "prior template from the library")
	cmd.Flags().BoolVar(&opts.skipPrior, "skip-prior", false, "ignore the template carried by the figure")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (json, yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached templates")
	cmd.Flags().StringVar(&opts.save, "save", "", "store the template in the library under this name")
	cmd.MarkFlagsMutuallyExclusive("template", "from", "skip-prior")
	registerTemplateFormats(cmd)
	_ = cmd.RegisterFlagCompletionFunc("from", func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return c.libraryNames(cmd.Context(), toComplete), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runMake(cmd *cobra.Command, path string, opts makeOpts) error {
	ctx := cmd.Context()
	if err := pipeline.ValidateFormat(opts.format); err != nil {
		return err
	}

	// Templates written to stdout stay clean for piping, so no spinner there.
	var spin *Spinner
	if opts.output != "" && opts.output != "-" {
		spin = newSpinner(ctx, cmd.ErrOrStderr(), "Reading "+filepath.Base(path)+"...")
		spin.Start()
	}
	defer spin.Stop()

	runOpts := pipeline.Options{SkipPrior: opts.skipPrior, Refresh: opts.refresh}
	switch {
	case opts.prior != "":
		spin.Stage("Loading prior template %s...", filepath.Base(opts.prior))
		prior, err := pipeline.LoadTemplate(opts.prior)
		if err != nil {
			return err
		}
		runOpts.Prior = prior
	case opts.from != "":
		spin.Stage("Fetching prior template %q from the library...", opts.from)
		prior, err := c.libraryTemplate(cmd, opts.from)
		if err != nil {
			return err
		}
		runOpts.Prior = prior
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spin.Stage("Extracting styles from %s...", filepath.Base(path))
	res, err := runner.MakeFile(ctx, path, runOpts)
	if err != nil {
		return err
	}

	if opts.save != "" {
		spin.Stage("Saving template as %q...", opts.save)
		st, err := c.newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if _, err := st.Put(ctx, opts.save, res.Template, runner.Schema.Hash()); err != nil {
			return err
		}
		loggerFromContext(ctx).Info("saved template", "name", opts.save)
	}

	spin.Stop()
	return emitTemplate(cmd.OutOrStdout(), res.Template, opts.format, opts.output, func(w io.Writer) {
		prog.done("Extracted template")
		printStats(w, res.Stats.Traces, res.Stats.Leaves, res.Stats.Duration, res.CacheHit)
	})
}

// emitTemplate encodes t and writes it to output. report runs after a
// successful write to a file and prints to w; stdout output stays clean
// for piping.
func emitTemplate(w io.Writer, t *template.Template, format, output string, report func(io.Writer)) error {
	data, err := pipeline.Encode(t, format)
	if err != nil {
		return err
	}
	toFile, err := writeOutput(output, data)
	if err != nil {
		return err
	}
	if toFile {
		if report != nil {
			report(w)
		}
		printWritten(w, output, format)
	}
	return nil
}
