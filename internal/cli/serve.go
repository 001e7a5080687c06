package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. The server uses the same schema, cache, and template
library as the CLI; see "figstyle --help" for configuration.

Examples:
  figstyle serve
  figstyle serve --addr :8080
  FIGSTYLE_CACHE_BACKEND=redis FIGSTYLE_STORE_BACKEND=mongo figstyle serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			printInfo(cmd.OutOrStdout(), "Serving on %s", StyleLink.Render("http://"+addr))
			return server.New(runner, st, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
