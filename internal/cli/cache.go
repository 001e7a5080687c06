package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/internal/config"
	"github.com/matzehuels/figstyle/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the template cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendFile {
				printWarning(cmd.OutOrStdout(), "cache clear only applies to the file cache (backend is %q)", cfg.Cache.Backend)
				return nil
			}

			count, dir, err := clearFileCache(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSuccess(out, "Cleared %d cached templates", count)
			printDetail(out, "Directory: %s", dir)
			return nil
		},
	}
}

func clearFileCache(cfg *config.Config) (int, string, error) {
	dir, err := cfg.CacheDir()
	if err != nil {
		return 0, "", fmt.Errorf("get cache dir: %w", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, dir, err
	}
	defer fc.Close()

	n, err := fc.Clear()
	return n, dir, err
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
