// Package cli implements the figstyle command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/figstyle/internal/config"
	"github.com/matzehuels/figstyle/pkg/buildinfo"
	"github.com/matzehuels/figstyle/pkg/cache"
	"github.com/matzehuels/figstyle/pkg/observability"
	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/schema"
	"github.com/matzehuels/figstyle/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "figstyle"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	schemaPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "figstyle extracts reusable style templates from chart figures",
		Long: `figstyle turns a chart figure (data traces plus layout) into a style-only
template that can be applied to other figures, merged with existing templates,
and kept in a named template library.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.config(); err != nil {
				return err
			}
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./figstyle.toml or ~/.config/figstyle/figstyle.toml)")
	root.PersistentFlags().StringVar(&c.schemaPath, "schema", "", "schema document (default: embedded schema)")

	// Register all subcommands
	root.AddCommand(c.makeCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.lookupCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config returns the loaded configuration, reading it on first use.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("using config file", "path", cfg.File)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	reg, err := c.loadSchema()
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(c.newCache(ctx, cfg, noCache), keyer, reg, c.Logger)
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

// loadSchema returns the registry named by --schema or schema.path, or the
// embedded default.
func (c *CLI) loadSchema() (*schema.Registry, error) {
	path := c.schemaPath
	if path == "" && c.cfg != nil {
		path = c.cfg.Schema.Path
	}
	if path == "" {
		return schema.Default(), nil
	}
	c.Logger.Debug("loading schema", "path", path)
	return schema.Load(path)
}

// newCache opens the configured cache backend. Cache problems are never
// fatal: a backend that cannot be opened disables caching with a warning.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache()
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.Redis.Addr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

// newStore opens the configured template library.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == config.BackendMongo {
		c.Logger.Debug("connecting to mongo", "database", cfg.Mongo.Database)
		return store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	}
	return store.NewFileStore(cfg.Store.Dir)
}
