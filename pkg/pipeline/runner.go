package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/figstyle/pkg/cache"
	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/figure"
	"github.com/matzehuels/figstyle/pkg/observability"
	"github.com/matzehuels/figstyle/pkg/schema"
	"github.com/matzehuels/figstyle/pkg/template"
)

const cacheKeyType = "template"

// Runner encapsulates template extraction with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Schema *schema.Registry
	Logger *log.Logger

	// TTL is the lifetime of cached templates. Zero means cache.TTLTemplate.
	TTL time.Duration
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If s is nil, the embedded default schema is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, s *schema.Registry, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if s == nil {
		s = schema.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Schema: s,
		Logger: logger,
	}
}

// Make extracts a template from the figure document data, consulting the
// cache first. data may be JSON, JSON with comments, or YAML.
func (r *Runner) Make(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	figureHash := cache.Hash(data)
	keyOpts := cache.TemplateKeyOpts{SkipPrior: opts.SkipPrior}
	if opts.Prior != nil {
		prior, err := opts.Prior.MarshalJSON()
		if err != nil {
			return nil, ferrors.Wrap(ferrors.ErrCodeInvalidTemplate, err, "encode prior template")
		}
		keyOpts.PriorHash = cache.Hash(prior)
	}
	key := r.Keyer.TemplateKey(figureHash, r.Schema.Hash(), keyOpts)

	if !opts.Refresh {
		if t, ok := r.lookup(ctx, key); ok {
			r.Logger.Debug("template cache hit", "figure", figureHash[:12])
			return &Result{
				Template:   t,
				FigureHash: figureHash,
				CacheHit:   true,
				Stats:      Stats{Traces: t.TraceCount(), Leaves: len(t.Leaves()), Duration: time.Since(start)},
			}, nil
		}
	}

	fig, err := figure.Parse(data)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidFigure, err, "parse figure")
	}

	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, len(fig.Data))

	var t *template.Template
	switch {
	case opts.Prior != nil:
		t = template.Extract(fig, r.Schema)
		t.Merge(opts.Prior)
	case opts.SkipPrior:
		t = template.Extract(fig, r.Schema)
	default:
		t = template.Make(fig, r.Schema)
	}

	stats := Stats{Traces: t.TraceCount(), Leaves: len(t.Leaves()), Duration: time.Since(start)}
	hooks.OnExtractComplete(ctx, stats.Traces, stats.Leaves, stats.Duration, nil)

	r.Logger.Info("extracted template",
		"traces", stats.Traces,
		"leaves", stats.Leaves,
		"duration", stats.Duration)

	r.store(ctx, key, t)
	return &Result{Template: t, FigureHash: figureHash, Stats: stats}, nil
}

// MakeFile extracts a template from the figure file at path.
func (r *Runner) MakeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return r.Make(ctx, data, opts)
}

// Merge composes next with old: next wins, old fills gaps. Neither input
// is modified.
func (r *Runner) Merge(ctx context.Context, old, next *template.Template) *template.Template {
	start := time.Now()
	out := next.Clone()
	out.Merge(old)

	leaves := len(out.Leaves())
	observability.Pipeline().OnMergeComplete(ctx, leaves, time.Since(start))
	r.Logger.Debug("merged templates", "leaves", leaves, "duration", time.Since(start))
	return out
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*template.Template, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	t, err := template.Parse(data)
	if err != nil {
		// Unreadable entry: recompute and overwrite.
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return t, true
}

func (r *Runner) store(ctx context.Context, key string, t *template.Template) {
	data, err := t.MarshalJSON()
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLTemplate
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}
