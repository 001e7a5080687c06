// Package cache stores derived artifacts (extracted templates) keyed by
// content hashes.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for shared deployments of the HTTP server, and [NullCache] to disable
// caching. Keys come from a [Keyer] so that identical inputs (figure
// bytes, schema document, options) always map to the same entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. Callers treat backend failures as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// TTLTemplate bounds how long an extracted template is reused. Entries
	// are content addressed, so this only limits disk growth.
	TTLTemplate = 7 * 24 * time.Hour
)

// TemplateKeyOpts holds the options that change an extracted template.
type TemplateKeyOpts struct {
	PriorHash string `json:"prior,omitempty"` // hash of an explicit prior template
	SkipPrior bool   `json:"skip_prior,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// TemplateKey returns the key for the template extracted from the figure
	// with figureHash under the schema with schemaHash.
	TemplateKey(figureHash, schemaHash string, opts TemplateKeyOpts) string
}

// DefaultKeyer produces "template:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TemplateKey implements [Keyer].
func (DefaultKeyer) TemplateKey(figureHash, schemaHash string, opts TemplateKeyOpts) string {
	// Field order is fixed by the struct, so equal inputs encode equally.
	data, _ := json.Marshal(struct {
		Figure string          `json:"figure"`
		Schema string          `json:"schema"`
		Opts   TemplateKeyOpts `json:"opts"`
	}{figureHash, schemaHash, opts})
	return "template:" + Hash(data)
}

// Hash returns the hex SHA-256 of a figure document, prior template, or
// schema document. Runners hash the raw input bytes, so reformatting a
// figure yields a new key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache never stores templates. It backs --no-cache and
// cache.backend "none", so every make extracts afresh.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
