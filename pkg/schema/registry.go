package schema

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/figure"
)

//go:embed default.toml
var defaultSchema []byte

// Registry is a [Schema] backed by a declarative TOML document:
//
//	default_trace_type = "scatter"
//
//	[layout.attributes]
//	"font.size"   = { val_type = "number", role = "style" }
//	"annotations" = { linked_to_array = true }
//
//	[all_traces.attributes]
//	"uid" = { val_type = "string", no_templating = true }
//
//	[traces.scatter.attributes]
//	"x"           = { val_type = "data_array" }
//	"marker.size" = { val_type = "number", role = "style", array_ok = true }
//
// Attributes under all_traces apply to every trace type unless the type
// declares the same path itself. Any strict prefix of a declared path that
// is not declared itself is an implicit attribute group.
//
// Lookups ignore bracketed indices, and a path segment with a numeric suffix
// that is unknown falls back to its base key, so "xaxis2.title" resolves
// through "xaxis.title". The default key of a linked array resolves as a
// group holding the item attributes: "annotationdefaults.font.size" has the
// info of "annotations.font.size".
//
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	defaultTraceType string
	layout           *table
	traces           map[string]*table
	hash             string
}

var _ Schema = (*Registry)(nil)

type document struct {
	DefaultTraceType string              `toml:"default_trace_type"`
	Layout           scopeDoc            `toml:"layout"`
	AllTraces        scopeDoc            `toml:"all_traces"`
	Traces           map[string]scopeDoc `toml:"traces"`
}

type scopeDoc struct {
	Attributes map[string]attributeDoc `toml:"attributes"`
}

type attributeDoc struct {
	ValType       string `toml:"val_type"`
	ArrayOK       bool   `toml:"array_ok"`
	Role          string `toml:"role"`
	LinkedToArray bool   `toml:"linked_to_array"`
	NoTemplating  bool   `toml:"no_templating"`
}

var validRoles = map[string]bool{"": true, RoleStyle: true, RoleInfo: true, RoleData: true}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded schema.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Parse(defaultSchema)
		if err != nil {
			panic(fmt.Sprintf("schema: embedded default schema is invalid: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// DefaultSource returns the embedded schema document.
func DefaultSource() []byte {
	return slices.Clone(defaultSchema)
}

// Load reads and parses the schema document at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeFileNotFound, err, "read schema %s", path)
	}
	return Parse(data)
}

// Parse builds a registry from a TOML schema document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidSchema, err, "parse schema")
	}

	if doc.DefaultTraceType == "" {
		return nil, ferrors.New(ferrors.ErrCodeInvalidSchema, "default_trace_type is required")
	}
	if _, ok := doc.Traces[doc.DefaultTraceType]; !ok {
		return nil, ferrors.New(ferrors.ErrCodeInvalidSchema,
			"default trace type %q has no [traces.%s] section", doc.DefaultTraceType, doc.DefaultTraceType)
	}

	layout, err := newTable(doc.Layout.Attributes, nil)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	traces := make(map[string]*table, len(doc.Traces))
	for name, scope := range doc.Traces {
		t, err := newTable(scope.Attributes, doc.AllTraces.Attributes)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", name, err)
		}
		traces[name] = t
	}

	sum := sha256.Sum256(data)
	return &Registry{
		defaultTraceType: doc.DefaultTraceType,
		layout:           layout,
		traces:           traces,
		hash:             hex.EncodeToString(sum[:]),
	}, nil
}

// LayoutAttribute implements [Schema].
func (r *Registry) LayoutAttribute(_ *figure.Object, path string) (AttributeInfo, bool) {
	return r.layout.lookup(path)
}

// TraceAttribute implements [Schema].
func (r *Registry) TraceAttribute(trace *figure.Object, path string) (AttributeInfo, bool) {
	return r.traces[r.TraceType(trace)].lookup(path)
}

// TraceType implements [Schema].
func (r *Registry) TraceType(trace *figure.Object) string {
	if v, ok := trace.Get("type"); ok {
		if s, ok := v.(string); ok {
			if _, known := r.traces[s]; known {
				return s
			}
		}
	}
	return r.defaultTraceType
}

// ArrayDefaultKey implements [Schema].
func (r *Registry) ArrayDefaultKey(key string) string {
	return ArrayDefaultKey(key)
}

// ScopeLayout selects the layout in [Registry.Lookup].
const ScopeLayout = "layout"

// Lookup classifies path in scope, which is [ScopeLayout] or one of the
// declared trace types. Unlike the [Schema] methods it reports an unknown
// scope or path as an error.
func (r *Registry) Lookup(scope, path string) (AttributeInfo, error) {
	var (
		info AttributeInfo
		ok   bool
	)
	switch {
	case scope == ScopeLayout:
		info, ok = r.layout.lookup(path)
	case r.traces[scope] != nil:
		info, ok = r.traces[scope].lookup(path)
	default:
		return info, ferrors.New(ferrors.ErrCodeInvalidInput,
			"unknown scope %q (want %s or one of: %s)", scope, ScopeLayout, strings.Join(r.TraceTypes(), ", "))
	}
	if !ok {
		return info, ferrors.New(ferrors.ErrCodeNotFound, "no attribute %q in %s", path, scope)
	}
	return info, nil
}

// DefaultTraceType returns the type assumed for traces without a known type.
func (r *Registry) DefaultTraceType() string {
	return r.defaultTraceType
}

// TraceTypes returns the declared trace types in sorted order.
func (r *Registry) TraceTypes() []string {
	names := make([]string, 0, len(r.traces))
	for name := range r.traces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Hash returns the SHA-256 of the source document, for cache keys.
func (r *Registry) Hash() string {
	return r.hash
}

// table holds the attributes of one scope (the layout or one trace type).
type table struct {
	attrs    map[string]AttributeInfo
	groups   map[string]bool
	defaults map[string]string // "annotationdefaults" -> "annotations"
}

func newTable(attrs, shared map[string]attributeDoc) (*table, error) {
	t := &table{
		attrs:    make(map[string]AttributeInfo, len(attrs)+len(shared)),
		groups:   make(map[string]bool),
		defaults: make(map[string]string),
	}
	for _, src := range []map[string]attributeDoc{shared, attrs} {
		for path, a := range src {
			if err := t.add(path, a); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (t *table) add(path string, a attributeDoc) error {
	if path == "" || strings.Contains(path, "[") {
		return ferrors.New(ferrors.ErrCodeInvalidSchema, "invalid attribute path %q", path)
	}
	if !validRoles[a.Role] {
		return ferrors.New(ferrors.ErrCodeInvalidSchema, "%s: unknown role %q", path, a.Role)
	}

	segs := strings.Split(path, ".")
	if a.LinkedToArray {
		key := segs[len(segs)-1]
		if ArrayDefaultKey(key) >= key {
			return ferrors.New(ferrors.ErrCodeInvalidSchema,
				"%s: default key %q must sort before %q", path, ArrayDefaultKey(key), key)
		}
		t.defaults[joinPath(segs[:len(segs)-1], ArrayDefaultKey(key))] = path
	}

	t.attrs[path] = AttributeInfo{
		ValType:       a.ValType,
		ArrayOK:       a.ArrayOK,
		Role:          a.Role,
		LinkedToArray: a.LinkedToArray,
		NoTemplating:  a.NoTemplating,
	}
	for i := 1; i < len(segs); i++ {
		t.groups[strings.Join(segs[:i], ".")] = true
	}
	return nil
}

func (t *table) known(path string) bool {
	_, ok := t.attrs[path]
	return ok || t.groups[path]
}

func (t *table) lookup(path string) (AttributeInfo, bool) {
	if t == nil {
		return AttributeInfo{}, false
	}
	path = StripIndices(path)
	if path == "" {
		return AttributeInfo{}, false
	}

	segs := strings.Split(path, ".")
	canon := make([]string, 0, len(segs))
	viaDefault := false
	for _, seg := range segs {
		viaDefault = false
		full := joinPath(canon, seg)
		switch {
		case t.known(full):
		case t.defaults[full] != "":
			// Items under a default key are classified like the group items.
			linked := strings.Split(t.defaults[full], ".")
			seg = linked[len(linked)-1]
			viaDefault = true
		default:
			base := BaseKey(seg)
			if base == seg || base == "" || !t.known(joinPath(canon, base)) {
				return AttributeInfo{}, false
			}
			seg = base
		}
		canon = append(canon, seg)
	}

	// The default key itself is a plain container, not a linked array.
	if viaDefault {
		return AttributeInfo{}, true
	}
	if info, ok := t.attrs[strings.Join(canon, ".")]; ok {
		return info, true
	}
	return AttributeInfo{}, true
}

func joinPath(prefix []string, seg string) string {
	if len(prefix) == 0 {
		return seg
	}
	return strings.Join(prefix, ".") + "." + seg
}
