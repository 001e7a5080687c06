package template

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/figstyle/pkg/figure"
)

// Template is a style-only description of a figure.
//
// Data maps a trace type to a sequence of per-trace templates
// (*figure.Object values, one per extracted trace in figure order). Layout
// mirrors the stylistic subset of a figure layout.
type Template struct {
	Data   *figure.Object
	Layout *figure.Object
}

// New returns an empty template.
func New() *Template {
	return &Template{Data: figure.NewObject(), Layout: figure.NewObject()}
}

// FromObject builds a template from a {"data": ..., "layout": ...} root.
// Trace buckets that are not sequences and bucket items that are not
// objects are dropped; a missing or malformed layout becomes empty. The
// returned template shares structure with root.
func FromObject(root *figure.Object) *Template {
	t := New()
	if v, ok := root.Get("data"); ok {
		if data, ok := figure.AsObject(v); ok {
			data.Range(func(typ string, bucket any) bool {
				seq, ok := figure.AsSequence(bucket)
				if !ok {
					return true
				}
				items := make([]any, 0, len(seq))
				for _, item := range seq {
					if _, ok := figure.AsObject(item); ok {
						items = append(items, item)
					}
				}
				t.Data.Set(typ, items)
				return true
			})
		}
	}
	if v, ok := root.Get("layout"); ok {
		if layout, ok := figure.AsObject(v); ok {
			t.Layout = layout
		}
	}
	return t
}

// Object returns the template as a document root. The root shares
// structure with t.
func (t *Template) Object() *figure.Object {
	return figure.ObjectOf("data", t.Data, "layout", t.Layout)
}

// Traces returns the per-trace templates recorded for traceType.
func (t *Template) Traces(traceType string) []*figure.Object {
	v, _ := t.Data.Get(traceType)
	seq, _ := figure.AsSequence(v)
	out := make([]*figure.Object, 0, len(seq))
	for _, item := range seq {
		if obj, ok := figure.AsObject(item); ok {
			out = append(out, obj)
		}
	}
	return out
}

// TraceCount returns the number of per-trace templates across all types.
func (t *Template) TraceCount() int {
	n := 0
	t.Data.Range(func(_ string, v any) bool {
		seq, _ := figure.AsSequence(v)
		n += len(seq)
		return true
	})
	return n
}

func (t *Template) appendTrace(traceType string, trace *figure.Object) {
	v, _ := t.Data.Get(traceType)
	seq, _ := figure.AsSequence(v)
	t.Data.Set(traceType, append(seq, trace))
}

// Merge fills t with values from prior; see [Merge]. prior is not modified.
func (t *Template) Merge(prior *Template) {
	if prior == nil {
		return
	}
	t.MergeObject(prior.Object())
}

// MergeObject is [Template.Merge] for a prior template given as a document
// root, such as the value of a figure's layout.template.
func (t *Template) MergeObject(prior *figure.Object) {
	root := t.Object()
	Merge(prior, root)
	*t = *FromObject(root)
}

// Clone returns a deep copy of t.
func (t *Template) Clone() *Template {
	return &Template{Data: t.Data.Clone(), Layout: t.Layout.Clone()}
}

// Equal reports whether t and other hold the same content.
func (t *Template) Equal(other *Template) bool {
	return t.Data.Equal(other.Data) && t.Layout.Equal(other.Layout)
}

// MarshalJSON encodes the template as {"data": {...}, "layout": {...}}
// with keys in template order.
func (t *Template) MarshalJSON() ([]byte, error) {
	return t.Object().MarshalJSON()
}

// UnmarshalJSON decodes a template document.
func (t *Template) UnmarshalJSON(data []byte) error {
	root, err := figure.DecodeObject(data)
	if err != nil {
		return err
	}
	*t = *FromObject(root)
	return nil
}

// MarshalYAML encodes the template as a YAML mapping.
func (t *Template) MarshalYAML() (any, error) {
	return t.Object().MarshalYAML()
}

// Decode reads a template document (JSON, JSON with comments, or YAML).
func Decode(r io.Reader) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(data)
}

// Parse decodes a template document.
func Parse(data []byte) (*Template, error) {
	root, err := figure.DecodeObject(data)
	if err != nil {
		return nil, err
	}
	return FromObject(root), nil
}

// Load reads a template document from the file at path.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
