package figure

import (
	"fmt"
	"io"
	"os"
)

// Figure is a chart description: an ordered list of traces plus a layout.
type Figure struct {
	Data   []*Object
	Layout *Object
}

// New returns an empty figure.
func New() *Figure {
	return &Figure{Layout: NewObject()}
}

// FromObject builds a figure from a decoded document root. Entries of
// "data" that are not objects are dropped; a missing or non-object
// "layout" becomes an empty object. The returned figure shares its traces
// and layout with root.
func FromObject(root *Object) *Figure {
	fig := New()
	if root == nil {
		return fig
	}
	if v, ok := root.Get("data"); ok {
		if seq, ok := AsSequence(v); ok {
			for _, item := range seq {
				if trace, ok := AsObject(item); ok {
					fig.Data = append(fig.Data, trace)
				}
			}
		}
	}
	if v, ok := root.Get("layout"); ok {
		if layout, ok := AsObject(v); ok {
			fig.Layout = layout
		}
	}
	return fig
}

// Object returns the figure as a document root with "data" and "layout".
func (f *Figure) Object() *Object {
	data := make([]any, 0, len(f.Data))
	for _, t := range f.Data {
		data = append(data, t)
	}
	layout := f.Layout
	if layout == nil {
		layout = NewObject()
	}
	return ObjectOf("data", data, "layout", layout)
}

// Template returns the prior template carried in layout.template, if any.
func (f *Figure) Template() (*Object, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.Layout.Get("template")
	if !ok {
		return nil, false
	}
	return AsObject(v)
}

// MarshalJSON encodes the figure as {"data": [...], "layout": {...}}.
func (f *Figure) MarshalJSON() ([]byte, error) {
	return f.Object().MarshalJSON()
}

// MarshalYAML encodes the figure as a YAML mapping.
func (f *Figure) MarshalYAML() (any, error) {
	return f.Object().MarshalYAML()
}

// Decode reads a figure document from r.
func Decode(r io.Reader) (*Figure, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(data)
}

// Parse decodes a figure document. The root must be an object.
func Parse(data []byte) (*Figure, error) {
	root, err := DecodeObject(data)
	if err != nil {
		return nil, err
	}
	return FromObject(root), nil
}

// Load reads a figure document from the file at path.
func Load(path string) (*Figure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fig, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fig, nil
}
