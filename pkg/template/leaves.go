package template

import "github.com/matzehuels/figstyle/pkg/figure"

// Leaf is one style value of a template with its full path, such as
// "layout.font.size" or "data.scatter[0].marker.color".
type Leaf struct {
	Path  string
	Value any
}

// Leaves returns every scalar value of t in template order. Empty objects
// and sequences produce no leaves.
func (t *Template) Leaves() []Leaf {
	var out []Leaf
	collectLeaves(t.Object(), "", &out)
	return out
}

func collectLeaves(v any, path string, out *[]Leaf) {
	switch x := v.(type) {
	case *figure.Object:
		if x == nil {
			*out = append(*out, Leaf{Path: path})
			return
		}
		x.Range(func(key string, child any) bool {
			collectLeaves(child, nextPath(x, key, path), out)
			return true
		})
	case []any:
		for i, child := range x {
			collectLeaves(child, nextPath(x, i, path), out)
		}
	default:
		*out = append(*out, Leaf{Path: path, Value: v})
	}
}
