// Package figure provides the value model for chart figures and templates.
//
// # Values
//
// A figure is an arbitrarily nested tree of three kinds of values:
//
//   - [*Object]: a string-keyed mapping that remembers insertion order
//   - []any: an ordered sequence
//   - everything else (string, float64, int64, bool, nil): a scalar
//
// [KindOf] classifies a value into one of these kinds. Object key order is
// preserved by every codec in this package, so walking a decoded figure
// visits keys in the order they were written. Template extraction relies on
// this to produce byte-identical output for identical input.
//
// # Decoding
//
// [Decode] reads a figure document in JSON, JSON with comments, or YAML:
//
//	{
//	  "data": [{"type": "scatter", "x": [1, 2, 3], "marker": {"color": "red"}}],
//	  "layout": {"font": {"size": 12}}
//	}
//
// Missing or malformed "data" and "layout" members degrade to an empty trace
// list and an empty layout object rather than failing.
//
// # Paths
//
// [GetPath] and [SetPath] address nested values with dotted paths and
// bracketed indices, e.g. "annotations[0].font.size". [SetPath] creates
// intermediate objects and sequences as needed.
package figure
