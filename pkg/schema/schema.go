// Package schema classifies figure attribute paths.
//
// A [Schema] answers, for a structural path such as "marker.color" or
// "annotations[0].font.size", what kind of attribute lives there: its value
// type, whether it accepts per-point arrays, whether it is purely
// presentational ("style"), and whether it is a repeated, array-linked
// group such as layout annotations.
//
// [Registry] is the file-driven implementation. [Default] returns a registry
// built from the embedded schema that covers the common trace types and
// layout attributes.
package schema

import (
	"regexp"
	"strings"

	"github.com/matzehuels/figstyle/pkg/figure"
)

// Value types with special meaning during template extraction.
const (
	// ValTypeDataArray marks attributes that hold data, never style.
	ValTypeDataArray = "data_array"
)

// Roles.
const (
	RoleStyle = "style"
	RoleInfo  = "info"
	RoleData  = "data"
)

// AttributeInfo describes the attribute at one structural path.
// An empty ValType marks an attribute group (a container such as "font").
type AttributeInfo struct {
	ValType       string
	ArrayOK       bool
	Role          string
	LinkedToArray bool
	NoTemplating  bool
}

// IsGroup reports whether the info describes a container rather than a leaf.
func (a AttributeInfo) IsGroup() bool { return a.ValType == "" }

// IsStyle reports whether the attribute is presentational.
func (a AttributeInfo) IsStyle() bool { return a.Role == RoleStyle }

// Schema classifies trace and layout attribute paths.
//
// Implementations must derive array default keys so that ArrayDefaultKey(k)
// sorts lexicographically before k; template merging processes keys in
// sorted order and relies on defaults being seen first.
type Schema interface {
	// LayoutAttribute returns the info for path inside a layout object.
	LayoutAttribute(layout *figure.Object, path string) (AttributeInfo, bool)

	// TraceAttribute returns the info for path inside trace.
	TraceAttribute(trace *figure.Object, path string) (AttributeInfo, bool)

	// TraceType returns the resolved type of trace, falling back to the
	// schema's default trace type when "type" is absent or unknown.
	TraceType(trace *figure.Object) string

	// ArrayDefaultKey returns the key under which the default item of the
	// array-linked group key is stored, e.g. "annotationdefaults".
	ArrayDefaultKey(key string) string
}

// ArrayDefaultKey strips one trailing "s" from key and appends "defaults".
func ArrayDefaultKey(key string) string {
	return strings.TrimSuffix(key, "s") + "defaults"
}

var trailingDigits = regexp.MustCompile(`[0-9]+$`)

// BaseKey strips a trailing number from key, so "xaxis2" becomes "xaxis".
func BaseKey(key string) string {
	return trailingDigits.ReplaceAllString(key, "")
}

var indexSegment = regexp.MustCompile(`\[[0-9]+\]`)

// StripIndices removes bracketed indices from a path:
// "annotations[3].font.size" becomes "annotations.font.size".
func StripIndices(path string) string {
	return indexSegment.ReplaceAllString(path, "")
}
