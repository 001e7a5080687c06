package template

import (
	"github.com/matzehuels/figstyle/pkg/figure"
	"github.com/matzehuels/figstyle/pkg/schema"
)

type attrLookup func(path string) (schema.AttributeInfo, bool)

// walker copies the style leaves of one node tree into out.
type walker struct {
	out        *figure.Object
	lookup     attrLookup
	defaultKey func(string) string
}

// walk visits node in insertion order. outPath addresses the template
// location; schemaPath addresses the live location and drives lookups.
// They differ below array-linked groups, where named items are renumbered
// and the default item is written under the group's default key.
func (w *walker) walk(node *figure.Object, outPath, schemaPath string) {
	node.Range(func(key string, child any) bool {
		nextOut := nextPath(node, key, outPath)
		nextSchema := nextPath(node, key, schemaPath)
		info, known := w.lookup(nextSchema)
		kind := figure.KindOf(child)

		switch {
		case known && (info.NoTemplating || info.ValType == schema.ValTypeDataArray):
		case known && info.ArrayOK && kind == figure.KindSequence:
		case info.ValType == "" && kind == figure.KindObject:
			w.walk(child.(*figure.Object), nextOut, nextSchema)
		case known && info.LinkedToArray && kind == figure.KindSequence:
			w.walkLinked(node, key, child.([]any), outPath, nextOut, nextSchema)
		case known && info.IsStyle():
			figure.SetPath(w.out, nextOut, figure.Clone(child))
		}
		return true
	})
}

// walkLinked extracts one template per distinct item name and a single
// default template from the first unnamed item.
func (w *walker) walkLinked(parent *figure.Object, key string, items []any, outPath, itemsOut, itemsSchema string) {
	seen := make(map[string]bool)
	named := 0
	defaultDone := false

	for i, item := range items {
		obj, ok := figure.AsObject(item)
		if !ok {
			continue
		}
		itemSchema := nextPath(items, i, itemsSchema)

		if name, ok := itemName(obj); ok {
			if seen[name] {
				continue
			}
			seen[name] = true
			w.walk(obj, nextPath(items, named, itemsOut), itemSchema)
			named++
			continue
		}

		if !defaultDone {
			w.walk(obj, nextPath(parent, w.defaultKey(key), outPath), itemSchema)
			defaultDone = true
		}
	}
}

// itemName returns the non-empty string name of a group item.
func itemName(item *figure.Object) (string, bool) {
	v, ok := item.Get("name")
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok && name != ""
}

// Extract builds a template from the style attributes of fig without
// consulting any template fig already carries.
func Extract(fig *figure.Figure, s schema.Schema) *Template {
	t := New()
	if fig == nil {
		return t
	}

	for _, trace := range fig.Data {
		if trace == nil {
			continue
		}
		out := figure.NewObject()
		w := &walker{
			out: out,
			lookup: func(path string) (schema.AttributeInfo, bool) {
				return s.TraceAttribute(trace, path)
			},
			defaultKey: s.ArrayDefaultKey,
		}
		w.walk(trace, "", "")
		t.appendTrace(s.TraceType(trace), out)
	}

	if fig.Layout != nil {
		layout := fig.Layout
		w := &walker{
			out: t.Layout,
			lookup: func(path string) (schema.AttributeInfo, bool) {
				return s.LayoutAttribute(layout, path)
			},
			defaultKey: s.ArrayDefaultKey,
		}
		w.walk(layout, "", "")
		t.Layout.Delete("template")
	}
	return t
}

// Make extracts a template from fig and merges it with the template fig's
// layout already carries, if any. fig is not modified.
func Make(fig *figure.Figure, s schema.Schema) *Template {
	t := Extract(fig, s)
	if prior, ok := fig.Template(); ok {
		t.MergeObject(prior)
	}
	return t
}
