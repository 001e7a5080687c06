package template

import "github.com/matzehuels/figstyle/pkg/figure"

// arrayTemplater resolves the prior template item for each live item of
// an array-linked group.
type arrayTemplater struct {
	items  []any
	byName map[string]int
}

func newArrayTemplater(items []any) *arrayTemplater {
	t := &arrayTemplater{
		items:  items,
		byName: make(map[string]int),
	}
	for i, item := range items {
		obj, ok := figure.AsObject(item)
		if !ok {
			continue
		}
		if name, ok := itemName(obj); ok {
			if _, dup := t.byName[name]; !dup {
				t.byName[name] = i
			}
		}
	}
	return t
}

// resolve returns the template item for the live item at index i: the
// first prior item with the same name, else the prior item at i modulo the
// prior length.
func (t *arrayTemplater) resolve(item *figure.Object, i int) (*figure.Object, bool) {
	if len(t.items) == 0 {
		return nil, false
	}
	if name, ok := itemName(item); ok {
		if j, found := t.byName[name]; found {
			return figure.AsObject(t.items[j])
		}
	}
	return figure.AsObject(t.items[i%len(t.items)])
}

// leftovers returns clones of the prior items beyond index n.
func (t *arrayTemplater) leftovers(n int) []any {
	var out []any
	for i := n; i < len(t.items); i++ {
		out = append(out, figure.Clone(t.items[i]))
	}
	return out
}

// reconcile merges the prior items old into the live items cur and
// returns the extended sequence.
func reconcile(old, cur []any) []any {
	t := newArrayTemplater(old)
	for i, item := range cur {
		obj, ok := figure.AsObject(item)
		if !ok {
			continue
		}
		if prior, ok := t.resolve(obj, i); ok {
			mergeObjects(prior, obj)
		}
	}

	cur = append(cur, t.leftovers(len(cur))...)
	for _, item := range cur {
		if obj, ok := figure.AsObject(item); ok {
			obj.Delete("templateitemname")
		}
	}
	return cur
}

// reconcilable reports whether items holds only objects (or nulls).
// Scalar lists such as colorways are replaced wholesale instead.
func reconcilable(items []any) bool {
	for _, item := range items {
		if item != nil && figure.KindOf(item) != figure.KindObject {
			return false
		}
	}
	return true
}
