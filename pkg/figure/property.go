package figure

import (
	"strconv"
	"strings"
)

// segment is one step of a property path: an object key or a sequence index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// parsePath splits "a.b[0].c" into key, key, index, key segments.
// Bracketed text that is not a non-negative integer is treated as a key.
func parsePath(path string) []segment {
	var segs []segment
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, segment{key: cur.String()})
			cur.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			flush()
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				cur.WriteString(path[i:])
				i = len(path)
				continue
			}
			flush()
			inner := path[i+1 : i+end]
			if n, err := strconv.Atoi(inner); err == nil && n >= 0 {
				segs = append(segs, segment{index: n, isIndex: true})
			} else {
				segs = append(segs, segment{key: inner})
			}
			i += end
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return segs
}

// GetPath returns the value at path inside root.
func GetPath(root any, path string) (any, bool) {
	cur := root
	for _, seg := range parsePath(path) {
		if seg.isIndex {
			seq, ok := AsSequence(cur)
			if !ok || seg.index >= len(seq) {
				return nil, false
			}
			cur = seq[seg.index]
			continue
		}
		obj, ok := AsObject(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = obj.Get(seg.key); !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath stores v at path inside root, creating intermediate objects and
// sequences as needed and replacing scalars that stand in the way.
// Sequences are padded with nil up to the addressed index. Paths that are
// empty or start with an index are ignored.
func SetPath(root *Object, path string, v any) {
	segs := parsePath(path)
	if root == nil || len(segs) == 0 || segs[0].isIndex {
		return
	}
	child, _ := root.Get(segs[0].key)
	root.Set(segs[0].key, setIn(child, segs[1:], v))
}

func setIn(cur any, segs []segment, v any) any {
	if len(segs) == 0 {
		return v
	}
	seg := segs[0]
	if seg.isIndex {
		seq, _ := AsSequence(cur)
		for len(seq) <= seg.index {
			seq = append(seq, nil)
		}
		seq[seg.index] = setIn(seq[seg.index], segs[1:], v)
		return seq
	}
	obj, ok := AsObject(cur)
	if !ok {
		obj = NewObject()
	}
	child, _ := obj.Get(seg.key)
	obj.Set(seg.key, setIn(child, segs[1:], v))
	return obj
}
