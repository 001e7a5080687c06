package figure

import (
	"testing"
)

func TestKindOf(t *testing.T) {
	var nilObj *Object
	tests := []struct {
		name string
		v    any
		want Kind
	}{
		{"object", NewObject(), KindObject},
		{"nil object", nilObj, KindScalar},
		{"sequence", []any{1}, KindSequence},
		{"empty sequence", []any{}, KindSequence},
		{"string", "red", KindScalar},
		{"number", 1.5, KindScalar},
		{"nil", nil, KindScalar},
		{"native map", map[string]any{}, KindScalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.v); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("zeta", 1)
	o.Set("alpha", 2)
	o.Set("mid", 3)
	o.Set("zeta", 4) // existing key keeps its position

	want := []string{"zeta", "alpha", "mid"}
	got := o.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if v, _ := o.Get("zeta"); v != 4 {
		t.Errorf("Get(zeta) = %v, want 4", v)
	}

	sorted := o.SortedKeys()
	if sorted[0] != "alpha" || sorted[2] != "zeta" {
		t.Errorf("SortedKeys() = %v", sorted)
	}
}

func TestObjectDelete(t *testing.T) {
	o := ObjectOf("a", 1, "b", 2, "c", 3)
	o.Delete("b")
	o.Delete("missing")

	if o.Has("b") {
		t.Error("b should be deleted")
	}
	if keys := o.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("Keys() = %v, want [a c]", keys)
	}
}

func TestObjectNilReceiver(t *testing.T) {
	var o *Object
	if o.Len() != 0 {
		t.Error("nil object should have zero length")
	}
	if _, ok := o.Get("x"); ok {
		t.Error("nil object should not contain keys")
	}
	if o.Keys() != nil {
		t.Error("nil object should have no keys")
	}
	o.Range(func(string, any) bool {
		t.Error("Range should not call fn on nil object")
		return true
	})
}

func TestCloneIsDeep(t *testing.T) {
	inner := ObjectOf("color", "red")
	seq := []any{ObjectOf("name", "a")}
	orig := ObjectOf("marker", inner, "items", seq)

	cp := orig.Clone()
	if !cp.Equal(orig) {
		t.Fatal("clone should equal original")
	}

	cpMarker, _ := cp.Get("marker")
	if cpMarker.(*Object) == inner {
		t.Error("clone shares nested object with original")
	}
	cpMarker.(*Object).Set("color", "blue")
	if v, _ := inner.Get("color"); v != "red" {
		t.Errorf("mutating clone changed original: color = %v", v)
	}

	cpItems, _ := cp.Get("items")
	cpItems.([]any)[0].(*Object).Set("name", "b")
	if v, _ := seq[0].(*Object).Get("name"); v != "a" {
		t.Errorf("mutating cloned sequence changed original: name = %v", v)
	}
}

func TestEqualIgnoresKeyOrder(t *testing.T) {
	a := ObjectOf("x", int64(1), "y", []any{"a", ObjectOf("k", true)})
	b := ObjectOf("y", []any{"a", ObjectOf("k", true)}, "x", int64(1))
	if !a.Equal(b) {
		t.Error("objects with same content in different order should be equal")
	}

	c := ObjectOf("x", int64(2), "y", []any{"a", ObjectOf("k", true)})
	if a.Equal(c) {
		t.Error("objects with different values should not be equal")
	}
	if Equal([]any{1}, []any{1, 2}) {
		t.Error("sequences of different length should not be equal")
	}
}

func TestFromNative(t *testing.T) {
	v := FromNative(map[string]any{
		"b": 1,
		"a": []any{map[string]any{"c": float32(2)}},
	})
	o, ok := AsObject(v)
	if !ok {
		t.Fatalf("FromNative returned %T", v)
	}
	if keys := o.Keys(); keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys should be sorted, got %v", keys)
	}
	if b, _ := o.Get("b"); b != int64(1) {
		t.Errorf("int should become int64, got %T", b)
	}
	c, ok := GetPath(o, "a[0].c")
	if !ok || c != float64(2) {
		t.Errorf("a[0].c = %v (%T)", c, c)
	}
}
