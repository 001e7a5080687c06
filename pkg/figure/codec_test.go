package figure

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestDecodeJSONPreservesOrder(t *testing.T) {
	src := `{"z": 1, "a": {"y": 2.5, "b": [1, "two", null, true]}, "m": -3}`
	v, err := DecodeJSON([]byte(src))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"z":1,"a":{"y":2.5,"b":[1,"two",null,true]},"m":-3}`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	o := v.(*Object)
	if z, _ := o.Get("z"); z != int64(1) {
		t.Errorf("integer should decode as int64, got %T", z)
	}
	if y, _ := GetPath(o, "a.y"); y != 2.5 {
		t.Errorf("float should decode as float64, got %v", y)
	}
}

func TestDecodeValueFormats(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "json",
			src:  `{"layout": {"font": {"size": 12}}}`,
			want: `{"layout":{"font":{"size":12}}}`,
		},
		{
			name: "json with comments and trailing comma",
			src: `{
				// base font
				"layout": {"font": {"size": 12,},},
			}`,
			want: `{"layout":{"font":{"size":12}}}`,
		},
		{
			name: "yaml",
			src:  "layout:\n  title:\n    text: Hi\n  font:\n    size: 12\n",
			want: `{"layout":{"title":{"text":"Hi"},"font":{"size":12}}}`,
		},
		{
			name: "yaml flow style",
			src:  "{layout: {font: {size: 12}}}",
			want: `{"layout":{"font":{"size":12}}}`,
		},
		{
			name: "empty document",
			src:  "  \n",
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeValue([]byte(tt.src))
			if err != nil {
				t.Fatalf("DecodeValue: %v", err)
			}
			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(out)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeObjectRejectsNonObject(t *testing.T) {
	if _, err := DecodeObject([]byte(`[1, 2]`)); !errors.Is(err, ErrNotObject) {
		t.Errorf("expected ErrNotObject, got %v", err)
	}
	if _, err := DecodeObject([]byte(`{"a": `)); err == nil {
		t.Error("expected error for truncated document")
	}
}

func TestDecodeYAMLAliases(t *testing.T) {
	src := "axis: &axis\n  gridcolor: \"#eee\"\n  showgrid: true\nlayout:\n  xaxis: *axis\n  yaxis: *axis\n"
	o, err := DecodeObject([]byte(src))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	for _, path := range []string{"layout.xaxis.gridcolor", "layout.yaxis.gridcolor"} {
		if v, _ := GetPath(o, path); v != "#eee" {
			t.Errorf("%s = %v, want #eee", path, v)
		}
	}

	x, _ := GetPath(o, "layout.xaxis")
	y, _ := GetPath(o, "layout.yaxis")
	if x.(*Object) == y.(*Object) {
		t.Error("each alias should expand to its own object")
	}
}

func TestDecodeYAMLAliasCycle(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"sequence", "a: &a\n  - *a\n"},
		{"mapping", "a: &a\n  b: *a\n"},
		{"nested", "a: &a\n  b:\n    - c: *a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeValue([]byte(tt.src))
			if !errors.Is(err, ErrAliasCycle) {
				t.Errorf("DecodeValue() error = %v, want ErrAliasCycle", err)
			}
		})
	}
}

func TestDecodeYAMLExcessiveAliasing(t *testing.T) {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [", i, i)
		for j := 0; j < 10; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", i-1)
		}
		b.WriteString("]\n")
	}

	_, err := DecodeValue([]byte(b.String()))
	if !errors.Is(err, ErrExcessiveAliasing) {
		t.Errorf("DecodeValue() error = %v, want ErrExcessiveAliasing", err)
	}
}

func TestYAMLRoundTripPreservesOrder(t *testing.T) {
	o := ObjectOf("zeta", "z", "alpha", ObjectOf("b", int64(1), "a", []any{1.5, true}))

	out, err := yaml.Marshal(o)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	if !strings.HasPrefix(string(out), "zeta: z\nalpha:\n") {
		t.Errorf("unexpected YAML order:\n%s", out)
	}

	var back Object
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if !back.Equal(o) {
		t.Errorf("round trip changed content: %s", out)
	}
	if keys := back.Keys(); keys[0] != "zeta" {
		t.Errorf("round trip changed order: %v", keys)
	}
}

func TestObjectJSONUnmarshal(t *testing.T) {
	var o Object
	if err := json.Unmarshal([]byte(`{"b": 1, "a": 2}`), &o); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if keys := o.Keys(); keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys() = %v, want [b a]", keys)
	}
}

func TestParseFigure(t *testing.T) {
	src := `{
		"data": [{"type": "scatter"}, 3, {"type": "bar"}],
		"layout": {"template": {"layout": {"font": {"size": 10}}}}
	}`
	fig, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fig.Data) != 2 {
		t.Errorf("non-object traces should be dropped, got %d traces", len(fig.Data))
	}
	tmpl, ok := fig.Template()
	if !ok {
		t.Fatal("expected prior template in layout")
	}
	if size, _ := GetPath(tmpl, "layout.font.size"); size != int64(10) {
		t.Errorf("template font size = %v", size)
	}
}

func TestParseFigureDefaults(t *testing.T) {
	fig, err := Parse([]byte(`{"data": "oops", "layout": 5}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fig.Data) != 0 {
		t.Errorf("malformed data should become empty, got %d", len(fig.Data))
	}
	if fig.Layout == nil || fig.Layout.Len() != 0 {
		t.Error("malformed layout should become an empty object")
	}
	if _, ok := fig.Template(); ok {
		t.Error("no template expected")
	}
}
