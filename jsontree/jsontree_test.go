package jsontree_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/biot2/ytoj/jsontree"
)

// toGo converts a jsontree.Node into plain Go values (map[string]any,
// []any, float64, string, bool, nil) so that cmp.Diff can compare tree
// shape without reaching into jsontree's unexported fields.
func toGo(n *jsontree.Node) interface{} {
	switch n.Kind() {
	case jsontree.Null:
		return nil
	case jsontree.Bool:
		v, _ := n.Bool()
		return v
	case jsontree.Number:
		v, _ := n.Float64()
		return v
	case jsontree.String:
		v, _ := n.String()
		return v
	case jsontree.Array:
		out := make([]interface{}, n.Len())
		n.Each(func(i int, child *jsontree.Node) bool {
			out[i] = toGo(child)
			return true
		})
		return out
	case jsontree.Object:
		out := make(map[string]interface{}, n.Len())
		n.EachField(func(key string, child *jsontree.Node) bool {
			out[key] = toGo(child)
			return true
		})
		return out
	}
	return nil
}

func TestParseTreeShape(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want interface{}
	}{
		{
			name: "flat object",
			src:  `{"a": 1, "b": "hi", "c": true, "d": null}`,
			want: map[string]interface{}{"a": 1.0, "b": "hi", "c": true, "d": nil},
		},
		{
			name: "nested mixed",
			src:  `{"a": 1, "b": {"c": 2}}`,
			want: map[string]interface{}{
				"a": 1.0,
				"b": map[string]interface{}{"c": 2.0},
			},
		},
		{
			name: "array of objects",
			src:  `[1, {"k": 2}, [3, 4]]`,
			want: []interface{}{1.0, map[string]interface{}{"k": 2.0}, []interface{}{3.0, 4.0}},
		},
		{
			name: "empty containers",
			src:  `{"a": [], "b": {}}`,
			want: map[string]interface{}{"a": []interface{}{}, "b": map[string]interface{}{}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := jsontree.Parse(tc.src)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			got := toGo(n)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tree shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRejectsScalarRoot(t *testing.T) {
	if _, err := jsontree.Parse(`42`); err == nil {
		t.Fatal("expected error for scalar root")
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	if _, err := jsontree.Parse(`{"a": 1} garbage`); err == nil {
		t.Fatal("expected error for trailing garbage")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		`{`,
		`{"a": }`,
		`{"a" 1}`,
		`[1, 2`,
		`{"a": 1,}`,
	}
	for _, src := range cases {
		if _, err := jsontree.Parse(src); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

func TestTryParse(t *testing.T) {
	if _, ok := jsontree.TryParse(`{"a": 1}`); !ok {
		t.Fatal("expected ok for valid input")
	}
	if _, ok := jsontree.TryParse(`not json`); ok {
		t.Fatal("expected !ok for invalid input")
	}
}

func TestParseDepthGuard(t *testing.T) {
	src := ""
	for i := 0; i < 1100; i++ {
		src += `{"a":`
	}
	src += `1`
	for i := 0; i < 1100; i++ {
		src += `}`
	}
	if _, err := jsontree.Parse(src); err == nil {
		t.Fatal("expected depth-guard error for deeply nested input")
	}
}

func TestSerializeCompactAndPretty(t *testing.T) {
	n, err := jsontree.Parse(`{"a": 1, "b": {"c": 2}}`)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	compact := n.Compact()
	wantCompact := `{"a": 1,"b": {"c": 2}}`
	if compact != wantCompact {
		t.Fatalf("compact = %q, want %q", compact, wantCompact)
	}

	pretty := n.Serialize(2)
	wantPretty := "{\n  \"a\": 1,\n  \"b\": {\n    \"c\": 2\n  }\n}"
	if pretty != wantPretty {
		t.Fatalf("pretty = %q, want %q", pretty, wantPretty)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	src := `{"a": 1, "b": "two", "c": [1, 2, 3], "d": {"e": true}}`
	n, err := jsontree.Parse(src)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	out := n.Compact()
	n2, err := jsontree.Parse(out)
	if err != nil {
		t.Fatalf("reparse: %+v", err)
	}
	if diff := cmp.Diff(toGo(n), toGo(n2)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestChildLookup(t *testing.T) {
	n, err := jsontree.Parse(`{"a": 1, "b": [10, 20, 30]}`)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	a, ok := n.ChildByName("a")
	if !ok {
		t.Fatal("expected field a")
	}
	if v, _ := a.Float64(); v != 1 {
		t.Fatalf("a = %v, want 1", v)
	}
	if _, ok := n.ChildByName("missing"); ok {
		t.Fatal("expected !ok for missing field")
	}

	b, ok := n.ChildByName("b")
	if !ok {
		t.Fatal("expected field b")
	}
	second, ok := b.ChildAt(1)
	if !ok {
		t.Fatal("expected index 1")
	}
	if v, _ := second.Float64(); v != 20 {
		t.Fatalf("b[1] = %v, want 20", v)
	}
	if _, ok := b.ChildAt(99); ok {
		t.Fatal("expected !ok for out-of-range index")
	}
}

func TestPathLookup(t *testing.T) {
	n, err := jsontree.Parse(`{"a": {"b": [1, {"c": "deep"}]}}`)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	got, ok := n.Path("a/b/1/c")
	if !ok {
		t.Fatal("expected path to resolve")
	}
	s, _ := got.String()
	if s != "deep" {
		t.Fatalf("got %q, want deep", s)
	}
	if _, ok := n.Path("a/b/99/c"); ok {
		t.Fatal("expected !ok for out-of-range path segment")
	}
	if _, ok := n.Path("a/nope"); ok {
		t.Fatal("expected !ok for missing key")
	}
}

func TestAppendSetRemove(t *testing.T) {
	obj := jsontree.NewObject()
	if err := obj.Set("a", jsontree.NewNumber(1)); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := obj.Set("b", jsontree.NewString("x")); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := obj.Set("a", jsontree.NewNumber(2)); err != nil {
		t.Fatalf("%+v", err)
	}
	got := obj.Keys()
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("Set should preserve key position on update (-want +got):\n%s", diff)
	}
	a, _ := obj.ChildByName("a")
	if v, _ := a.Float64(); v != 2 {
		t.Fatalf("a = %v, want 2 after update", v)
	}

	if err := obj.Remove("a"); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, ok := obj.ChildByName("a"); ok {
		t.Fatal("expected a removed")
	}
	if err := obj.Remove("missing"); err == nil {
		t.Fatal("expected error removing a missing key")
	}

	arr := jsontree.NewArray()
	if err := arr.Append(jsontree.NewNumber(1)); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := arr.Append(jsontree.NewNumber(2)); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := arr.Remove(0); err != nil {
		t.Fatalf("%+v", err)
	}
	if v, _ := arr.ChildAt(0); v == nil {
		t.Fatal("expected remaining element at 0")
	} else if n, _ := v.Float64(); n != 2 {
		t.Fatalf("remaining element = %v, want 2", n)
	}
	if err := arr.Remove(99); err == nil {
		t.Fatal("expected error removing out-of-range index")
	}

	if err := obj.Append(jsontree.NewNumber(1)); err == nil {
		t.Fatal("expected error calling Append on an object")
	}
	if err := arr.Set("k", jsontree.NewNumber(1)); err == nil {
		t.Fatal("expected error calling Set on an array")
	}
}

func TestMinify(t *testing.T) {
	src := "{\n  \"a\": 1,\n  \"b\": 2\n}"
	got := jsontree.Minify(src)
	want := `{ "a": 1, "b": 2 }`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestQuoteUnquote(t *testing.T) {
	s := "line\nwith\ttabs and \"quotes\""
	q := jsontree.Quote(s)
	got, ok := jsontree.Unquote(q)
	if !ok {
		t.Fatal("expected Unquote to succeed")
	}
	if got != s {
		t.Fatalf("got %q, want %q", got, s)
	}
}
