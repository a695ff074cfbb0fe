package element_test

import (
	"testing"

	"github.com/biot2/ytoj/element"
)

func key(k, v string, indent int) *element.Element {
	return &element.Element{Key: k, Value: v, Indent: indent}
}

func TestResolveScalarAlias(t *testing.T) {
	l := element.List{
		{Key: "a", Value: "hi", Anchor: "x", Indent: 0},
		{Key: "b", Alias: "*x", Indent: 0},
	}
	out, err := element.Resolve(l)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[1].Value != "hi" || out[1].Alias != "" {
		t.Fatalf("alias element = %+v, want resolved to hi", out[1])
	}
}

func TestResolveSubtreeAlias(t *testing.T) {
	// a: &base { x: 1 }; b: *base — the key and its anchor ride directly
	// on the mapping's own open marker, matching what the builder emits.
	l := element.List{
		{Key: "a", Anchor: "base", Value: element.MapOpen, Indent: 0},
		key("x", "1", 1),
		{Value: element.MapClose, Indent: 0},
		{Key: "b", Alias: "*base", Indent: 0},
	}
	out, err := element.Resolve(l)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var foundOpen, foundChild bool
	for i, e := range out {
		if e.Key == "b" && e.Value == element.MapOpen {
			foundOpen = true
		}
		if e.Key == "x" && e.Value == "1" && i > 2 {
			foundChild = true
		}
	}
	if !foundOpen {
		t.Fatalf("expected alias %q to resolve onto its own MapOpen, got %+v", "b", out)
	}
	if !foundChild {
		t.Fatalf("expected copied child x:1 after the alias's open marker, got %+v", out)
	}
}

func TestResolveAnchorNotFound(t *testing.T) {
	l := element.List{
		{Key: "b", Alias: "*missing", Indent: 0},
	}
	if _, err := element.Resolve(l); err == nil {
		t.Fatal("expected AnchorNotFound error")
	}
}

func TestResolveMergeKeepsOverrideOrder(t *testing.T) {
	// base: {x: 1, y: 2}; child: {<<: *base, y: 99, z: 3} — the merged
	// child walks the anchor's keys in order and appends the unmatched
	// override (z) after them.
	l := element.List{
		{Key: "base", Anchor: "base", Value: element.MapOpen, Indent: 0},
		key("x", "1", 1),
		key("y", "2", 1),
		{Value: element.MapClose, Indent: 0},
		{Key: "child", Value: element.MapOpen, Indent: 0},
		{Key: "<<", Alias: "*base", Indent: 1},
		key("y", "99", 1),
		key("z", "3", 1),
		{Value: element.MapClose, Indent: 0},
	}
	out, err := element.Resolve(l)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var keys []string
	inChild := false
	for _, e := range out {
		if e.Key == "child" {
			inChild = true
			continue
		}
		if inChild && e.Key != "" {
			keys = append(keys, e.Key)
		}
	}
	want := []string{"x", "y", "z"}
	if len(keys) != 3 || keys[0] != want[0] || keys[1] != want[1] || keys[2] != want[2] {
		t.Fatalf("merged key order = %v, want %v", keys, want)
	}
}

func TestResolveMergeReplacesSequenceWholesale(t *testing.T) {
	// base: {tags: [a, b]}; child: {<<: *base, tags: [c]} — arrays never
	// merge: the override replaces the anchor's sequence entirely.
	l := element.List{
		{Key: "base", Anchor: "base", Value: element.MapOpen, Indent: 0},
		{Key: "tags", Value: element.SeqOpen, Indent: 1},
		{Value: "a", Indent: 2},
		{Value: "b", Indent: 2},
		{Value: element.SeqClose, Indent: 1},
		{Value: element.MapClose, Indent: 0},
		{Key: "child", Value: element.MapOpen, Indent: 0},
		{Key: "<<", Alias: "*base", Indent: 1},
		{Key: "tags", Value: element.SeqOpen, Indent: 1},
		{Value: "c", Indent: 2},
		{Value: element.SeqClose, Indent: 1},
		{Value: element.MapClose, Indent: 0},
	}
	out, err := element.Resolve(l)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var childItems []string
	inChild := false
	for _, e := range out {
		if e.Key == "child" {
			inChild = true
			continue
		}
		if inChild && !e.IsContainer() && e.Key == "" {
			childItems = append(childItems, e.Value)
		}
	}
	if len(childItems) != 1 || childItems[0] != "c" {
		t.Fatalf("child tags = %v, want [c]", childItems)
	}
}

func TestResolveMergeScalarAnchorRejected(t *testing.T) {
	l := element.List{
		{Key: "base", Value: "1", Anchor: "base", Indent: 0},
		{Key: "child", Value: element.MapOpen, Indent: 0},
		{Key: "<<", Alias: "*base", Indent: 1},
		{Value: element.MapClose, Indent: 0},
	}
	if _, err := element.Resolve(l); err == nil {
		t.Fatal("expected MergeSingleValue error")
	}
}

func TestResolveSelfMergeRejected(t *testing.T) {
	l := element.List{
		{Key: "a", Anchor: "x", Value: element.MapOpen, Indent: 0},
		{Key: "<<", Alias: "*x", Indent: 1},
		{Value: element.MapClose, Indent: 0},
	}
	if _, err := element.Resolve(l); err == nil {
		t.Fatal("expected a recursion error for a mapping merging itself")
	}
}

func TestResolveMergeOverride(t *testing.T) {
	// base: {x: 1, y: 2}; child: {<<: *base, y: 3}
	l := element.List{
		{Key: "base", Anchor: "base", Value: element.MapOpen, Indent: 0},
		key("x", "1", 1),
		key("y", "2", 1),
		{Value: element.MapClose, Indent: 0},
		{Key: "child", Value: element.MapOpen, Indent: 0},
		{Key: "<<", Alias: "*base", Indent: 1},
		key("y", "3", 1),
		{Value: element.MapClose, Indent: 0},
	}
	out, err := element.Resolve(l)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var gotY, gotX string
	for i, e := range out {
		if e.Key == "y" && i > 4 {
			gotY = e.Value
		}
		if e.Key == "x" && i > 4 {
			gotX = e.Value
		}
	}
	if gotY != "3" {
		t.Fatalf("merged y = %q, want override 3", gotY)
	}
	if gotX != "1" {
		t.Fatalf("merged x = %q, want inherited 1", gotX)
	}
}
