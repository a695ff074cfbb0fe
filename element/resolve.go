package element

import (
	"strings"

	"github.com/biot2/ytoj/yerrors"
)

// Resolve runs both fixed-point resolution passes over l — alias
// expansion, then merge-key expansion — and returns the rewritten list.
// l is consumed; callers should not reuse it afterwards.
func Resolve(l List) (List, error) {
	l, err := resolveAliases(l)
	if err != nil {
		return nil, err
	}
	return resolveMerges(l)
}

func findAnchor(l List, name string) int {
	for i, e := range l {
		if e.Anchor == name {
			return i
		}
	}
	return -1
}

// maxExpansions bounds both fixed-point passes so that a circular alias
// graph (which the single-name recursion checks cannot always see)
// still terminates with an error instead of growing the list forever.
const maxExpansions = 10000

// resolveAliases is pass 1: expand every non-merge "*name" reference by
// in-place insertion of a copy of the anchor's subtree.
func resolveAliases(l List) (List, error) {
	for rounds := 0; ; rounds++ {
		if rounds > maxExpansions {
			return nil, yerrors.New(yerrors.AliasRecursive, 0, "alias expansion did not terminate")
		}
		idx := -1
		for i, e := range l {
			if strings.HasPrefix(e.Alias, "*") && e.Key != "<<" {
				idx = i
				break
			}
		}
		if idx == -1 {
			return l, nil
		}
		name := strings.TrimPrefix(l[idx].Alias, "*")
		anchorIdx := findAnchor(l, name)
		if anchorIdx == -1 {
			return nil, yerrors.New(yerrors.AnchorNotFound, l[idx].LineNumber, "anchor %q not found", name)
		}
		start, end := l.Subtree(anchorIdx)
		if end == start+1 && l[anchorIdx].Value != "" {
			// Scalar anchor: overwrite value/literal/tag in place.
			l[idx].Value = l[anchorIdx].Value
			l[idx].Literal = l[anchorIdx].Literal
			l[idx].Tag = l[anchorIdx].Tag
			l[idx].Alias = ""
			continue
		}
		// Subtree anchor: copy the whole container, open marker through
		// matching close, and splice it in over the alias reference.
		copied := make(List, 0, end-start)
		for i := start; i < end; i++ {
			src := l[i]
			if strings.TrimPrefix(src.Alias, "*") == name {
				return nil, yerrors.New(yerrors.AliasRecursive, src.LineNumber, "alias %q is recursive", name)
			}
			cp := *src
			cp.Indent = src.Indent - l[anchorIdx].Indent + l[idx].Indent
			copied = append(copied, &cp)
		}
		aliasElem := l[idx]
		aliasElem.Alias = ""
		if len(copied) > 0 {
			aliasElem.Value = copied[0].Value
		}
		rest := copied
		if len(rest) > 0 {
			rest = rest[1:]
		}
		out := make(List, 0, len(l)+len(rest))
		out = append(out, l[:idx+1]...)
		out = append(out, rest...)
		out = append(out, l[idx+1:]...)
		l = out
	}
}

// resolveMerges is pass 2: expand every "<<: *name" merge key by
// field-wise union with override semantics.
func resolveMerges(l List) (List, error) {
	for rounds := 0; ; rounds++ {
		if rounds > maxExpansions {
			return nil, yerrors.New(yerrors.MergeInvalid, 0, "merge expansion did not terminate")
		}
		idx := -1
		for i, e := range l {
			if e.Key == "<<" {
				idx = i
				break
			}
		}
		if idx == -1 {
			return l, nil
		}
		if l[idx].Alias == "" {
			return nil, yerrors.New(yerrors.MergeInvalid, l[idx].LineNumber, "merge key without alias")
		}
		name := strings.TrimPrefix(l[idx].Alias, "*")
		anchorIdx := findAnchor(l, name)
		if anchorIdx == -1 {
			return nil, yerrors.New(yerrors.AnchorNotFound, l[idx].LineNumber, "anchor %q not found", name)
		}
		start, end := l.Subtree(anchorIdx)
		if end == start+1 {
			return nil, yerrors.New(yerrors.MergeSingleValue, l[idx].LineNumber, "cannot merge a scalar anchor %q", name)
		}
		if start <= idx && idx < end {
			return nil, yerrors.New(yerrors.AliasRecursive, l[idx].LineNumber, "merge alias %q references its own mapping", name)
		}
		childStart := start + 1
		// Find the merge parent: nearest preceding element with strictly
		// smaller indent than the merge key.
		parentIdx := -1
		for i := idx - 1; i >= 0; i-- {
			if l[i].Indent < l[idx].Indent {
				parentIdx = i
				break
			}
		}
		if parentIdx == -1 {
			return nil, yerrors.New(yerrors.MergeInvalid, l[idx].LineNumber, "merge key has no enclosing mapping")
		}

		// Collect the anchor's direct children, rebased to the merge
		// key's indent.
		anchorChildren := directChildren(l, childStart, end, l[anchorIdx].Indent+1, l[idx].Indent)

		// Remove existing children of the merge parent at or below the
		// merge key's indent (the overrides), including the merge key
		// itself, and remember their original relative order.
		parentChildEnd := siblingEnd(l, idx, l[idx].Indent)
		var overrides List
		var rebuilt List
		rebuilt = append(rebuilt, l[:parentIdx+1]...)
		for i := parentIdx + 1; i < parentChildEnd; {
			e := l[i]
			if e.Indent == l[idx].Indent {
				span := elementSpan(l, i)
				if e.Key != "<<" {
					overrides = append(overrides, l[i:i+span]...)
				}
				i += span
				continue
			}
			rebuilt = append(rebuilt, e)
			i++
		}
		rebuilt = append(rebuilt, l[parentChildEnd:]...)
		l = rebuilt

		// Drop anchor-copy sequences whose key matches an override that
		// is itself a sequence: arrays replace wholesale, they do not
		// merge.
		anchorChildren = dropOverriddenSequences(anchorChildren, overrides)

		merged := mergeChildren(anchorChildren, overrides)

		out := make(List, 0, len(l)+len(merged))
		out = append(out, l[:parentIdx+1]...)
		out = append(out, merged...)
		out = append(out, l[parentIdx+1:]...)
		l = out
	}
}

// elementSpan returns how many list slots, starting at i, belong to the
// element at i: 1 for a scalar, or through the matching close marker
// when i is a container opener (a keyed container carries its key on
// the open marker itself).
func elementSpan(l List, i int) int {
	if l[i].IsOpen() {
		close := l.MatchingClose(i)
		if close >= 0 {
			return close + 1 - i
		}
	}
	return 1
}

// siblingEnd returns the index just past the last sibling (at indent)
// of the element at idx, scanning forward until indent drops below it.
func siblingEnd(l List, idx, indent int) int {
	i := idx + elementSpan(l, idx)
	for i < len(l) {
		if l[i].Indent < indent {
			break
		}
		if l[i].Indent == indent {
			i += elementSpan(l, i)
			continue
		}
		i++
	}
	return i
}

// directChildren extracts the top-level children in [start, end) whose
// Indent equals childIndent, rebasing each copied element's Indent to
// newBase (+ relative depth).
func directChildren(l List, start, end, childIndent, newBase int) List {
	var out List
	for i := start; i < end; {
		e := l[i]
		span := elementSpan(l, i)
		if e.Indent == childIndent {
			for j := i; j < i+span; j++ {
				cp := *l[j]
				cp.Indent = l[j].Indent - childIndent + newBase
				out = append(out, &cp)
			}
		}
		i += span
	}
	return out
}

// dropOverriddenSequences removes sequence-valued children from the
// anchor copy when an override carries the same key: arrays are replaced
// wholesale by the override, never merged.
func dropOverriddenSequences(children, overrides List) List {
	overrideKeys := map[string]bool{}
	for i := 0; i < len(overrides); {
		if overrides[i].Key != "" {
			overrideKeys[overrides[i].Key] = true
		}
		i += elementSpan(overrides, i)
	}
	if len(overrideKeys) == 0 {
		return children
	}
	var out List
	for i := 0; i < len(children); {
		e := children[i]
		span := elementSpan(children, i)
		if e.Key != "" && e.Value == SeqOpen && overrideKeys[e.Key] {
			i += span
			continue
		}
		out = append(out, children[i:i+span]...)
		i += span
	}
	return out
}

// mergeChildren walks anchorChildren in order, substituting any
// override with a matching key and indent. An override with no anchor
// counterpart (an orphan) keeps its original relative order: it is
// emitted just before the first substituted override that follows it,
// or at the end if none does.
func mergeChildren(anchorChildren, overrides List) List {
	type ospan struct {
		start, end int
		matched    bool
	}
	var spans []ospan
	for i := 0; i < len(overrides); {
		end := i + elementSpan(overrides, i)
		spans = append(spans, ospan{start: i, end: end})
		i = end
	}
	for i := 0; i < len(anchorChildren); {
		e := anchorChildren[i]
		for si := range spans {
			o := overrides[spans[si].start]
			if !spans[si].matched && o.Key == e.Key && o.Indent == e.Indent {
				spans[si].matched = true
				break
			}
		}
		i += elementSpan(anchorChildren, i)
	}

	var merged List
	emitted := make([]bool, len(spans))
	emitOrphansBefore := func(limit int) {
		for si := 0; si < limit; si++ {
			if !emitted[si] && !spans[si].matched {
				merged = append(merged, overrides[spans[si].start:spans[si].end]...)
				emitted[si] = true
			}
		}
	}
	for i := 0; i < len(anchorChildren); {
		e := anchorChildren[i]
		span := elementSpan(anchorChildren, i)
		replaced := false
		for si := range spans {
			o := overrides[spans[si].start]
			if spans[si].matched && !emitted[si] && o.Key == e.Key && o.Indent == e.Indent {
				emitOrphansBefore(si)
				merged = append(merged, overrides[spans[si].start:spans[si].end]...)
				emitted[si] = true
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, anchorChildren[i:i+span]...)
		}
		i += span
	}
	emitOrphansBefore(len(spans))
	return merged
}
