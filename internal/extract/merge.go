package extract

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dgallion1/contractlens/internal/llm"
)

// NarrativeSeparator joins narrative text from different chunks.
const NarrativeSeparator = "\n\n"

// ParseAnalysis decodes one model response into an Analysis. The response
// must be a JSON object, optionally wrapped in a Markdown code fence.
// Declared fields are coerced to their kind; undeclared arrays become lists
// and everything else a scalar. Decoding failures wrap llm.ErrUnparseable.
func ParseAnalysis(raw string, schema Schema) (*Analysis, error) {
	var obj map[string]any
	if err := llm.DecodeJSON(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", llm.ErrUnparseable)
	}

	a := NewAnalysis(schema)
	for _, f := range schema.Fields {
		if v, ok := obj[f.Name]; ok {
			a.Set(f.Name, coerce(v, f.Kind))
		}
	}

	var extra []string
	for k := range obj {
		if _, declared := schema.Lookup(k); !declared {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		a.Set(k, coerce(obj[k], inferKind(obj[k])))
	}
	return a, nil
}

// Merge combines partial analyses in order. Narrative fields are joined with
// NarrativeSeparator skipping blanks, lists are concatenated and
// deduplicated by canonical JSON keeping the first occurrence, and scalars
// keep the first non-empty value. Undeclared keys take the kind of their
// first non-empty value. Merging nothing yields every declared field empty.
func Merge(schema Schema, partials ...*Analysis) *Analysis {
	out := NewAnalysis(schema)
	seen := make(map[string]map[string]bool)

	for _, p := range partials {
		if p == nil {
			continue
		}
		for _, name := range p.order {
			in := p.values[name]
			cur, ok := out.values[name]
			_, declared := schema.Lookup(name)
			switch {
			case !ok:
				cur = emptyValue(in.Kind)
			case cur.Kind == in.Kind:
			case !declared && cur.IsEmpty():
				// An undeclared key takes its kind from the first non-empty value.
				cur = emptyValue(in.Kind)
			default:
				in = coerce(in.JSON(), cur.Kind)
			}
			out.Set(name, mergeValue(cur, in, seenFor(seen, name, cur)))
		}
	}
	return out
}

func mergeValue(cur, in Value, seen map[string]bool) Value {
	switch cur.Kind {
	case Narrative:
		if in.IsEmpty() {
			return cur
		}
		if cur.IsEmpty() {
			return Value{Kind: Narrative, Text: in.Text}
		}
		return Value{Kind: Narrative, Text: cur.Text + NarrativeSeparator + in.Text}
	case List:
		items := cur.Items
		for _, item := range in.Items {
			key := canonicalKey(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, item)
		}
		return Value{Kind: List, Items: items}
	default:
		if cur.IsEmpty() && !in.IsEmpty() {
			return in
		}
		return cur
	}
}

// seenFor returns the dedup set for a list field, seeded with the items
// already accumulated.
func seenFor(seen map[string]map[string]bool, name string, cur Value) map[string]bool {
	if cur.Kind != List {
		return nil
	}
	s, ok := seen[name]
	if !ok {
		s = make(map[string]bool, len(cur.Items))
		for _, item := range cur.Items {
			s[canonicalKey(item)] = true
		}
		seen[name] = s
	}
	return s
}

// canonicalKey serializes v with sorted object keys, so structurally equal
// entries produce the same key.
func canonicalKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}
