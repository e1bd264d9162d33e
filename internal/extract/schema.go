package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldKind says how a field behaves when partial analyses are merged.
type FieldKind int

const (
	// Narrative fields are free text concatenated across chunks.
	Narrative FieldKind = iota + 1
	// List fields are concatenated across chunks and deduplicated.
	List
	// Scalar fields keep the first non-empty value.
	Scalar
)

func (k FieldKind) String() string {
	switch k {
	case Narrative:
		return "narrative"
	case List:
		return "list"
	case Scalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Field declares one key of the analysis object.
type Field struct {
	Name    string
	Kind    FieldKind
	Example string // JSON fragment shown to the model
}

// Schema is the ordered set of declared fields.
type Schema struct {
	Fields []Field
}

// Lookup returns the declared field called name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Template renders the schema as the JSON object the model must return.
func (s Schema) Template() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, f := range s.Fields {
		fmt.Fprintf(&sb, "  %q: %s", f.Name, f.Example)
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ContractSchema is the analysis shape returned by /analyze.
var ContractSchema = Schema{Fields: []Field{
	{Name: "summary", Kind: Narrative, Example: `"clear summary of the contract's purpose and main points"`},
	{Name: "document_type", Kind: Scalar, Example: `"e.g. services agreement, NDA, lease"`},
	{Name: "parties", Kind: List, Example: `[{"name": "party name", "role": "e.g. client, vendor, landlord"}]`},
	{Name: "effective_date", Kind: Scalar, Example: `"YYYY-MM-DD or as written"`},
	{Name: "term", Kind: Scalar, Example: `"duration and renewal terms"`},
	{Name: "jurisdiction", Kind: Scalar, Example: `"jurisdiction if stated"`},
	{Name: "governing_law", Kind: Scalar, Example: `"governing law if stated"`},
	{Name: "key_terms", Kind: List, Example: `[{"term": "term name", "value": "specific value or description"}]`},
	{Name: "important_dates", Kind: List, Example: `[{"date": "date", "description": "what happens"}]`},
	{Name: "obligations", Kind: List, Example: `[{"party": "party name", "obligation": "what they must do"}]`},
	{Name: "clauses", Kind: List, Example: `[{"title": "clause title", "summary": "what it says"}]`},
	{Name: "risks", Kind: List, Example: `["risk 1", "risk 2"]`},
	{Name: "recommendations", Kind: List, Example: `["recommendation 1"]`},
}}

// Value is one field of an analysis. Exactly one of Text, Items or Scalar
// is meaningful, selected by Kind.
type Value struct {
	Kind   FieldKind
	Text   string
	Items  []any
	Scalar any
}

// IsEmpty reports whether v carries no information.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case Narrative:
		return strings.TrimSpace(v.Text) == ""
	case List:
		return len(v.Items) == 0
	default:
		return isEmptyScalar(v.Scalar)
	}
}

// JSON returns the value in its wire form. Empty lists encode as [] and
// empty scalars as "".
func (v Value) JSON() any {
	switch v.Kind {
	case Narrative:
		return v.Text
	case List:
		if v.Items == nil {
			return []any{}
		}
		return v.Items
	default:
		if v.Scalar == nil {
			return ""
		}
		return v.Scalar
	}
}

func emptyValue(kind FieldKind) Value {
	switch kind {
	case List:
		return Value{Kind: List, Items: []any{}}
	case Narrative:
		return Value{Kind: Narrative}
	default:
		return Value{Kind: Scalar, Scalar: ""}
	}
}

// Analysis is a typed view of one model response, or of several merged.
// Declared fields are always present; undeclared keys the model returned
// are kept after them in first-seen order.
type Analysis struct {
	values map[string]Value
	order  []string
}

// NewAnalysis returns an analysis with every declared field empty.
func NewAnalysis(schema Schema) *Analysis {
	a := &Analysis{values: make(map[string]Value, len(schema.Fields))}
	for _, f := range schema.Fields {
		a.Set(f.Name, emptyValue(f.Kind))
	}
	return a
}

// Get returns the value stored under name.
func (a *Analysis) Get(name string) (Value, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Set stores v under name, keeping the key's original position.
func (a *Analysis) Set(name string, v Value) {
	if _, ok := a.values[name]; !ok {
		a.order = append(a.order, name)
	}
	a.values[name] = v
}

// Keys returns field names in order.
func (a *Analysis) Keys() []string {
	return append([]string(nil), a.order...)
}

// Fields returns the analysis as a plain JSON-ready map.
func (a *Analysis) Fields() map[string]any {
	out := make(map[string]any, len(a.order))
	for _, k := range a.order {
		out[k] = a.values[k].JSON()
	}
	return out
}

func (a *Analysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Fields())
}

// coerce converts a decoded JSON value to the given kind.
func coerce(raw any, kind FieldKind) Value {
	switch kind {
	case Narrative:
		switch t := raw.(type) {
		case nil:
			return Value{Kind: Narrative}
		case []any:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				if s := strings.TrimSpace(stringify(item)); s != "" {
					parts = append(parts, s)
				}
			}
			return Value{Kind: Narrative, Text: strings.Join(parts, NarrativeSeparator)}
		default:
			return Value{Kind: Narrative, Text: strings.TrimSpace(stringify(t))}
		}
	case List:
		switch t := raw.(type) {
		case []any:
			return Value{Kind: List, Items: t}
		default:
			if isEmptyScalar(t) {
				return Value{Kind: List, Items: []any{}}
			}
			return Value{Kind: List, Items: []any{t}}
		}
	default:
		if s, ok := raw.(string); ok {
			return Value{Kind: Scalar, Scalar: strings.TrimSpace(s)}
		}
		return Value{Kind: Scalar, Scalar: raw}
	}
}

// inferKind picks a kind for an undeclared key.
func inferKind(raw any) FieldKind {
	if _, ok := raw.([]any); ok {
		return List
	}
	return Scalar
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func isEmptyScalar(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}
