package extract

import (
	"regexp"
	"strings"
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)\s+instructions|system\s*prompt|you\s+are\s+now|` +
		`forget\s+(everything|all)|new\s+instructions)`,
)

// Normalize cleans a model response in place: strings are trimmed, empty
// list entries are dropped, and so are entries that read like instructions
// to the model rather than content of the document.
func Normalize(a *Analysis) {
	if a == nil {
		return
	}
	for _, name := range a.order {
		v := a.values[name]
		switch v.Kind {
		case Narrative:
			v.Text = strings.TrimSpace(v.Text)
		case List:
			items := make([]any, 0, len(v.Items))
			for _, item := range v.Items {
				item = trimValue(item)
				if isEmptyScalar(item) || looksInjected(item) {
					continue
				}
				items = append(items, item)
			}
			v.Items = items
		default:
			v.Scalar = trimValue(v.Scalar)
		}
		a.values[name] = v
	}
}

func trimValue(v any) any {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			inner = trimValue(inner)
			if isEmptyScalar(inner) {
				continue
			}
			out[k] = inner
		}
		return out
	default:
		return v
	}
}

func looksInjected(v any) bool {
	switch t := v.(type) {
	case string:
		return injectionPattern.MatchString(t)
	case map[string]any:
		for _, inner := range t {
			if looksInjected(inner) {
				return true
			}
		}
	}
	return false
}
