package executor

import (
	"strings"

	"github.com/mdql/mdql/parser"
	"github.com/mdql/mdql/value"
)

// Overrides carries the executor-level replacements applied before the
// rest of the pipeline runs. A nil field means "not provided".
type Overrides struct {
	Select        *string
	IncludeFields *string
	From          *string
}

// applyOverrides parses each provided override with the parser's exported
// sub-grammars and folds it into a copy of plan.
func applyOverrides(plan parser.Query, overrides Overrides) (parser.Query, error) {
	out := plan

	if overrides.Select != nil {
		fields, err := parser.ParseSelect(*overrides.Select)
		if err != nil {
			return out, err
		}
		out.Select = fields
	}

	if overrides.IncludeFields != nil {
		include, err := parser.ParseFieldList(*overrides.IncludeFields)
		if err != nil {
			return out, err
		}
		out.Select = prependDedup(include, out.Select)
	}

	if overrides.From != nil {
		call, err := parser.ParseFrom(*overrides.From)
		if err != nil {
			return out, err
		}
		out.From = call
	}

	return out, nil
}

// prependDedup puts include at the front of the field list, then appends
// tail fields that aren't already present by verbatim string match —
// dedup is exact-string, not canonicalized.
func prependDedup(include, tail []string) []string {
	seen := make(map[string]bool, len(include))
	out := make([]string, 0, len(include)+len(tail))
	for _, f := range include {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range tail {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// projectSelect keeps only the top-level keys of rec that are the head of
// some selected dotted path, so selecting "file.name" retains the whole
// "file" sub-hash. Unknown selected paths are silently absent from the
// result rather than failing.
func projectSelect(fields []string, rec value.Value) value.Value {
	heads := make(map[string]bool, len(fields))
	for _, f := range fields {
		head := f
		if i := strings.IndexByte(f, '.'); i >= 0 {
			head = f[:i]
		}
		heads[head] = true
	}

	out := value.NewHash()
	h, ok := rec.AsHash()
	if !ok {
		return out
	}
	for k, v := range h {
		if heads[k] {
			out.Insert(k, v)
		}
	}
	return out
}
