package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pagegrid/storelens/internal/domain"
)

// allowedAnywhere are the operator-shaped keys tolerated at any depth of a
// filter document, including inside literal value payloads.
var allowedAnywhere = map[string]bool{
	string(Eq): true, string(Ne): true,
	string(Gt): true, string(Gte): true,
	string(Lt): true, string(Lte): true,
	string(In): true, string(Nin): true,
	string(Exists): true, string(Regex): true,
	string(And): true, string(Or): true,
	optionsKey: true,
}

// Parse validates a raw filter document and builds the expression tree.
// An empty document parses to nil (match everything). Multiple top-level
// conditions combine with logical AND; keys are processed in lexicographic
// order so the result is deterministic.
func Parse(raw map[string]any) (Expr, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	exprs := make([]Expr, 0, len(raw))
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch {
		case key == string(And) || key == string(Or):
			sub, err := parseGroup(GroupOperator(key), value)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				exprs = append(exprs, sub)
			}
		case strings.HasPrefix(key, "$"):
			return nil, domain.NewOperatorNotAllowed(key)
		default:
			sub, err := parseCondition(key, value)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, sub)
		}
	}

	return combine(And, exprs)
}

func parseGroup(op GroupOperator, value any) (Expr, error) {
	items := toSlice(value)
	if len(items) == 0 {
		return nil, domain.NewMalformedQuery(
			fmt.Sprintf("%s expects a non-empty array of filters", op))
	}
	subs := make([]Expr, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, domain.NewMalformedQuery(
				fmt.Sprintf("%s contains a non-object sub-filter", op))
		}
		sub, err := Parse(m)
		if err != nil {
			return nil, err
		}
		// Empty sub-filters match everything and add nothing.
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		return nil, nil
	}
	// Groups keep their shape even with one member, so parsing an
	// already-sanitized document reproduces it exactly.
	return Group{op: op, exprs: subs}, nil
}

// parseCondition handles a single field condition: either an operator
// document ({age: {$gte: 1}}) or a literal equality match.
func parseCondition(field string, value any) (Expr, error) {
	if field == "" {
		return nil, domain.NewMalformedQuery("filter field name is empty")
	}
	if m, ok := value.(map[string]any); ok && len(m) > 0 && allOperatorShaped(m) {
		return parseOperators(field, m)
	}
	// Literal equality; the payload may still smuggle operator keys.
	if err := scanValue(value); err != nil {
		return nil, err
	}
	return Compare{field: field, op: Eq, value: value}, nil
}

func parseOperators(field string, conds map[string]any) (Expr, error) {
	var (
		exprs      []Expr
		regexValue any
		hasRegex   bool
		options    string
		hasOptions bool
	)
	for _, key := range sortedKeys(conds) {
		value := conds[key]
		switch {
		case key == optionsKey:
			s, ok := value.(string)
			if !ok {
				return nil, domain.NewMalformedQuery("$options must be a string")
			}
			options, hasOptions = s, true
		case key == string(Regex):
			if err := scanValue(value); err != nil {
				return nil, err
			}
			regexValue, hasRegex = value, true
		case Operator(key).IsValid():
			if err := scanValue(value); err != nil {
				return nil, err
			}
			exprs = append(exprs, Compare{field: field, op: Operator(key), value: value})
		default:
			return nil, domain.NewOperatorNotAllowed(key)
		}
	}
	if hasOptions && !hasRegex {
		return nil, domain.NewOperatorNotAllowed(optionsKey)
	}
	if hasRegex {
		pattern, ok := regexValue.(string)
		if !ok {
			return nil, domain.NewMalformedQuery("$regex must be a string pattern")
		}
		exprs = append(exprs, Compare{field: field, op: Regex, value: pattern, options: options})
	}
	return combine(And, exprs)
}

// scanValue walks an opaque value payload and rejects any operator-shaped
// key outside the allowed set, at any nesting depth.
func scanValue(value any) error {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			if strings.HasPrefix(key, "$") && !allowedAnywhere[key] {
				return domain.NewOperatorNotAllowed(key)
			}
			if err := scanValue(v[key]); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := scanValue(item); err != nil {
				return err
			}
		}
	case []map[string]any:
		for _, item := range v {
			if err := scanValue(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// combine reduces parsed sub-expressions: zero is nil, one stands alone,
// several join under the group operator.
func combine(op GroupOperator, exprs []Expr) (Expr, error) {
	switch len(exprs) {
	case 0:
		return nil, nil
	case 1:
		return exprs[0], nil
	default:
		return Group{op: op, exprs: exprs}, nil
	}
}

func allOperatorShaped(m map[string]any) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

// toSlice accepts both the JSON-decoded and the Go-constructed array shapes.
func toSlice(v any) []any {
	switch arr := v.(type) {
	case []any:
		return arr
	case []map[string]any:
		out := make([]any, len(arr))
		for i, m := range arr {
			out[i] = m
		}
		return out
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
