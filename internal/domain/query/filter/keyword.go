package filter

import "regexp"

// Keyword compiles a free-text search term into a case-insensitive pattern
// match across the given fields, combined with OR. The term is escaped and
// matches literally. Returns nil when there is nothing to match.
func Keyword(term string, fields []string) Expr {
	if term == "" {
		return nil
	}
	pattern := regexp.QuoteMeta(term)
	exprs := make([]Expr, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		exprs = append(exprs, Compare{field: f, op: Regex, value: pattern, options: "i"})
	}
	if len(exprs) == 0 {
		return nil
	}
	return Group{op: Or, exprs: exprs}
}

// Merge joins two expressions with logical AND, keeping both sides intact.
// Either side may be nil, in which case the other is returned as-is.
func Merge(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return Group{op: And, exprs: []Expr{a, b}}
}
