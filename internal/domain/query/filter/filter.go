// Package filter models caller-supplied filter documents as a closed tree
// of comparison and logical nodes. Parsing is the sanitization step: any
// operator outside the allowed set fails the parse, so an Expr in hand is
// always safe to pass to the store driver.
package filter

import (
	"strings"

	"github.com/pagegrid/storelens/internal/domain"
)

// Operator is a comparison applied to a single field.
type Operator string

// Comparison operator constants (store-native spellings).
const (
	Eq  Operator = "$eq"
	Ne  Operator = "$ne"
	Gt  Operator = "$gt"
	Gte Operator = "$gte"
	Lt  Operator = "$lt"
	Lte Operator = "$lte"
	// In matches any value in a set, Nin its negation.
	In  Operator = "$in"
	Nin Operator = "$nin"
	// Exists matches documents that do (or do not) carry the field.
	Exists Operator = "$exists"
	// Regex is a pattern match; regex flags ride on Compare.Options.
	Regex Operator = "$regex"
)

// IsValid checks if the operator is in the allowed comparison set.
func (o Operator) IsValid() bool {
	switch o {
	case Eq, Ne, Gt, Gte, Lt, Lte, In, Nin, Exists, Regex:
		return true
	}
	return false
}

// GroupOperator combines sub-expressions.
type GroupOperator string

// Logical group operator constants.
const (
	And GroupOperator = "$and"
	Or  GroupOperator = "$or"
)

// IsValid checks if the group operator is and or or.
func (o GroupOperator) IsValid() bool {
	return o == And || o == Or
}

// optionsKey carries regex flags and is only legal next to Regex.
const optionsKey = "$options"

// Expr is one node of a sanitized filter tree.
// The implementations are closed: Compare and Group only.
type Expr interface {
	isExpr()
}

// Compare matches one field against a value with a single operator.
type Compare struct {
	field   string
	op      Operator
	value   any
	options string
}

// NewCompare validates and creates a comparison node.
func NewCompare(field string, op Operator, value any) (Compare, error) {
	if field == "" {
		return Compare{}, domain.NewMalformedQuery("comparison field name is empty")
	}
	if !op.IsValid() {
		return Compare{}, domain.NewOperatorNotAllowed(string(op))
	}
	return Compare{field: field, op: op, value: value}, nil
}

// NewPattern creates a pattern-match node with optional regex flags.
func NewPattern(field, pattern, options string) (Compare, error) {
	if field == "" {
		return Compare{}, domain.NewMalformedQuery("comparison field name is empty")
	}
	return Compare{field: field, op: Regex, value: pattern, options: options}, nil
}

// Field returns the field name.
func (c Compare) Field() string { return c.field }

// Op returns the comparison operator.
func (c Compare) Op() Operator { return c.op }

// Value returns the comparison value.
func (c Compare) Value() any { return c.value }

// Options returns the regex flags (empty unless Op is Regex).
func (c Compare) Options() string { return c.options }

func (c Compare) isExpr() {}

// Group combines sub-expressions with a logical operator.
type Group struct {
	op    GroupOperator
	exprs []Expr
}

// NewGroup validates and creates a logical group node.
func NewGroup(op GroupOperator, exprs ...Expr) (Group, error) {
	if !op.IsValid() {
		return Group{}, domain.NewOperatorNotAllowed(string(op))
	}
	if len(exprs) == 0 {
		return Group{}, domain.NewMalformedQuery(string(op) + " expects at least one sub-filter")
	}
	for _, e := range exprs {
		if e == nil {
			return Group{}, domain.NewMalformedQuery(string(op) + " contains a nil sub-filter")
		}
	}
	return Group{op: op, exprs: exprs}, nil
}

// Op returns the logical operator.
func (g Group) Op() GroupOperator { return g.op }

// Exprs returns the sub-expressions.
func (g Group) Exprs() []Expr { return g.exprs }

func (g Group) isExpr() {}

// Encode renders the expression back into a plain document of the same
// shape Parse accepts. Encode(Parse(x)) is the normalized form of x; a nil
// expression encodes as the match-everything document.
func Encode(e Expr) map[string]any {
	switch n := e.(type) {
	case Compare:
		return n.encode()
	case Group:
		subs := make([]any, 0, len(n.exprs))
		for _, sub := range n.exprs {
			subs = append(subs, Encode(sub))
		}
		return map[string]any{string(n.op): subs}
	default:
		return map[string]any{}
	}
}

func (c Compare) encode() map[string]any {
	if c.op == Eq {
		// The short form {field: value} reparses as literal equality unless
		// the value itself looks like an operator document.
		if !hasOperatorKeys(c.value) {
			return map[string]any{c.field: c.value}
		}
		return map[string]any{c.field: map[string]any{string(Eq): c.value}}
	}
	if c.op == Regex && c.options != "" {
		return map[string]any{c.field: map[string]any{
			string(Regex): c.value,
			optionsKey:    c.options,
		}}
	}
	return map[string]any{c.field: map[string]any{string(c.op): c.value}}
}

func hasOperatorKeys(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}
