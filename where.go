package clickhouse

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Cond maps column names to values. Each entry becomes one condition, the
// operator is chosen by the shape of the value:
//
//	Cond{"a": 1}                 a = 1
//	Cond{"a": Range(1, 2)}       a BETWEEN 1 AND 2
//	Cond{"a": []int{1, 2}}       a in (1, 2)
//	Cond{"a": subquery}          a in (SELECT ...)
//
// Entries are rendered in ascending column order.
type Cond map[string]any

// Between is an inclusive range, see Range.
type Between struct {
	Lo, Hi any
}

// Range returns the inclusive range lo..hi.
func Range(lo, hi any) Between {
	return Between{Lo: lo, Hi: hi}
}

// List groups values into a collection, for templates such as "a in ?".
func List(values ...any) []any {
	return values
}

// Value is a condition operand whose shape was resolved when the condition
// was built. It is one of scalar, range, list or subquery.
type Value interface {
	// condition renders "<col> <op> <operand>".
	condition(column string) string
	// operand renders the value alone, used for template placeholders.
	operand() string
}

type scalarValue struct{ literal string }

func (v scalarValue) condition(column string) string { return column + " = " + v.literal }
func (v scalarValue) operand() string                { return v.literal }

type rangeValue struct{ lo, hi string }

func (v rangeValue) condition(column string) string {
	return column + " BETWEEN " + v.operand()
}
func (v rangeValue) operand() string { return v.lo + " AND " + v.hi }

type listValue struct{ items []string }

func (v listValue) condition(column string) string { return column + " in " + v.operand() }
func (v listValue) operand() string                { return "(" + strings.Join(v.items, ", ") + ")" }

type subqueryValue struct{ sql string }

func (v subqueryValue) condition(column string) string { return column + " in " + v.operand() }
func (v subqueryValue) operand() string                { return "(" + v.sql + ")" }

// valueOf resolves the shape of v and quotes what needs quoting.
func valueOf(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		return t, nil
	case Between:
		lo, err := Quote(t.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := Quote(t.Hi)
		if err != nil {
			return nil, err
		}
		return rangeValue{lo: lo, hi: hi}, nil
	case Query:
		return subqueryOf(t)
	case *Query:
		if t == nil {
			return nil, unsupported(v)
		}
		return subqueryOf(*t)
	case PagedQuery:
		return subqueryOf(t.Query)
	case []byte:
		return nil, unsupported(v)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() == 0 {
			return nil, malformed("empty list")
		}
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s, err := Quote(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items = append(items, s)
		}
		return listValue{items: items}, nil
	}

	s, err := Quote(v)
	if err != nil {
		return nil, err
	}
	return scalarValue{literal: s}, nil
}

func subqueryOf(q Query) (Value, error) {
	s, err := q.SQL()
	if err != nil {
		return nil, err
	}
	return subqueryValue{sql: s}, nil
}

// conditions turns a Cond or a template with its values into fragments.
func conditions(cond any, args []any) ([]string, error) {
	switch c := cond.(type) {
	case Cond:
		return mappingConditions(c, args)
	case map[string]any:
		return mappingConditions(c, args)
	case string:
		s, err := substitute(c, args)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	return nil, malformed("condition must be Cond or string, got %T", cond)
}

func mappingConditions(c map[string]any, args []any) ([]string, error) {
	if len(args) > 0 {
		return nil, malformed("mapping conditions take no arguments")
	}
	columns := make([]string, 0, len(c))
	for col := range c {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	fragments := make([]string, 0, len(columns))
	for _, col := range columns {
		v, err := valueOf(c[col])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		fragments = append(fragments, v.condition(col))
	}
	return fragments, nil
}

// substitute replaces every ? in template by the operand form of the
// matching argument. A ? inside a quoted literal or identifier is text, not
// a placeholder. Placeholder and argument counts must agree.
func substitute(template string, args []any) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", malformed("empty condition")
	}
	at, err := placeholders(template)
	if err != nil {
		return "", err
	}
	if len(at) != len(args) {
		return "", malformed("%q has %d placeholders, got %d values", template, len(at), len(args))
	}
	if len(args) == 0 {
		return template, nil
	}

	var sb strings.Builder
	last := 0
	for i, arg := range args {
		v, err := valueOf(arg)
		if err != nil {
			return "", err
		}
		sb.WriteString(template[last:at[i]])
		sb.WriteString(v.operand())
		last = at[i] + 1
	}
	sb.WriteString(template[last:])
	return sb.String(), nil
}

// placeholders returns the offsets of the ? outside quotes. Quotes are ', "
// and `; a backslash escapes the next byte inside them.
func placeholders(template string) ([]int, error) {
	var at []int
	var quote byte
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			at = append(at, i)
		}
	}
	if quote != 0 {
		return nil, malformed("%q has an unterminated %c quote", template, quote)
	}
	return at, nil
}
