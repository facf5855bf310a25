package clickhouse

import (
	"context"
	"fmt"
	"strings"
)

type clauseType string

const (
	clauseSelect  clauseType = "SELECT"
	clauseFrom    clauseType = "FROM"
	clauseJoin    clauseType = ""
	clauseWhere   clauseType = "WHERE"
	clauseGroupBy clauseType = "GROUP BY"
	clauseHaving  clauseType = "HAVING"
	clauseOrderBy clauseType = "ORDER BY"
	clauseLimit   clauseType = "LIMIT"
)

type clause struct {
	typ       clauseType
	parts     []string
	delimiter string
}

func (c clause) String() string {
	body := strings.Join(c.parts, c.delimiter)
	if c.typ == "" {
		return body
	}
	return fmt.Sprintf("%s %s", c.typ, body)
}

// Query is an immutable SELECT statement. Every method returns a new Query
// and leaves the receiver untouched, so a Query can be shared and extended
// from several goroutines.
//
// Errors from building conditions are kept in the chain and reported by SQL
// and by the executing methods.
type Query struct {
	client   *Client
	distinct bool
	selected []string
	from     string
	joins    []string
	where    []string
	group    []string
	having   []string
	order    []string
	limit    int
	hasLimit bool
	offset   int
	err      error
}

// NewQuery returns an empty Query that is not bound to a client. It can be
// rendered and used as a subquery but not executed.
func NewQuery() Query {
	return Query{}
}

// extend appends to a private copy so sibling queries never share arrays.
func extend(base []string, more ...string) []string {
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}

func (q Query) fail(err error) Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

// Err returns the first error recorded while building q.
func (q Query) Err() error {
	return q.err
}

func (q Query) Select(columns ...string) Query {
	q.selected = extend(q.selected, columns...)
	return q
}

func (q Query) Distinct() Query {
	q.distinct = true
	return q
}

// From replaces the source of q. table is a table name or another query,
// which is rendered as a parenthesized subquery.
func (q Query) From(table any) Query {
	switch t := table.(type) {
	case string:
		q.from = t
		return q
	case Query, *Query, PagedQuery:
		v, err := valueOf(t)
		if err != nil {
			return q.fail(err)
		}
		q.from = v.operand()
		return q
	}
	return q.fail(malformed("from must be a table name or a query, got %T", table))
}

// Join appends a join fragment, spliced verbatim after FROM. Placeholders
// are substituted like in Where templates:
//
//	q.Join("ANY LEFT JOIN ? USING id", sub)
func (q Query) Join(fragment string, args ...any) Query {
	s, err := substitute(fragment, args)
	if err != nil {
		return q.fail(err)
	}
	q.joins = extend(q.joins, s)
	return q
}

// Where appends conditions, ANDed with the existing ones. cond is either a
// Cond or a template with one value per ? placeholder:
//
//	q.Where(Cond{"id": 1})
//	q.Where("ts >= ?", since)
func (q Query) Where(cond any, args ...any) Query {
	fragments, err := conditions(cond, args)
	if err != nil {
		return q.fail(err)
	}
	q.where = extend(q.where, fragments...)
	return q
}

// Having works like Where for the HAVING clause.
func (q Query) Having(cond any, args ...any) Query {
	fragments, err := conditions(cond, args)
	if err != nil {
		return q.fail(err)
	}
	q.having = extend(q.having, fragments...)
	return q
}

func (q Query) Group(columns ...string) Query {
	q.group = extend(q.group, columns...)
	return q
}

func (q Query) Order(columns ...string) Query {
	q.order = extend(q.order, columns...)
	return q
}

// Limit replaces the row limit.
func (q Query) Limit(n int) Query {
	q.limit = n
	q.hasLimit = true
	return q
}

// Offset replaces the row offset. It is only rendered together with a limit.
func (q Query) Offset(n int) Query {
	q.offset = n
	return q
}

func (q Query) clauses() []clause {
	selected := q.selected
	if len(selected) == 0 {
		selected = []string{"*"}
	}
	if q.distinct {
		selected = extend([]string{"DISTINCT " + selected[0]}, selected[1:]...)
	}

	cs := []clause{{typ: clauseSelect, parts: selected, delimiter: ", "}}
	if q.from != "" {
		cs = append(cs, clause{typ: clauseFrom, parts: []string{q.from}})
	}
	if len(q.joins) > 0 {
		cs = append(cs, clause{typ: clauseJoin, parts: q.joins, delimiter: " "})
	}
	if len(q.where) > 0 {
		cs = append(cs, clause{typ: clauseWhere, parts: q.where, delimiter: " AND "})
	}
	if len(q.group) > 0 {
		cs = append(cs, clause{typ: clauseGroupBy, parts: q.group, delimiter: ", "})
	}
	if len(q.having) > 0 {
		cs = append(cs, clause{typ: clauseHaving, parts: q.having, delimiter: " AND "})
	}
	if len(q.order) > 0 {
		cs = append(cs, clause{typ: clauseOrderBy, parts: q.order, delimiter: ", "})
	}
	if q.hasLimit {
		cs = append(cs, clause{
			typ:       clauseLimit,
			parts:     []string{fmt.Sprint(q.offset), fmt.Sprint(q.limit)},
			delimiter: ", ",
		})
	}
	return cs
}

// SQL renders q. Rendering is a pure function of q.
func (q Query) SQL() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	sections := []string{}
	for _, c := range q.clauses() {
		sections = append(sections, c.String())
	}
	return strings.Join(sections, " "), nil
}

func (q Query) String() string {
	s, _ := q.SQL()
	return s
}

// Result executes q and returns the wrapped response.
func (q Query) Result(ctx context.Context) (*Result, error) {
	if q.client == nil {
		return nil, ErrNoClient
	}
	s, err := q.SQL()
	if err != nil {
		return nil, err
	}
	return q.client.Query(ctx, s)
}

// Rows executes q and returns the raw rows.
func (q Query) Rows(ctx context.Context) ([][]string, error) {
	res, err := q.Result(ctx)
	if err != nil {
		return nil, err
	}
	return res.Rows(), nil
}

// Values executes q and returns every cell, row by row.
func (q Query) Values(ctx context.Context) ([]string, error) {
	res, err := q.Result(ctx)
	if err != nil {
		return nil, err
	}
	return res.Flatten(), nil
}

// Maps executes q and keys every row by position. keys default to the
// select list; the response must have exactly one column per key.
func (q Query) Maps(ctx context.Context, keys ...string) ([]map[string]string, error) {
	res, err := q.Result(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		keys = q.selected
	}
	return res.Maps(keys...)
}

// Bind executes q and binds the rows into dst, see Result.Bind.
func (q Query) Bind(ctx context.Context, dst any) error {
	res, err := q.Result(ctx)
	if err != nil {
		return err
	}
	if len(res.Columns()) == 0 {
		res = res.withColumns(q.selected)
	}
	return res.Bind(dst)
}
