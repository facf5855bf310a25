package clickhouse

import (
	"fmt"

	"github.com/jedib0t/go-pretty/table"
)

// Result holds one response as rows of raw strings. Columns and types are
// only known when the response format carries them.
type Result struct {
	rows    [][]string
	columns []string
	types   []string
}

// ParseResult reads a tab separated body written in format f.
func ParseResult(body []byte, f *Format) *Result {
	rows := splitTabSeparated(body)
	res := &Result{}
	if f != nil && f.WithNames && len(rows) > 0 {
		res.columns, rows = rows[0], rows[1:]
	}
	if f != nil && f.WithTypes && len(rows) > 0 {
		res.types, rows = rows[0], rows[1:]
	}
	res.rows = rows
	return res
}

// NewResult wraps rows that were read elsewhere.
func NewResult(rows [][]string, columns ...string) *Result {
	return &Result{rows: rows, columns: columns}
}

func (r *Result) withColumns(columns []string) *Result {
	return &Result{rows: r.rows, columns: columns, types: r.types}
}

func (r *Result) Rows() [][]string {
	return r.rows
}

func (r *Result) Columns() []string {
	return r.columns
}

func (r *Result) Types() []string {
	return r.types
}

func (r *Result) Len() int {
	return len(r.rows)
}

// Flatten returns every cell, row by row.
func (r *Result) Flatten() []string {
	var out []string
	for _, row := range r.rows {
		out = append(out, row...)
	}
	return out
}

// Maps keys each row by position. Without keys the response column names
// are used. Every row must have exactly len(keys) cells.
func (r *Result) Maps(keys ...string) ([]map[string]string, error) {
	if len(keys) == 0 {
		keys = r.columns
	}
	out := make([]map[string]string, 0, len(r.rows))
	for i, row := range r.rows {
		if len(row) != len(keys) {
			return nil, fmt.Errorf("%w: row %d has %d columns, %d keys", ErrColumnMismatch, i, len(row), len(keys))
		}
		m := make(map[string]string, len(keys))
		for j, k := range keys {
			m[k] = row[j]
		}
		out = append(out, m)
	}
	return out, nil
}

// Render draws the result as a text table.
func (r *Result) Render() string {
	w := table.NewWriter()
	if len(r.columns) > 0 {
		header := table.Row{}
		for _, c := range r.columns {
			header = append(header, c)
		}
		w.AppendHeader(header)
	}
	for _, row := range r.rows {
		tr := table.Row{}
		for _, cell := range row {
			tr = append(tr, cell)
		}
		w.AppendRow(tr)
	}
	return w.Render()
}
