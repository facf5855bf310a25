package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golobby/clickhouse"
	"github.com/spf13/cobra"
)

type selectOptions struct {
	columns []string
	from    string
	where   []string
	filters []string
	group   []string
	having  []string
	order   []string
	limit   int
	offset  int
	page    string
	perPage int
	print   bool
}

var selectOpts selectOptions

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Build a SELECT from flags and run it",
	Long: `Build a SELECT from flags and run it.

--where takes column=value pairs. A value is a number or a string,
lo..hi for a range and a,b,c for a list:

  chq select --from hits --where counter_id=34 --where day=2024-01-01..2024-01-31
  chq select -c 'count()' --from hits --filter "url LIKE '%shop%'"`,
	Args: cobra.NoArgs,
	RunE: runSelect,
}

func init() {
	f := selectCmd.Flags()
	f.StringArrayVarP(&selectOpts.columns, "column", "c", nil, "Column or expression to select, repeatable")
	f.StringVarP(&selectOpts.from, "from", "f", "", "Table to read from")
	f.StringArrayVarP(&selectOpts.where, "where", "w", nil, "column=value condition, repeatable")
	f.StringArrayVar(&selectOpts.filters, "filter", nil, "Raw WHERE fragment, repeatable")
	f.StringArrayVarP(&selectOpts.group, "group", "g", nil, "GROUP BY column, repeatable")
	f.StringArrayVar(&selectOpts.having, "having", nil, "Raw HAVING fragment, repeatable")
	f.StringArrayVarP(&selectOpts.order, "order", "o", nil, "ORDER BY column, repeatable")
	f.IntVarP(&selectOpts.limit, "limit", "l", 0, "Row limit")
	f.IntVar(&selectOpts.offset, "offset", 0, "Row offset, used with --limit")
	f.StringVarP(&selectOpts.page, "page", "p", "", "Page number, used with --per-page")
	f.IntVar(&selectOpts.perPage, "per-page", 0, "Rows per page")
	f.BoolVar(&selectOpts.print, "print", false, "Print the statement instead of running it")

	rootCmd.AddCommand(selectCmd)
}

// build applies the options to q. The second result is set when paging.
func (o selectOptions) build(q clickhouse.Query) (clickhouse.Query, *clickhouse.PagedQuery, error) {
	q = q.Select(o.columns...)
	if o.from != "" {
		q = q.From(o.from)
	}
	for _, w := range o.where {
		col, raw, ok := strings.Cut(w, "=")
		if !ok || col == "" {
			return q, nil, fmt.Errorf("where %q should be column=value", w)
		}
		q = q.Where(clickhouse.Cond{strings.TrimSpace(col): parseValue(raw)})
	}
	for _, f := range o.filters {
		q = q.Where(f)
	}
	q = q.Group(o.group...)
	for _, h := range o.having {
		q = q.Having(h)
	}
	q = q.Order(o.order...)

	if o.perPage > 0 {
		p, err := q.PageString(o.page, o.perPage)
		if err != nil {
			return q, nil, err
		}
		return p.Query, &p, p.Err()
	}
	if o.limit > 0 {
		q = q.Limit(o.limit).Offset(o.offset)
	}
	return q, nil, q.Err()
}

func parseValue(raw string) any {
	if lo, hi, ok := strings.Cut(raw, ".."); ok {
		return clickhouse.Range(parseScalar(lo), parseScalar(hi))
	}
	if strings.Contains(raw, ",") {
		var items []any
		for _, s := range strings.Split(raw, ",") {
			items = append(items, parseScalar(s))
		}
		return items
	}
	return parseScalar(raw)
}

func parseScalar(s string) any {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func runSelect(cmd *cobra.Command, args []string) error {
	client, err := conf.client()
	if err != nil {
		return err
	}
	q, paged, err := selectOpts.build(client.Build())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if selectOpts.print {
		fmt.Fprintln(out, q.String())
		return nil
	}

	if paged == nil {
		res, err := q.Result(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Render())
		return nil
	}

	p, err := paged.Counted(cmd.Context())
	if err != nil {
		return err
	}
	page, err := p.Fetch(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, page.Result.Render())
	fmt.Fprintf(out, "page %d of %d, %d rows\n", page.CurrentPage, page.TotalPages(), page.TotalEntries)
	return nil
}
