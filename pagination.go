package clickhouse

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Page is a 1-based page window. TotalEntries, when set, overrides the total
// reported with the page, zero included; nil means unknown.
type Page struct {
	Number       int
	PerPage      int
	TotalEntries *int
}

// WithTotal returns p with a known total.
func (p Page) WithTotal(n int) Page {
	p.TotalEntries = &n
	return p
}

// ParsePage reads a page number as it arrives from a request. A blank
// number is the first page.
func ParsePage(page string, perPage int) (Page, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return Page{Number: 1, PerPage: perPage}, nil
	}
	n, err := strconv.Atoi(page)
	if err != nil {
		return Page{}, malformed("page %q is not a number", page)
	}
	return Page{Number: n, PerPage: perPage}, nil
}

// Page limits q to one page window: LIMIT per page, OFFSET (number-1)*per page.
func (q Query) Page(p Page) PagedQuery {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		return PagedQuery{Query: q.fail(malformed("per page must be positive, got %d", p.PerPage)), page: p}
	}
	if p.Number-1 > math.MaxInt/p.PerPage {
		return PagedQuery{Query: q.fail(malformed("page %d of %d rows is out of range", p.Number, p.PerPage)), page: p}
	}
	return PagedQuery{
		Query: q.Limit(p.PerPage).Offset((p.Number - 1) * p.PerPage),
		page:  p,
		base:  q,
	}
}

// PageString is Page with the number parsed by ParsePage.
func (q Query) PageString(page string, perPage int) (PagedQuery, error) {
	p, err := ParsePage(page, perPage)
	if err != nil {
		return PagedQuery{}, err
	}
	return q.Page(p), nil
}

// PagedQuery is a Query limited to one page. It renders and executes like
// any Query; Fetch, Values and Maps also report page metadata.
//
// Clause methods such as Where come from the embedded Query and return a
// plain Query without the page. Refine the query first, then call Page.
type PagedQuery struct {
	Query
	page Page
	// base is the query before the window was applied
	base Query
}

func (p PagedQuery) CurrentPage() int {
	return p.page.Number
}

func (p PagedQuery) PerPage() int {
	return p.page.PerPage
}

// Counted runs a count over the unpaged query and keeps it as the total.
func (p PagedQuery) Counted(ctx context.Context) (PagedQuery, error) {
	if p.err != nil {
		return p, p.err
	}
	if p.client == nil {
		return p, ErrNoClient
	}
	values, err := p.client.Build().Select("count()").From(p.base).Values(ctx)
	if err != nil {
		return p, err
	}
	if len(values) != 1 {
		return p, fmt.Errorf("%w: count returned %d cells", ErrColumnMismatch, len(values))
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return p, fmt.Errorf("count: %w", err)
	}
	p.page = p.page.WithTotal(n)
	return p, nil
}

// PageInfo describes the page a result belongs to.
//
// Unless the page was built with TotalEntries or Counted, TotalEntries is the
// number of rows on this page, not in the whole result set.
type PageInfo struct {
	TotalEntries int
	CurrentPage  int
	PerPage      int
}

// TotalPages is ceil(TotalEntries / PerPage), at least 1.
func (i PageInfo) TotalPages() int {
	if i.PerPage < 1 {
		return 1
	}
	n := (i.TotalEntries + i.PerPage - 1) / i.PerPage
	if n < 1 {
		return 1
	}
	return n
}

// ResultPage is one executed page.
type ResultPage struct {
	PageInfo
	Result *Result
}

type ValuesPage struct {
	PageInfo
	Values []string
}

type MapsPage struct {
	PageInfo
	Rows []map[string]string
}

func (p PagedQuery) info(rows int) PageInfo {
	total := rows
	if p.page.TotalEntries != nil {
		total = *p.page.TotalEntries
	}
	return PageInfo{TotalEntries: total, CurrentPage: p.page.Number, PerPage: p.page.PerPage}
}

// Fetch executes the page and wraps the whole result.
func (p PagedQuery) Fetch(ctx context.Context) (*ResultPage, error) {
	res, err := p.Result(ctx)
	if err != nil {
		return nil, err
	}
	return &ResultPage{PageInfo: p.info(res.Len()), Result: res}, nil
}

// Values executes the page and returns its cells, row by row.
func (p PagedQuery) Values(ctx context.Context) (*ValuesPage, error) {
	page, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesPage{PageInfo: page.PageInfo, Values: page.Result.Flatten()}, nil
}

// Maps executes the page and keys its rows, see Query.Maps.
func (p PagedQuery) Maps(ctx context.Context, keys ...string) (*MapsPage, error) {
	rows, err := p.Query.Maps(ctx, keys...)
	if err != nil {
		return nil, err
	}
	return &MapsPage{PageInfo: p.info(len(rows)), Rows: rows}, nil
}
