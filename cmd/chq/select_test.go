package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golobby/clickhouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOptions(t *testing.T) {
	t.Run("all clauses", func(t *testing.T) {
		q, paged, err := selectOptions{
			columns: []string{"day", "count()"},
			from:    "hits",
			where:   []string{"counter_id=34", "day=2024-01-01..2024-01-31", "region=1,2"},
			filters: []string{"url LIKE '%shop%'"},
			group:   []string{"day"},
			having:  []string{"count() > 10"},
			order:   []string{"day"},
			limit:   5,
			offset:  10,
		}.build(clickhouse.NewQuery())
		require.NoError(t, err)
		assert.Nil(t, paged)
		assert.Equal(t,
			"SELECT day, count() FROM hits WHERE counter_id = 34 AND day BETWEEN '2024-01-01' AND '2024-01-31' AND region in (1, 2) AND url LIKE '%shop%' GROUP BY day HAVING count() > 10 ORDER BY day LIMIT 10, 5",
			q.String())
	})

	t.Run("paging", func(t *testing.T) {
		q, paged, err := selectOptions{from: "hits", page: "3", perPage: 20}.build(clickhouse.NewQuery())
		require.NoError(t, err)
		require.NotNil(t, paged)
		assert.Equal(t, 3, paged.CurrentPage())
		assert.Equal(t, "SELECT * FROM hits LIMIT 40, 20", q.String())
	})

	t.Run("bad input", func(t *testing.T) {
		_, _, err := selectOptions{where: []string{"nope"}}.build(clickhouse.NewQuery())
		assert.Error(t, err)
		_, _, err = selectOptions{page: "x", perPage: 2}.build(clickhouse.NewQuery())
		assert.ErrorIs(t, err, clickhouse.ErrMalformedCondition)
		_, _, err = selectOptions{filters: []string{"a = ?"}}.build(clickhouse.NewQuery())
		assert.ErrorIs(t, err, clickhouse.ErrMalformedCondition)
	})
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(3), parseValue("3"))
	assert.Equal(t, 1.5, parseValue("1.5"))
	assert.Equal(t, "abc", parseValue("abc"))
	assert.Equal(t, clickhouse.Range(int64(1), int64(9)), parseValue("1..9"))
	assert.Equal(t, []any{"a", int64(2)}, parseValue("a, 2"))
}

func TestQueryCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SELECT 1", r.URL.Query().Get("query"))
		io.WriteString(w, "1\n")
	}))
	defer srv.Close()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"query", "--url", srv.URL, "SELECT 1"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "1")
}
