package clickhouse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type capturedRequest struct {
	method string
	query  url.Values
	body   string
	parts  map[string]string
}

func captureServer(t *testing.T, status int, respBody string) (*httptest.Server, *capturedRequest, *int32) {
	t.Helper()
	got := &capturedRequest{}
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		got.method = r.Method
		got.query = r.URL.Query()
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			got.parts = map[string]string{}
			for name, files := range r.MultipartForm.File {
				f, err := files[0].Open()
				if !assert.NoError(t, err) {
					continue
				}
				b, _ := io.ReadAll(f)
				f.Close()
				got.parts[name] = string(b)
			}
		} else {
			b, _ := io.ReadAll(r.Body)
			got.body = string(b)
		}
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, got, &calls
}

func TestHTTPTransport(t *testing.T) {
	ctx := context.Background()

	t.Run("200 returns the body unchanged", func(t *testing.T) {
		srv, got, _ := captureServer(t, http.StatusOK, "1\t2\n")
		tr, err := NewHTTPTransport(srv.URL+"/?database=test&user=default", nil, nil)
		require.NoError(t, err)

		body, err := tr.Exec(ctx, "SELECT 1, 2", ExecOptions{})
		require.NoError(t, err)
		assert.Equal(t, "1\t2\n", string(body))
		assert.Equal(t, http.MethodPost, got.method)
		assert.Equal(t, "SELECT 1, 2", got.query.Get("query"))
		assert.Equal(t, "test", got.query.Get("database"))
		assert.Equal(t, "default", got.query.Get("user"))
		assert.Empty(t, got.body)
	})

	t.Run("non 200 is a transport error carrying the body", func(t *testing.T) {
		srv, _, _ := captureServer(t, http.StatusInternalServerError, "Code: 62. Syntax error")
		tr, err := NewHTTPTransport(srv.URL, nil, nil)
		require.NoError(t, err)

		_, err = tr.Exec(ctx, "SELECT", ExecOptions{})
		var terr *TransportError
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
		assert.Equal(t, "Code: 62. Syntax error", string(terr.Body))
		assert.Equal(t, "Code: 62. Syntax error", err.Error())
	})

	t.Run("failures are logged with the query id when there is one", func(t *testing.T) {
		srv, _, _ := captureServer(t, http.StatusBadRequest, "bad")
		core, logs := observer.New(zap.ErrorLevel)
		tr, err := NewHTTPTransport(srv.URL, nil, NewLogger(zap.New(core)))
		require.NoError(t, err)

		_, err = tr.Exec(ctx, "SELECT", ExecOptions{})
		require.Error(t, err)
		_, err = tr.Exec(ctx, "SELECT", ExecOptions{QueryID: "q-1"})
		require.Error(t, err)

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, "query returned 400: bad", entries[0].Message)
		assert.Equal(t, "query q-1 returned 400: bad", entries[1].Message)
	})

	t.Run("raw body", func(t *testing.T) {
		srv, got, _ := captureServer(t, http.StatusOK, "")
		tr, err := NewHTTPTransport(srv.URL, nil, nil)
		require.NoError(t, err)

		_, err = tr.Exec(ctx, "INSERT INTO t FORMAT TabSeparated", ExecOptions{Body: strings.NewReader("1\ta\n")})
		require.NoError(t, err)
		assert.Equal(t, "1\ta\n", got.body)
		assert.Equal(t, "INSERT INTO t FORMAT TabSeparated", got.query.Get("query"))
	})

	t.Run("template data as multipart with metadata params", func(t *testing.T) {
		srv, got, _ := captureServer(t, http.StatusOK, "")
		tr, err := NewHTTPTransport(srv.URL, nil, nil)
		require.NoError(t, err)

		_, err = tr.Exec(ctx, "SELECT * FROM ids", ExecOptions{
			QueryID: "q-1",
			TemplateData: map[string]TemplateData{
				"ids": {
					IO:        strings.NewReader("1\n2\n"),
					Format:    "TabSeparated",
					Structure: "id UInt32",
				},
				"names": {
					IO:    strings.NewReader("a\n"),
					Types: "String",
				},
				"skipped": {Format: "CSV"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ids": "1\n2\n", "names": "a\n"}, got.parts)
		assert.Equal(t, "TabSeparated", got.query.Get("ids_format"))
		assert.Equal(t, "id UInt32", got.query.Get("ids_structure"))
		assert.Equal(t, "String", got.query.Get("names_types"))
		assert.Equal(t, "q-1", got.query.Get("query_id"))

		for _, absent := range []string{"ids_types", "names_format", "names_structure", "skipped_format"} {
			_, ok := got.query[absent]
			assert.False(t, ok, absent)
		}
	})

	t.Run("body and template data together fail before any request", func(t *testing.T) {
		srv, _, calls := captureServer(t, http.StatusOK, "")
		tr, err := NewHTTPTransport(srv.URL, nil, nil)
		require.NoError(t, err)

		_, err = tr.Exec(ctx, "SELECT 1", ExecOptions{
			Body:         strings.NewReader("x"),
			TemplateData: map[string]TemplateData{"t": {IO: strings.NewReader("y")}},
		})
		assert.ErrorIs(t, err, ErrMalformedCondition)
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("bad urls", func(t *testing.T) {
		for _, u := range []string{"", "localhost:8123", "ftp://host/", "http://"} {
			_, err := NewHTTPTransport(u, nil, nil)
			assert.Error(t, err, u)
		}
	})

	t.Run("concurrent calls share one transport", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			io.WriteString(w, "ok")
		}))
		defer srv.Close()
		tr, err := NewHTTPTransport(srv.URL, nil, nil)
		require.NoError(t, err)

		done := make(chan error)
		for i := 0; i < 8; i++ {
			go func() {
				_, err := tr.Exec(ctx, "SELECT 1", ExecOptions{})
				done <- err
			}()
		}
		for i := 0; i < 8; i++ {
			assert.NoError(t, <-done)
		}
		assert.Equal(t, int32(8), atomic.LoadInt32(&calls))
	})
}
