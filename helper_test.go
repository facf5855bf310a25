package clickhouse

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu      sync.Mutex
	sqls    []string
	opts    []ExecOptions
	respond func(sql string) ([]byte, error)
}

func (f *fakeTransport) Exec(_ context.Context, sql string, opts ExecOptions) ([]byte, error) {
	f.mu.Lock()
	f.sqls = append(f.sqls, sql)
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	return f.respond(sql)
}

func (f *fakeTransport) lastSQL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sqls[len(f.sqls)-1]
}

func respondWith(body string) func(string) ([]byte, error) {
	return func(string) ([]byte, error) { return []byte(body), nil }
}

func newTestClient(t *testing.T, respond func(string) ([]byte, error)) (*Client, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{respond: respond}
	c, err := New(Config{Transport: ft})
	require.NoError(t, err)
	return c, ft
}
