package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PageView struct {
	URL       string
	UserAgent string
	hidden    int
}

func TestModel(t *testing.T) {
	t.Run("table and columns are inferred", func(t *testing.T) {
		m, err := modelOf(&Visit{})
		require.NoError(t, err)
		assert.Equal(t, "visits", m.table)
		assert.Equal(t, []string{"id", "path", "duration", "bounced", "day", "ref"}, m.columns())
	})

	t.Run("compound names", func(t *testing.T) {
		m, err := modelOf(&PageView{hidden: 1})
		require.NoError(t, err)
		assert.Equal(t, "page_views", m.table)
		assert.Equal(t, []string{"url", "user_agent"}, m.columns())
	})

	t.Run("tabler overrides the table", func(t *testing.T) {
		m, err := modelOf(Session{})
		require.NoError(t, err)
		assert.Equal(t, "user_sessions", m.table)
		assert.Equal(t, []string{"created_at", "user_id"}, m.columns())
	})

	t.Run("non structs are rejected", func(t *testing.T) {
		_, err := modelOf(42)
		assert.Error(t, err)
		_, err = NewQuery().Model(nil).SQL()
		assert.Error(t, err)
	})

	t.Run("query model", func(t *testing.T) {
		assert.Equal(t,
			"SELECT created_at, user_id FROM user_sessions ORDER BY created_at",
			mustSQL(t, NewQuery().Model(Session{}).Order("created_at")))
	})
}
