package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassicCatalog(t *testing.T) {
	c := NewClassic()

	assert.Equal(t, Classic, c.Name)
	assert.Equal(t, ClassicTable, c.Table)
	require.Len(t, c.Templates, 7)

	titles := make([]string, len(c.Templates))
	for i, tmpl := range c.Templates {
		titles[i] = tmpl.Title
		assert.Equal(t, i+1, tmpl.Index)
		assert.NoError(t, tmpl.Check())
		assert.Contains(t, tmpl.SQL, "FROM\n    go4")
		assert.NotContains(t, tmpl.SQL, "error_info")
		assert.Contains(t, tmpl.SQL, "AS "+RatioColumn)
	}

	assert.Equal(t, []string{
		"before: < 500us",
		"before: 500us ~ 1ms",
		"before: 1ms ~ 10ms",
		"before: 10ms ~ 100ms",
		"before: 100ms ~ 1s",
		"before: 1s ~ 10s",
		"before: >10s",
	}, titles)
}

func TestExtendedCatalog(t *testing.T) {
	c := NewExtended()

	assert.Equal(t, Extended, c.Name)
	require.Len(t, c.Templates, 9)

	for i, tmpl := range c.Templates {
		assert.Equal(t, i+1, tmpl.Index)
		assert.NoError(t, tmpl.Check())
		assert.Contains(t, tmpl.SQL, ExtendedTable)
	}

	for _, tmpl := range c.Templates[:7] {
		assert.Contains(t, tmpl.SQL, "error_info = ''", tmpl.Title)
	}
	assert.Equal(t, "rows_sent mismatch", c.Templates[7].Title)
	assert.Equal(t, "error info", c.Templates[8].Title)
	assert.NotContains(t, c.Templates[8].SQL, RatioColumn)
}

func TestCatalogsAreIndependentCopies(t *testing.T) {
	a := NewExtended()
	a.Templates[0].Title = "changed"

	b := NewExtended()
	assert.Equal(t, "before: < 500us", b.Templates[0].Title)
}

func TestByName(t *testing.T) {
	c, err := ByName(Classic)
	require.NoError(t, err)
	assert.Len(t, c.Templates, 7)

	c, err = ByName(Extended)
	require.NoError(t, err)
	assert.Len(t, c.Templates, 9)

	_, err = ByName("weekly")
	assert.Error(t, err)
}

func TestPrefixPattern(t *testing.T) {
	assert.Equal(t, "run42%", PrefixPattern("run42"))
	assert.Equal(t, "%", PrefixPattern(""))
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		sql  string
		want int
	}{
		{"SELECT 1", 0},
		{"SELECT * FROM t WHERE a LIKE ?", 1},
		{"SELECT * FROM t WHERE a = ? AND b = ?", 2},
		{"SELECT '?' FROM t WHERE a LIKE ?", 1},
		{`SELECT "what?" FROM t`, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Placeholders(tt.sql), tt.sql)
	}
}

func TestTemplateCheck(t *testing.T) {
	t.Run("rejects statements that modify data", func(t *testing.T) {
		tmpl := Template{Index: 1, Title: "bad", SQL: "DELETE FROM replay_info WHERE file_name LIKE ?"}
		err := tmpl.Check()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DELETE")
	})

	t.Run("requires exactly one placeholder", func(t *testing.T) {
		tmpl := Template{Index: 1, Title: "none", SQL: "SELECT 1"}
		assert.Error(t, tmpl.Check())

		tmpl.SQL = "SELECT 1 WHERE a = ? AND b = ?"
		assert.Error(t, tmpl.Check())
	})

	t.Run("requires a title", func(t *testing.T) {
		tmpl := Template{Index: 3, Title: "  ", SQL: "SELECT 1 WHERE a LIKE ?"}
		assert.Error(t, tmpl.Check())
	})
}

func TestValidate(t *testing.T) {
	allowed := []string{
		"SELECT updated_at, created_by FROM reports",
		"SELECT sql_digest FROM replay_info WHERE sql_type = 'select'",
	}
	for _, sql := range allowed {
		assert.NoError(t, Validate(sql), sql)
	}

	rejected := []string{
		"DROP TABLE replay_info",
		"select 1; update replay_info set a = 1",
		"INSERT INTO go4 VALUES (1)",
		"truncate go4",
		"ALTER TABLE go4 ADD c int",
	}
	for _, sql := range rejected {
		err := Validate(sql)
		if assert.Error(t, err, sql) {
			assert.True(t, strings.HasPrefix(err.Error(), "forbidden operation"))
		}
	}
}
