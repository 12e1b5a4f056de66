package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(rows int) ResultTable {
	t := ResultTable{Columns: []string{"sql_digest", "reduce_pct"}, Rows: [][]any{}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []any{"d", 0.1})
	}
	return t
}

func TestDocumentSections(t *testing.T) {
	doc := NewDocument("run42")
	doc.AddSection("before: < 500us", table(2))
	doc.AddSection("before: 500us ~ 1ms", table(0))
	doc.AddSection("error info", table(1))

	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "table1", doc.Sections[0].Anchor)
	assert.Equal(t, "table2", doc.Sections[1].Anchor)
	assert.Equal(t, "table3", doc.Sections[2].Anchor)

	assert.Equal(t, "before: < 500us — 2 rows", doc.Sections[0].Label())
	assert.Equal(t, "before: 500us ~ 1ms — 0 rows", doc.Sections[1].Label())
	assert.Equal(t, 3, doc.TotalRows())
}

func TestDocumentNav(t *testing.T) {
	doc := NewDocument("run42")
	doc.AddSection("a", table(1))
	doc.AddSection("b", table(4))

	nav := doc.Nav()
	require.Len(t, nav, len(doc.Sections)+1)

	assert.Equal(t, NavLink{Href: "#outfile_prefix", Label: "run42: compare results"}, nav[0])
	for i, s := range doc.Sections {
		assert.Equal(t, "#"+s.Anchor, nav[i+1].Href)
		assert.Equal(t, s.Label(), nav[i+1].Label)
	}
}

func TestEmptyDocument(t *testing.T) {
	doc := NewDocument("empty")

	assert.Equal(t, "empty: compare results", doc.Title())
	assert.Len(t, doc.Nav(), 1)
	assert.Zero(t, doc.TotalRows())
}

func TestColumnIndex(t *testing.T) {
	tbl := table(0)

	assert.Equal(t, 1, tbl.ColumnIndex("reduce_pct"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
	assert.Zero(t, tbl.Len())
}
