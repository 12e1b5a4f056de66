package query

import (
	"fmt"
	"strings"

	"replay_report/internal/models"
)

// Catalog names.
const (
	Classic  = "classic"
	Extended = "extended"
)

// Table names used by the two catalog variants.
var (
	ClassicTable  = models.Go4{}.TableName()
	ExtendedTable = models.ReplayInfo{}.TableName()
)

// RatioColumn is the column holding the relative latency change.
const RatioColumn = "reduce_pct"

// Template is one report bucket: a title and a statement with a single
// positional placeholder bound to the file_name prefix pattern.
type Template struct {
	Index int
	Title string
	SQL   string
}

// Catalog is an ordered, fixed list of bucket templates.
type Catalog struct {
	Name      string
	Table     string
	Templates []Template
}

// latencyBucket describes one AVG(query_time) range in microseconds.
type latencyBucket struct {
	title  string
	having string
}

var latencyBuckets = []latencyBucket{
	{"before: < 500us", "AVG(query_time) <= 500"},
	{"before: 500us ~ 1ms", "AVG(query_time) > 500 AND AVG(query_time) <= 1000"},
	{"before: 1ms ~ 10ms", "AVG(query_time) > 1000 AND AVG(query_time) <= 10000"},
	{"before: 10ms ~ 100ms", "AVG(query_time) > 10000 AND AVG(query_time) <= 100000"},
	{"before: 100ms ~ 1s", "AVG(query_time) > 100000 AND AVG(query_time) <= 1000000"},
	{"before: 1s ~ 10s", "AVG(query_time) > 1000000 AND AVG(query_time) <= 10000000"},
	{"before: >10s", "AVG(query_time) > 10000000"},
}

const latencySQL = `SELECT
    sql_digest,
    MIN(sql_type) AS sql_type,
    COUNT(*) AS exec_cnts,
    ROUND(AVG(execution_time / 1000.0), 2) AS current_ms,
    ROUND(AVG(query_time / 1000.0), 2) AS before_ms,
    ROUND((AVG(execution_time / 1000.0) - AVG(query_time / 1000.0)) / NULLIF(AVG(query_time / 1000.0), 0), 2) AS reduce_pct,
    MIN(sql_text) AS sample_sql_text
FROM
    %s
WHERE
    file_name LIKE ?%s
GROUP BY
    sql_digest
HAVING
    %s
ORDER BY
    AVG(execution_time) / NULLIF(AVG(query_time), 0) DESC, sql_digest`

const rowsMismatchSQL = `SELECT
    sql_digest,
    MIN(sql_type) AS sql_type,
    COUNT(*) AS exec_cnts,
    SUM(rows_sent) AS before_rows,
    SUM(rows_returned) AS current_rows,
    MIN(sql_text) AS sample_sql_text
FROM
    replay_info
WHERE
    file_name LIKE ? AND error_info = '' AND rows_sent <> rows_returned
GROUP BY
    sql_digest
ORDER BY
    COUNT(*) DESC, sql_digest`

const errorInfoSQL = `SELECT
    sql_digest,
    error_info,
    COUNT(*) AS exec_cnts,
    MIN(sql_text) AS sample_sql_text
FROM
    replay_info
WHERE
    error_info <> '' AND file_name LIKE ?
GROUP BY
    sql_digest, error_info
ORDER BY
    sql_digest, error_info, COUNT(*) DESC`

// NewClassic returns the seven latency buckets over the go4 table.
func NewClassic() Catalog {
	return Catalog{
		Name:      Classic,
		Table:     ClassicTable,
		Templates: latencyTemplates(ClassicTable, ""),
	}
}

// NewExtended returns the latency buckets over replay_info, limited to
// statements that replayed without error, followed by the row count
// mismatch and error summary buckets.
func NewExtended() Catalog {
	templates := latencyTemplates(ExtendedTable, " AND error_info = ''")
	templates = append(templates,
		Template{Title: "rows_sent mismatch", SQL: rowsMismatchSQL},
		Template{Title: "error info", SQL: errorInfoSQL},
	)
	for i := range templates {
		templates[i].Index = i + 1
	}
	return Catalog{
		Name:      Extended,
		Table:     ExtendedTable,
		Templates: templates,
	}
}

// ByName returns the catalog registered under name.
func ByName(name string) (Catalog, error) {
	switch name {
	case Classic:
		return NewClassic(), nil
	case Extended:
		return NewExtended(), nil
	default:
		return Catalog{}, fmt.Errorf("unknown query catalog: %s", name)
	}
}

// PrefixPattern turns a run parameter into the LIKE pattern bound to every
// template.
func PrefixPattern(param string) string {
	return param + "%"
}

func latencyTemplates(table, filter string) []Template {
	templates := make([]Template, len(latencyBuckets))
	for i, b := range latencyBuckets {
		templates[i] = Template{
			Index: i + 1,
			Title: b.title,
			SQL:   fmt.Sprintf(latencySQL, table, filter, b.having),
		}
	}
	return templates
}

// Placeholders counts positional placeholders outside of quoted literals.
func Placeholders(sql string) int {
	n := 0
	var quote rune
	for _, r := range sql {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
		}
	}
	return n
}

// Check validates that a template is read-only and binds exactly one parameter.
func (t Template) Check() error {
	if err := Validate(t.SQL); err != nil {
		return fmt.Errorf("template %q: %w", t.Title, err)
	}
	if n := Placeholders(t.SQL); n != 1 {
		return fmt.Errorf("template %q: expected 1 placeholder, got %d", t.Title, n)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("template %d: empty title", t.Index)
	}
	return nil
}
