package template

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strconv"
	"time"

	"replay_report/internal/domain/query"
	"replay_report/internal/domain/report"
	"replay_report/internal/format"
)

//go:embed templates/report.html
var reportTemplate string

// HTMLRenderer renders a report document into a self-contained HTML page.
type HTMLRenderer struct {
	tmpl *htmltemplate.Template
}

// NewHTML parses the embedded page template.
func NewHTML() (*HTMLRenderer, error) {
	tmpl, err := htmltemplate.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type pageData struct {
	Title       string
	TitleAnchor string
	Nav         []report.NavLink
	Sections    []sectionData
}

type sectionData struct {
	Anchor  string
	Label   string
	Columns []string
	Rows    [][]cellData
}

type cellData struct {
	Column string
	Value  any
}

// Render writes the document as HTML to w.
func (r *HTMLRenderer) Render(w io.Writer, doc *report.Document) error {
	if err := r.tmpl.Execute(w, preparePage(doc)); err != nil {
		return fmt.Errorf("failed to execute report template: %w", err)
	}
	return nil
}

// Bytes renders the document into memory.
func (r *HTMLRenderer) Bytes(doc *report.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension is the file extension of the rendered artifact.
func (r *HTMLRenderer) Extension() string { return "html" }

// ContentType is the MIME type of the rendered artifact.
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func preparePage(doc *report.Document) pageData {
	page := pageData{
		Title:       doc.Title(),
		TitleAnchor: report.TitleAnchor,
		Nav:         doc.Nav(),
		Sections:    make([]sectionData, 0, len(doc.Sections)),
	}

	for _, s := range doc.Sections {
		sd := sectionData{
			Anchor:  s.Anchor,
			Label:   s.Label(),
			Columns: s.Table.Columns,
			Rows:    make([][]cellData, 0, s.Rows()),
		}
		for _, row := range s.Table.Rows {
			cells := make([]cellData, len(row))
			for i, v := range row {
				col := ""
				if i < len(s.Table.Columns) {
					col = s.Table.Columns[i]
				}
				cells[i] = cellData{Column: col, Value: cellValue(col, v)}
			}
			sd.Rows = append(sd.Rows, cells)
		}
		page.Sections = append(page.Sections, sd)
	}
	return page
}

// cellValue styles the ratio column as raw HTML; everything else is text and
// gets escaped by the template.
func cellValue(column string, v any) any {
	if column == query.RatioColumn {
		if styled, ok := format.Style(v).(htmltemplate.HTML); ok {
			return styled
		}
	}
	return Text(v)
}

// Text is the plain representation of a cell value.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case format.Ratio:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
