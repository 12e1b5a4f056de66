package report

import "fmt"

// ResultTable is one materialised result set.
type ResultTable struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t ResultTable) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of name or -1.
func (t ResultTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Section is one bucket of the report.
type Section struct {
	Anchor string
	Title  string
	Table  ResultTable
}

// Rows returns the row count shown next to the section title.
func (s Section) Rows() int { return s.Table.Len() }

// Label is the text shared by the sidebar link and the section heading.
func (s Section) Label() string {
	return fmt.Sprintf("%s — %d rows", s.Title, s.Rows())
}

// NavLink is one sidebar entry.
type NavLink struct {
	Href  string
	Label string
}

// TitleAnchor is the id of the page heading.
const TitleAnchor = "outfile_prefix"

// Document collects sections in catalog order and is rendered once.
type Document struct {
	Name     string
	Sections []Section
}

// NewDocument starts an empty document for a run.
func NewDocument(name string) *Document {
	return &Document{Name: name}
}

// Title is the page title.
func (d *Document) Title() string {
	return d.Name + ": compare results"
}

// AddSection appends a bucket. Anchors are assigned by position.
func (d *Document) AddSection(title string, table ResultTable) {
	d.Sections = append(d.Sections, Section{
		Anchor: fmt.Sprintf("table%d", len(d.Sections)+1),
		Title:  title,
		Table:  table,
	})
}

// Nav returns the sidebar links: the page title followed by one link per
// section, in section order.
func (d *Document) Nav() []NavLink {
	links := make([]NavLink, 0, len(d.Sections)+1)
	links = append(links, NavLink{Href: "#" + TitleAnchor, Label: d.Title()})
	for _, s := range d.Sections {
		links = append(links, NavLink{Href: "#" + s.Anchor, Label: s.Label()})
	}
	return links
}

// TotalRows sums the row counts of all sections.
func (d *Document) TotalRows() int {
	n := 0
	for _, s := range d.Sections {
		n += s.Rows()
	}
	return n
}
