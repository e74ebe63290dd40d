package datasource

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlTable is the text content of one <table>. header holds the first
// row when it is a heading row (inside <thead> or made only of <th>).
type htmlTable struct {
	header []string
	rows   [][]string
}

// extractTables returns every table in document order. Rows of nested
// tables belong to the nested table only.
func extractTables(doc *goquery.Document) []htmlTable {
	var tables []htmlTable
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		var t htmlTable
		node := tbl.Get(0)
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.Closest("table").Get(0) != node {
				return
			}
			cells := rowCells(tr)
			if len(cells) == 0 {
				return
			}
			if t.header == nil && len(t.rows) == 0 && isHeadingRow(tr) {
				t.header = cells
				return
			}
			t.rows = append(t.rows, cells)
		})
		tables = append(tables, t)
	})
	return tables
}

func isHeadingRow(tr *goquery.Selection) bool {
	if tr.Parent().Is("thead") {
		return true
	}
	return tr.ChildrenFiltered("td").Length() == 0 && tr.ChildrenFiltered("th").Length() > 0
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, cleanText(c.Text()))
	})
	return cells
}

// cleanText trims and collapses internal whitespace runs to one space.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// allRows returns the heading row (if any) followed by the body rows.
func (t htmlTable) allRows() [][]string {
	if t.header == nil {
		return t.rows
	}
	return append([][]string{t.header}, t.rows...)
}

// column returns the index of the header cell equal to name, or -1.
func (t htmlTable) column(name string) int {
	for i, h := range t.header {
		if h == name {
			return i
		}
	}
	return -1
}

// columnMatching returns the first header cell containing any of subs, or -1.
func (t htmlTable) columnMatching(subs ...string) int {
	for i, h := range t.header {
		if containsAny(h, subs...) {
			return i
		}
	}
	return -1
}

// cell returns row[i], or "" when i is out of range.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
