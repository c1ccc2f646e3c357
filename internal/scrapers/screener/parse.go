package screener

import (
	"bytes"
	"slices"

	"screener-sync/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

const (
	DefaultMaxColumns = 18

	ColumnClassification = "Classification"
	ColumnHyperlink      = "Hyperlink"
	// ColumnDownPercent is spelled with two spaces on the site.
	ColumnDownPercent = "Down  %"

	classifyCellIndex  = 5
	hyperlinkCellIndex = 1
)

// Table is one page's table, every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) Width() int {
	return len(t.Header)
}

// Column returns the index of the column with the given name or -1.
func (t Table) Column(name string) int {
	return slices.Index(t.Header, name)
}

// ClosestColumn returns the header most similar to name (Jaro-Winkler) when
// its similarity reaches threshold. It is used to hint at renamed columns,
// lookups themselves stay exact.
func (t Table) ClosestColumn(name string, threshold float64) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, h := range t.Header {
		score := matchr.JaroWinkler(h, name, false)
		if score > bestScore {
			best = h
			bestScore = score
		}
	}
	return best, bestScore >= threshold
}

func (t *Table) truncate(width int) {
	if len(t.Header) <= width {
		return
	}
	t.Header = t.Header[:width]
	for i := range t.Rows {
		t.Rows[i] = t.Rows[i][:width]
	}
}

// ensureColumn returns the index of the named column, appending an empty
// column if it does not exist yet.
func (t *Table) ensureColumn(name string) int {
	idx := t.Column(name)
	if idx >= 0 {
		for _, row := range t.Rows {
			row[idx] = ""
		}
		return idx
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Header) - 1
}

// moveToEnd reorders the columns so the given names come last, in order.
func (t *Table) moveToEnd(names ...string) {
	var order []int
	for i, name := range t.Header {
		if !slices.Contains(names, name) {
			order = append(order, i)
		}
	}
	for _, name := range names {
		if idx := t.Column(name); idx >= 0 {
			order = append(order, idx)
		}
	}

	reorder := func(row []string) []string {
		out := make([]string, len(order))
		for i, idx := range order {
			out[i] = row[idx]
		}
		return out
	}
	t.Header = reorder(t.Header)
	for i, row := range t.Rows {
		t.Rows[i] = reorder(row)
	}
}

// PageParser turns a screen results page into a Table.
type PageParser struct {
	SiteBase   string
	MaxColumns int
}

// ownRows returns the rows of table in document order, skipping the rows of
// nested tables.
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

func extractTable(rows *goquery.Selection) (Table, error) {
	var grid [][]string
	width := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		row := make([]string, 0, cells.Length())
		for _, n := range cells.Nodes {
			row = append(row, htmlutil.CellText(n))
		}
		width = max(width, len(row))
		grid = append(grid, row)
	})
	if len(grid) == 0 || width == 0 {
		return Table{}, &TableParseError{Err: ErrEmptyTable}
	}
	for i, row := range grid {
		for len(row) < width {
			row = append(row, "")
		}
		grid[i] = row
	}
	return Table{
		Header: grid[0],
		Rows:   grid[1:],
	}, nil
}

// Parse extracts the first table of the page, the first row becomes the
// header. Without classify the table is cut down to MaxColumns columns. With
// classify it gains trailing Classification and Hyperlink columns and the
// "Down  %" column gets its sign back.
func (p PageParser) Parse(body []byte, classify bool) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Table{}, &TableParseError{Err: err}
	}
	tableSel := doc.Find("table").First()
	if tableSel.Length() == 0 {
		return Table{}, &TableParseError{Err: ErrNoTable}
	}
	rows := ownRows(tableSel)

	table, err := extractTable(rows)
	if err != nil {
		return Table{}, err
	}

	if !classify {
		table.truncate(p.MaxColumns)
		return table, nil
	}

	p.enrich(&table, rows)
	table.moveToEnd(ColumnClassification, ColumnHyperlink)

	if idx := table.Column(ColumnDownPercent); idx >= 0 {
		for _, row := range table.Rows {
			row[idx] = NegateDownPercent(row[idx])
		}
	}
	return table, nil
}

// enrich fills the Classification and Hyperlink columns from the raw <tr>
// elements. Row i of the raw rows (which still include the header row) is
// written to data row i-1.
func (p PageParser) enrich(table *Table, rows *goquery.Selection) {
	classIdx := table.ensureColumn(ColumnClassification)
	linkIdx := table.ensureColumn(ColumnHyperlink)

	rows.Each(func(i int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() <= 1 {
			return
		}
		if i == 0 || i-1 >= len(table.Rows) {
			return
		}
		target := table.Rows[i-1]

		if cells.Length() > classifyCellIndex {
			target[classIdx] = ClassifyValue(htmlutil.CellText(cells.Get(classifyCellIndex))).String()
		}

		nameCell := cells.Eq(hyperlinkCellIndex)
		href, _ := htmlutil.FirstHref(nameCell)
		target[linkIdx] = HyperlinkFormula(p.SiteBase, href, htmlutil.CellText(nameCell.Get(0)))
	})
}
