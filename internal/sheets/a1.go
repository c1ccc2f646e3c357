package sheets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Range is a parsed A1 notation rectangle, columns and rows are 1-based.
// A row of 0 means the range is unbounded in that direction.
type Range struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// columns stop at ZZZ
var cellRegex = regexp.MustCompile(`^([A-Za-z]{1,3})([0-9]*)$`)

func columnIndex(letters string) int {
	idx := 0
	for _, c := range strings.ToUpper(letters) {
		idx = idx*26 + int(c-'A'+1)
	}
	return idx
}

// ColumnName is the inverse of the column part of an A1 reference, 1 -> A, 27 -> AA.
func ColumnName(idx int) string {
	name := ""
	for idx > 0 {
		idx--
		name = string(rune('A'+idx%26)) + name
		idx /= 26
	}
	return name
}

func parseCell(ref string) (col, row int, err error) {
	groups := cellRegex.FindStringSubmatch(ref)
	if groups == nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	col = columnIndex(groups[1])
	if groups[2] != "" {
		row, err = strconv.Atoi(groups[2])
		if err != nil || row == 0 {
			return 0, 0, fmt.Errorf("invalid row in cell reference %q", ref)
		}
	}
	return col, row, nil
}

// ParseRange parses ranges like "A1:T6000", "Z1:AQ6000" or "A:C". A sheet
// prefix ("Sheet2!A1:B2") is ignored.
func ParseRange(a1 string) (Range, error) {
	if idx := strings.LastIndex(a1, "!"); idx >= 0 {
		a1 = a1[idx+1:]
	}
	start, end, found := strings.Cut(strings.TrimSpace(a1), ":")
	if !found {
		end = start
	}
	// a bare word like "range" would otherwise read as a whole column
	if !found && !strings.ContainsAny(start, "0123456789") {
		return Range{}, fmt.Errorf("cell reference %q has no row", a1)
	}

	startCol, startRow, err := parseCell(start)
	if err != nil {
		return Range{}, err
	}
	endCol, endRow, err := parseCell(end)
	if err != nil {
		return Range{}, err
	}
	if endCol < startCol || (endRow != 0 && endRow < startRow) {
		return Range{}, fmt.Errorf("range %q ends before it starts", a1)
	}
	return Range{
		StartCol: startCol,
		StartRow: startRow,
		EndCol:   endCol,
		EndRow:   endRow,
	}, nil
}

func (r Range) Columns() int {
	return r.EndCol - r.StartCol + 1
}

func rowsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	if aStart == 0 {
		aStart = 1
	}
	if bStart == 0 {
		bStart = 1
	}
	if aEnd != 0 && aEnd < bStart {
		return false
	}
	if bEnd != 0 && bEnd < aStart {
		return false
	}
	return true
}

// Overlaps returns true if the two ranges share at least one cell.
func (r Range) Overlaps(other Range) bool {
	if r.EndCol < other.StartCol || other.EndCol < r.StartCol {
		return false
	}
	return rowsOverlap(r.StartRow, r.EndRow, other.StartRow, other.EndRow)
}

func formatCell(col, row int) string {
	if row == 0 {
		return ColumnName(col)
	}
	return fmt.Sprintf("%s%d", ColumnName(col), row)
}

func (r Range) String() string {
	return formatCell(r.StartCol, r.StartRow) + ":" + formatCell(r.EndCol, r.EndRow)
}

// QualifyRange prefixes a bare A1 range with the quoted tab name, a range
// that already names a sheet is returned as is.
func QualifyRange(tab, a1 string) string {
	if strings.Contains(a1, "!") || tab == "" {
		return a1
	}
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(tab, "'", "''"), a1)
}
