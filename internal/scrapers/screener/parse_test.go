package screener

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed screen_page_test.html
var screenPageTest []byte

const testSiteBase = "https://www.screener.in"

func testParser() PageParser {
	return PageParser{SiteBase: testSiteBase, MaxColumns: DefaultMaxColumns}
}

func TestParseClassified(t *testing.T) {
	table, err := testParser().Parse(screenPageTest, true)
	require.NoError(t, err)

	expected := Table{
		Header: []string{
			"S.No.", "Name", "CMP Rs.", "P/E", "Mar Cap Rs.Cr.", "Profit Rs.Cr.", "Down  %",
			"Classification", "Hyperlink",
		},
		Rows: [][]string{
			{
				"1.", "Tata Consultancy Services", "3,500.10", "30.20", "1266000.50", "1500.50", "-12.5",
				"3", `=HYPERLINK("https://www.screener.in/company/TCS/consolidated/", "Tata Consultancy Services")`,
			},
			{
				"2.", "Infosys", "1,450.00", "25.10", "600000.00", "50,000", "N/A",
				"3", `=HYPERLINK("https://www.screener.in/company/INFY/", "Infosys")`,
			},
			{
				"3.", "Reliance", "2,900.00", "28.00", "1900000.00", "100000", "-3.2",
				"4", `=HYPERLINK("https://www.screener.in/company/RELIANCE/", "Reliance")`,
			},
			{
				"4.", "Unlisted Co", "10.00", "", "12.00", "abc", "-7",
				"", `=HYPERLINK("https://www.screener.in", "Unlisted Co")`,
			},
			{
				"5.", "Small & Co", "5.00", "8.00", "300.00", "250", "-0.4",
				"2", `=HYPERLINK("https://www.screener.in/company/SMALL/", "Small & Co")`,
			},
		},
	}
	if diff := cmp.Diff(expected, table); diff != "" {
		t.Fatalf("parsed table mismatch (-want +got):\n%s", diff)
	}
}

func TestParseClassifiedAddsTwoTrailingColumns(t *testing.T) {
	plain, err := PageParser{SiteBase: testSiteBase, MaxColumns: 100}.Parse(screenPageTest, false)
	require.NoError(t, err)
	classified, err := testParser().Parse(screenPageTest, true)
	require.NoError(t, err)

	require.Equal(t, plain.Width()+2, classified.Width())
	require.Equal(t, []string{ColumnClassification, ColumnHyperlink}, classified.Header[classified.Width()-2:])
	for _, row := range classified.Rows {
		require.Len(t, row, classified.Width())
	}
}

func TestParseMovesExistingEnrichmentColumnsToEnd(t *testing.T) {
	page := `<table>
<tr><th>No</th><th>Name</th><th>Hyperlink</th><th>A</th><th>B</th><th>Value</th><th>Classification</th></tr>
<tr><td>1</td><td><a href="/company/X/">X</a></td><td>old</td><td>a</td><td>b</td><td>150</td><td>old</td></tr>
</table>`

	table, err := testParser().Parse([]byte(page), true)
	require.NoError(t, err)
	require.Equal(t, []string{"No", "Name", "A", "B", "Value", "Classification", "Hyperlink"}, table.Header)
	require.Equal(t, []string{
		"1", "X", "a", "b", "150", "2",
		`=HYPERLINK("https://www.screener.in/company/X/", "X")`,
	}, table.Rows[0])
}

func TestParseHyperlinkKeepsInnerSpaces(t *testing.T) {
	page := `<table>
<tr><th>No</th><th>Name</th><th>A</th><th>B</th><th>Value</th></tr>
<tr><td>1</td><td> <a href="/company/BIG/">Big   Co</a> </td><td>a</td><td>b</td><td>150</td></tr>
</table>`

	table, err := testParser().Parse([]byte(page), true)
	require.NoError(t, err)
	link := table.Rows[0][table.Column(ColumnHyperlink)]
	require.Equal(t, `=HYPERLINK("https://www.screener.in/company/BIG/", "Big   Co")`, link)
}

func TestParsePlainTruncates(t *testing.T) {
	var page strings.Builder
	page.WriteString("<table><tr>")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&page, "<th>col %d</th>", i)
	}
	page.WriteString("</tr><tr>")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&page, "<td>%d</td>", i)
	}
	page.WriteString("</tr><tr><td>short</td></tr></table>")

	table, err := testParser().Parse([]byte(page.String()), false)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxColumns, table.Width())
	require.Equal(t, "col 17", table.Header[17])
	require.Len(t, table.Rows, 2)
	require.Equal(t, "17", table.Rows[0][17])
	require.Equal(t, "short", table.Rows[1][0])
	require.Equal(t, "", table.Rows[1][1])
}

func TestParsePlainKeepsDownPercentUntouched(t *testing.T) {
	table, err := testParser().Parse(screenPageTest, false)
	require.NoError(t, err)
	idx := table.Column(ColumnDownPercent)
	require.NotEqual(t, -1, idx)
	require.Equal(t, "12.5", table.Rows[0][idx])
}

func TestParseOnlyUsesFirstTable(t *testing.T) {
	page := `<table><tr><th>A</th></tr><tr><td><table><tr><td>nested</td></tr></table></td></tr></table>
<table><tr><th>B</th></tr></table>`
	table, err := testParser().Parse([]byte(page), false)
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, table.Header)
	require.Len(t, table.Rows, 1)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		page   string
		target error
	}{
		{name: "no table", page: "<html><body><p>Login</p></body></html>", target: ErrNoTable},
		{name: "empty table", page: "<table></table>", target: ErrEmptyTable},
		{name: "empty input", page: "", target: ErrNoTable},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := testParser().Parse([]byte(test.page), true)
			require.Error(t, err)
			var parseErr *TableParseError
			require.True(t, errors.As(err, &parseErr))
			require.ErrorIs(t, err, test.target)
		})
	}
}

func TestClosestColumn(t *testing.T) {
	renamed := Table{Header: []string{"S.No.", "Name", "Down %", "P/E"}}
	closest, ok := renamed.ClosestColumn(ColumnDownPercent, 0.85)
	require.True(t, ok)
	require.Equal(t, "Down %", closest)
	require.Equal(t, -1, renamed.Column(ColumnDownPercent))

	unrelated := Table{Header: []string{"S.No.", "Name", "P/E"}}
	_, ok = unrelated.ClosestColumn(ColumnDownPercent, 0.85)
	require.False(t, ok)

	_, ok = Table{}.ClosestColumn(ColumnDownPercent, 0.85)
	require.False(t, ok)
}
