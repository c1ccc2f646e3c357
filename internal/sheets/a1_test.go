package sheets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		input    string
		expected Range
	}{
		{input: "A1:T6000", expected: Range{StartCol: 1, StartRow: 1, EndCol: 20, EndRow: 6000}},
		{input: "Z1:AQ6000", expected: Range{StartCol: 26, StartRow: 1, EndCol: 43, EndRow: 6000}},
		{input: "CW1:DN6000", expected: Range{StartCol: 101, StartRow: 1, EndCol: 118, EndRow: 6000}},
		{input: "Sheet2!AY1:BP6000", expected: Range{StartCol: 51, StartRow: 1, EndCol: 68, EndRow: 6000}},
		{input: "a:c", expected: Range{StartCol: 1, EndCol: 3}},
		{input: "B2", expected: Range{StartCol: 2, StartRow: 2, EndCol: 2, EndRow: 2}},
		{input: "A1:ZZZ2", expected: Range{StartCol: 1, StartRow: 1, EndCol: 18278, EndRow: 2}},
	}

	for _, test := range cases {
		r, err := ParseRange(test.input)
		require.NoError(t, err, test.input)
		require.Equal(t, test.expected, r, test.input)
	}
}

func TestParseRangeErrors(t *testing.T) {
	for _, input := range []string{
		"", "1:2", "A0:B2", "C1:A5", "A5:B1", "A1:B2:C3",
		"nope", "range", "ABCDEFG1:ABCDEFH2", "ZZZ1:AAAA2",
	} {
		_, err := ParseRange(input)
		require.Error(t, err, input)
	}
}

func TestRangeColumns(t *testing.T) {
	// every destination range holds 18 plain or 20 classified columns
	for _, input := range []string{"Z1:AQ6000", "AY1:BP6000", "BX1:CO6000", "CW1:DN6000"} {
		r, err := ParseRange(input)
		require.NoError(t, err)
		require.Equal(t, 18, r.Columns(), input)
	}
	r, err := ParseRange("A1:T6000")
	require.NoError(t, err)
	require.Equal(t, 20, r.Columns())
}

func TestColumnName(t *testing.T) {
	require.Equal(t, "A", ColumnName(1))
	require.Equal(t, "Z", ColumnName(26))
	require.Equal(t, "AA", ColumnName(27))
	require.Equal(t, "DN", ColumnName(118))
	require.Equal(t, "", ColumnName(0))
	for i := 1; i < 1000; i++ {
		require.Equal(t, i, columnIndex(ColumnName(i)))
	}
}

func TestRangeString(t *testing.T) {
	for _, input := range []string{"A1:T6000", "Z1:AQ6000", "A:C"} {
		r, err := ParseRange(input)
		require.NoError(t, err)
		require.Equal(t, input, r.String())
	}
}

func TestRangeOverlaps(t *testing.T) {
	cases := []struct {
		a, b     string
		expected bool
	}{
		{a: "A1:T6000", b: "Z1:AQ6000", expected: false},
		{a: "A1:T6000", b: "T1:Z10", expected: true},
		{a: "A1:T10", b: "A11:T20", expected: false},
		{a: "A1:T10", b: "A10:T20", expected: true},
		{a: "A:C", b: "B500:B501", expected: true},
		{a: "A:C", b: "D1:D2", expected: false},
	}

	for _, test := range cases {
		a, err := ParseRange(test.a)
		require.NoError(t, err)
		b, err := ParseRange(test.b)
		require.NoError(t, err)
		require.Equal(t, test.expected, a.Overlaps(b), "%s / %s", test.a, test.b)
		require.Equal(t, test.expected, b.Overlaps(a), "%s / %s", test.b, test.a)
	}
}

func TestQualifyRange(t *testing.T) {
	require.Equal(t, "'Sheet2'!A1:T6000", QualifyRange("Sheet2", "A1:T6000"))
	require.Equal(t, "'Bob''s data'!A1:B2", QualifyRange("Bob's data", "A1:B2"))
	require.Equal(t, "Other!A1:B2", QualifyRange("Sheet2", "Other!A1:B2"))
	require.Equal(t, "A1:B2", QualifyRange("", "A1:B2"))
}
