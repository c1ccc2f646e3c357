package screener

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Classification is the magnitude band of a row's value column.
type Classification int

const (
	ClassificationNone Classification = iota
	ClassificationSmall
	ClassificationMedium
	ClassificationLarge
	ClassificationHuge
)

// String renders the band as it is written to the sheet, an absent band is
// an empty cell.
func (c Classification) String() string {
	if c == ClassificationNone {
		return ""
	}
	return strconv.Itoa(int(c))
}

// ClassifyValue maps a numeric cell (thousands separators allowed) to its band:
//
//	[0.01, 100)      -> 1
//	[100, 1000)      -> 2
//	[1000, 100000)   -> 3
//	[100000, +inf)   -> 4
//
// anything else, including text that is not a number, has no band.
func ClassifyValue(text string) Classification {
	value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", ""), 64)
	if err != nil || math.IsNaN(value) {
		return ClassificationNone
	}
	switch {
	case value >= 100000:
		return ClassificationHuge
	case value >= 1000:
		return ClassificationLarge
	case value >= 100:
		return ClassificationMedium
	case value >= 0.01:
		return ClassificationSmall
	}
	return ClassificationNone
}

// HyperlinkFormula builds a sheet formula linking the visible text to the
// site page at path.
func HyperlinkFormula(siteBase, path, text string) string {
	return fmt.Sprintf(
		`=HYPERLINK("%s%s", "%s")`,
		escapeFormulaString(siteBase),
		escapeFormulaString(path),
		escapeFormulaString(text),
	)
}

func escapeFormulaString(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

func isUnsignedDecimal(value string) bool {
	if value == "" {
		return false
	}
	dots := 0
	digits := 0
	for _, c := range value {
		switch {
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		case c >= '0' && c <= '9':
			digits++
		default:
			return false
		}
	}
	return digits > 0
}

// NegateDownPercent prefixes a minus sign to values of the "Down  %" column
// that are plain non-negative numbers, the site leaves the sign out for
// declines. Anything else is returned untouched.
func NegateDownPercent(value string) string {
	if !isUnsignedDecimal(value) {
		return value
	}
	return "-" + value
}
