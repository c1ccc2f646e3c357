package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var lineBreaks = regexp.MustCompile(`\s*[\r\n\t]\s*`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CellText returns the text of a node with surrounding whitespace trimmed,
// line breaks folded into a single space and non-printable runes dropped.
// Runs of plain spaces are kept as is.
func CellText(node *html.Node) string {
	text := GetText(node)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = lineBreaks.ReplaceAllString(text, " ")
	text = removeNonPrintable(text)
	return strings.TrimSpace(text)
}

// FirstHref returns the href of the first <a> under the selection, ok is
// false if there is none.
func FirstHref(sel *goquery.Selection) (href string, ok bool) {
	a := sel.Find("a").First()
	if len(a.Nodes) == 0 {
		return "", false
	}
	return a.AttrOr("href", ""), true
}
