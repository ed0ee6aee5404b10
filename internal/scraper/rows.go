package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
)

const numberSelector = ".num-samarreta-acta2"

// listItemPattern matches "<number>. <name>" lines such as "7. GARCIA, Pau"
var listItemPattern = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)

// entry is a row that passed number and name checks
type entry struct {
	number int
	name   string
}

// parseNumber accepts positive base-10 integers only
func parseNumber(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func newEntry(numberText, name string) (entry, bool) {
	n, ok := parseNumber(numberText)
	if !ok {
		return entry{}, false
	}
	name = lineup.NormalizeName(name)
	if name == "" {
		return entry{}, false
	}
	return entry{number: n, name: name}, true
}

// parseListItem parses a single "<number>. <name>" line
func parseListItem(line string) (entry, bool) {
	m := listItemPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return entry{}, false
	}
	return newEntry(m[1], m[2])
}

// parseRow parses a table row. Rows with two or more cells are read as
// number/name cells; anything else falls back to the list-item shape.
func parseRow(tr *goquery.Selection) (entry, bool) {
	cells := tr.ChildrenFiltered("td")
	if cells.Length() < 2 {
		return parseListItem(tr.Text())
	}

	numCell := cells.Eq(0)
	numText := numCell.Text()
	if styled := numCell.Find(numberSelector); styled.Length() > 0 {
		numText = styled.First().Text()
	}

	nameCell := cells.Eq(1)
	name := nameCell.Text()
	if link := nameCell.Find("a"); link.Length() > 0 {
		name = link.First().Text()
	}

	return newEntry(numText, name)
}

var lineBreakingElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.Ul: true, atom.Ol: true, atom.Dd: true, atom.Dt: true,
	atom.Table: true, atom.Section: true,
}

// textLines renders a node's text with line breaks at <br> and block elements,
// so "7. A<br>8. B" yields two lines. Empty lines are dropped.
func textLines(n *html.Node) []string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				b.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && lineBreakingElements[n.DataAtom] {
			b.WriteByte('\n')
		}
	}
	walk(n)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
