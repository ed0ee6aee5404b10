package scraper

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/logger"
)

// Section labels used by the federation's match reports
const (
	StartersLabel    = "Titulars"
	SubstitutesLabel = "Suplents"
)

const (
	teamHeaderSelector = ".acta-equip"
	teamLabelSelector  = "a span"
	headingSelector    = "h2, h3, h4, h5, h6"
)

type sectionKind int

const (
	sectionStarters sectionKind = iota
	sectionSubstitutes
)

// sectionLabel maps a trimmed header text to a section kind. Matching is exact
// and case-sensitive.
func sectionLabel(text string) (sectionKind, bool) {
	switch strings.TrimSpace(text) {
	case StartersLabel:
		return sectionStarters, true
	case SubstitutesLabel:
		return sectionSubstitutes, true
	}
	return 0, false
}

// section is one labelled block of rows, in document order
type section struct {
	kind    sectionKind
	entries []entry
	dropped int
}

func (s *section) add(e entry, ok bool) {
	if !ok {
		s.dropped++
		return
	}
	s.entries = append(s.entries, e)
}

// Strategy locates the labelled roster sections of a document
type Strategy struct {
	Name     string
	sections func(doc *goquery.Document) []section
}

// TableStrategy reads <table> elements whose thead (or caption) carries a section label
var TableStrategy = Strategy{Name: "tables", sections: tableSections}

// HeadingStrategy reads headings carrying a section label and the siblings that
// follow them up to the next heading
var HeadingStrategy = Strategy{Name: "headings", sections: headingSections}

// DefaultStrategies is the chain used when none is given, most specific first
var DefaultStrategies = []Strategy{TableStrategy, HeadingStrategy}

// Extractor builds rosters from parsed documents. It holds no per-call state and
// is safe for concurrent use.
type Extractor struct {
	strategies []Strategy
	log        *logger.Logger
}

// NewExtractor creates an extractor trying strategies in order. With no
// strategies, DefaultStrategies is used.
func NewExtractor(log *logger.Logger, strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	if log == nil {
		log = logger.Default()
	}
	return &Extractor{strategies: strategies, log: log}
}

// Extract parses a document with the default strategies
func Extract(doc *goquery.Document) (*lineup.Roster, error) {
	return NewExtractor(nil).Extract(doc)
}

// ExtractHTML parses raw markup and extracts its roster
func ExtractHTML(r io.Reader) (*lineup.Roster, error) {
	return NewExtractor(nil).ExtractHTML(r)
}

// ExtractHTML parses raw markup and extracts its roster
func (x *Extractor) ExtractHTML(r io.Reader) (*lineup.Roster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrUnrecognizedDocument, err)
	}
	return x.Extract(doc)
}

// ExtractBytes is ExtractHTML for an in-memory document
func (x *Extractor) ExtractBytes(body []byte) (*lineup.Roster, error) {
	return x.ExtractHTML(bytes.NewReader(body))
}

// Extract runs each strategy and returns the first roster that passes Validate.
// When none does, the error of the strategy that assembled the most team
// groupings is returned.
func (x *Extractor) Extract(doc *goquery.Document) (*lineup.Roster, error) {
	names := discoverTeamNames(doc)

	var bestErr error
	bestFound := -1

	for _, st := range x.strategies {
		sections := st.sections(doc)
		teams := assembleTeams(sections, names)

		err := Validate(teams)
		if err == nil {
			x.log.Debug("roster extracted", logger.Fields{
				"strategy":     st.Name,
				"home":         teams[0].Name,
				"away":         teams[1].Name,
				"dropped_rows": droppedRows(sections),
			})
			return &lineup.Roster{HomeTeam: teams[0], AwayTeam: teams[1]}, nil
		}

		x.log.Debug("strategy rejected", logger.Fields{
			"strategy":     st.Name,
			"sections":     len(sections),
			"teams":        len(teams),
			"dropped_rows": droppedRows(sections),
			"reason":       err.Error(),
		})
		if len(teams) > bestFound {
			bestFound = len(teams)
			bestErr = err
		}
	}

	return nil, bestErr
}

func droppedRows(sections []section) int {
	n := 0
	for _, s := range sections {
		n += s.dropped
	}
	return n
}

// discoverTeamNames tries structured team headers first, then level-2
// headings. The first non-empty list wins.
func discoverTeamNames(doc *goquery.Document) []string {
	for _, find := range []func(*goquery.Document) []string{structuredTeamNames, headingTeamNames} {
		if names := find(doc); len(names) > 0 {
			return names
		}
	}
	return nil
}

func structuredTeamNames(doc *goquery.Document) []string {
	var names []string
	doc.Find(teamHeaderSelector).Each(func(_ int, header *goquery.Selection) {
		text := header.Text()
		if label := header.Find(teamLabelSelector); label.Length() > 0 {
			text = label.First().Text()
		}
		if name := lineup.NormalizeName(text); name != "" {
			names = append(names, name)
		}
	})
	return names
}

func headingTeamNames(doc *goquery.Document) []string {
	var names []string
	doc.Find("h2").Each(func(_ int, h *goquery.Selection) {
		if h.Closest("caption").Length() > 0 {
			return
		}
		name := lineup.NormalizeName(h.Text())
		if name == "" {
			return
		}
		if _, isLabel := sectionLabel(name); isLabel {
			return
		}
		names = append(names, name)
	})
	return names
}

func teamName(names []string, index int) string {
	if index < len(names) {
		return names[index]
	}
	return lineup.PlaceholderName(index)
}

// assembleTeams groups sections into teams. The cursor starts at team 0 and
// moves to the next team when a starters section follows a substitutes section
// of the current team. Sections beyond the second team are ignored.
func assembleTeams(sections []section, names []string) []lineup.Team {
	type group struct {
		starters    []entry
		substitutes []entry
	}

	var groups []*group
	cursor := 0
	substitutesSeen := false

	for _, sec := range sections {
		if sec.kind == sectionStarters && substitutesSeen {
			cursor++
			substitutesSeen = false
		}
		if cursor > 1 {
			break
		}
		if sec.kind == sectionSubstitutes {
			substitutesSeen = true
		}

		for len(groups) <= cursor {
			groups = append(groups, &group{})
		}
		g := groups[cursor]
		if sec.kind == sectionStarters {
			g.starters = append(g.starters, sec.entries...)
		} else {
			g.substitutes = append(g.substitutes, sec.entries...)
		}
	}

	teams := make([]lineup.Team, 0, len(groups))
	for i, g := range groups {
		players := make([]lineup.Player, 0, len(g.starters)+len(g.substitutes))
		for _, e := range g.starters {
			players = append(players, lineup.NewPlayer(i, e.number, e.name, true))
		}
		for _, e := range g.substitutes {
			players = append(players, lineup.NewPlayer(i, e.number, e.name, false))
		}
		teams = append(teams, lineup.Team{Name: teamName(names, i), Players: players})
	}
	return teams
}

func tableSections(doc *goquery.Document) []section {
	var sections []section
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		kind, ok := sectionLabel(tableHeader(table))
		if !ok {
			return
		}

		sec := section{kind: kind}
		tableRows(table).Each(func(_ int, tr *goquery.Selection) {
			sec.add(parseRow(tr))
		})
		sections = append(sections, sec)
	})
	return sections
}

func tableHeader(table *goquery.Selection) string {
	if th := table.ChildrenFiltered("thead").Find("th"); th.Length() > 0 {
		return strings.TrimSpace(th.Text())
	}
	return strings.TrimSpace(table.ChildrenFiltered("caption").Text())
}

// tableRows returns the body rows of a table, excluding nested tables. Rows
// written without a tbody still match: the HTML parser wraps them in an
// implied tbody.
func tableRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
}

func headingSections(doc *goquery.Document) []section {
	var sections []section
	doc.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		kind, ok := sectionLabel(h.Text())
		if !ok {
			return
		}

		sec := section{kind: kind}
		for n := h.Get(0).NextSibling; n != nil; n = n.NextSibling {
			if isHeading(n) {
				break
			}
			collectNode(n, &sec)
		}
		sections = append(sections, sec)
	})
	return sections
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

// collectNode reads rows out of one sibling of a section heading
func collectNode(n *html.Node, sec *section) {
	switch n.Type {
	case html.TextNode:
		for _, line := range textLines(n) {
			sec.add(parseListItem(line))
		}
		return
	case html.ElementNode:
	default:
		return
	}

	sel := goquery.NewDocumentFromNode(n).Selection
	switch {
	case sel.Is("li"):
		sec.add(parseListItem(sel.Text()))
	case sel.Find("li").Length() > 0:
		sel.Find("li").Each(func(_ int, li *goquery.Selection) {
			sec.add(parseListItem(li.Text()))
		})
	case sel.Is("tr"):
		sec.add(parseRow(sel))
	case sel.Find("tr").Length() > 0:
		sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.ChildrenFiltered("th").Length() > 0 && tr.ChildrenFiltered("td").Length() == 0 {
				return
			}
			sec.add(parseRow(tr))
		})
	default:
		for _, line := range textLines(n) {
			sec.add(parseListItem(line))
		}
	}
}
