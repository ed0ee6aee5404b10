// Package export renders a match as the JSON and CSV files handed to scorers.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/match"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// CSVHeader is the first line of every CSV export
const CSVHeader = "Minuto,Tipo,Jugador,Dorsal,Equipo,Jugador 2,Dorsal 2"

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'json' or 'csv')", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Document is the exported match
type Document struct {
	HomeTeam    *lineup.Team  `json:"homeTeam"`
	AwayTeam    *lineup.Team  `json:"awayTeam"`
	Events      []match.Event `json:"events"`
	CurrentHalf int           `json:"currentHalf"`
	ElapsedTime int64         `json:"elapsedTime"`
}

// FromSnapshot builds an export document from a match snapshot
func FromSnapshot(s match.Snapshot) Document {
	events := s.Events
	if events == nil {
		events = []match.Event{}
	}
	return Document{
		HomeTeam:    s.HomeTeam,
		AwayTeam:    s.AwayTeam,
		Events:      events,
		CurrentHalf: s.CurrentHalf,
		ElapsedTime: s.ElapsedTime,
	}
}

// Write renders doc in the given format
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatCSV:
		return WriteCSV(w, doc)
	}
	return fmt.Errorf("unknown format: %s", format)
}

// Render returns doc rendered in the given format
func Render(doc Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes doc as indented JSON
func WriteJSON(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// ReadJSON parses a JSON export
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parsing export: %w", err)
	}
	if doc.HomeTeam == nil || doc.AwayTeam == nil {
		return Document{}, fmt.Errorf("parsing export: both teams are required")
	}
	return doc, nil
}

// WriteCSV writes one quoted row per event after the header. Player and team
// names are resolved from the line-ups; unknown references become empty cells.
func WriteCSV(w io.Writer, doc Document) error {
	players := make(map[string]lineup.Player)
	teams := make(map[string]string)
	for _, t := range []*lineup.Team{doc.HomeTeam, doc.AwayTeam} {
		if t == nil {
			continue
		}
		teams[t.ID] = t.Name
		for _, p := range t.Players {
			players[p.ID] = p
		}
	}

	lines := make([]string, 0, len(doc.Events)+1)
	lines = append(lines, CSVHeader)

	for _, e := range doc.Events {
		name, number := playerCells(players, e.PlayerID)
		name2, number2 := playerCells(players, e.SecondPlayerID)
		lines = append(lines, csvRow(
			FormatMinute(e.Timestamp),
			e.Type.Label(),
			name,
			number,
			teams[e.TeamID],
			name2,
			number2,
		))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func playerCells(players map[string]lineup.Player, id string) (name, number string) {
	if id == "" {
		return "", ""
	}
	p, ok := players[id]
	if !ok {
		return "", ""
	}
	return p.Name, strconv.Itoa(p.Number)
}

func csvRow(values ...string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// FormatMinute renders a millisecond timestamp as whole minutes, e.g. 44'
func FormatMinute(ms int64) string {
	return fmt.Sprintf("%d'", ms/60000)
}

var unsafeFilename = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

// Filename returns "<home>-vs-<away>.<ext>" with path-unsafe characters removed
func Filename(doc Document, format Format) string {
	home, away := "home", "away"
	if doc.HomeTeam != nil && strings.TrimSpace(doc.HomeTeam.Name) != "" {
		home = doc.HomeTeam.Name
	}
	if doc.AwayTeam != nil && strings.TrimSpace(doc.AwayTeam.Name) != "" {
		away = doc.AwayTeam.Name
	}
	name := fmt.Sprintf("%s-vs-%s", home, away)
	name = strings.TrimSpace(unsafeFilename.ReplaceAllString(name, "_"))
	return name + "." + string(format)
}
