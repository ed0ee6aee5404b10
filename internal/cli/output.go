package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the roster in the specified format. JSON output is the
// same {homeTeam, awayTeam} document the HTTP API accepts.
func WriteOutput(w io.Writer, roster *lineup.Roster, format OutputFormat, order SortOrder, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, roster)
	case FormatText:
		return writeText(w, roster, order, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the roster as JSON
func writeJSON(w io.Writer, roster *lineup.Roster) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(roster)
}

// writeText outputs the roster as human-readable team sheets
func writeText(w io.Writer, roster *lineup.Roster, order SortOrder, verbose bool) error {
	total := 0
	for i, team := range roster.Teams() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d players)\n", team.Name, len(team.Players))

		groups := []struct {
			label   string
			players []lineup.Player
		}{
			{scraper.StartersLabel, team.Starters()},
			{scraper.SubstitutesLabel, team.Substitutes()},
		}
		for _, g := range groups {
			if len(g.players) == 0 {
				continue
			}
			sortPlayers(g.players, order)

			fmt.Fprintf(w, "  %s:\n", g.label)
			for _, p := range g.players {
				fmt.Fprintf(w, "    %3d  %s\n", p.Number, p.Name)
				if verbose {
					fmt.Fprintf(w, "         ID: %s\n", p.ID)
				}
			}
		}
		total += len(team.Players)
	}

	fmt.Fprintf(w, "\nTotal: %d players\n", total)
	return nil
}
