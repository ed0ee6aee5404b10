package scraper

import "github.com/pfrederiksen/acta-lineup/internal/lineup"

// Validate checks that exactly two teams were assembled. A count mismatch is a
// StructureError carrying the count; two teams where one or both have no
// players is a StructureError matching ErrEmptyRoster, so callers that tolerate
// empty rosters can test for it explicitly.
func Validate(teams []lineup.Team) error {
	if len(teams) != 2 {
		return &StructureError{Found: len(teams)}
	}

	var empty []string
	for _, t := range teams {
		if len(t.Players) == 0 {
			empty = append(empty, t.Name)
		}
	}
	if len(empty) > 0 {
		return &StructureError{Found: 2, Empty: empty}
	}

	return nil
}
