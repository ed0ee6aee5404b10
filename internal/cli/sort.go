package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
)

// SortOrder represents the available player orderings for text output
type SortOrder string

const (
	SortBySource SortOrder = "source"
	SortByNumber SortOrder = "number"
	SortByName   SortOrder = "name"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortBySource, SortByNumber, SortByName:
		return o, nil
	case "":
		return SortBySource, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'source', 'number' or 'name')", s)
}

// sortPlayers sorts players in place. Source order leaves the document order.
func sortPlayers(players []lineup.Player, order SortOrder) {
	switch order {
	case SortByNumber:
		sort.SliceStable(players, func(i, j int) bool {
			return players[i].Number < players[j].Number
		})
	case SortByName:
		sort.SliceStable(players, func(i, j int) bool {
			a, b := strings.ToLower(players[i].Name), strings.ToLower(players[j].Name)
			if a != b {
				return a < b
			}
			// Same name, fall back to jersey number
			return players[i].Number < players[j].Number
		})
	}
}
