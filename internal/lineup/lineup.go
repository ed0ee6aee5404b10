package lineup

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Player represents one entry of a team sheet
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Number    int    `json:"number"`
	Position  string `json:"position,omitempty"`
	IsStarter bool   `json:"isStarter"`
}

// Team is a named, ordered list of players
type Team struct {
	ID      string   `json:"id,omitempty"` // set once the team joins a match ("home" or "away")
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

// Roster is the two-team result of an import or a manual entry
type Roster struct {
	HomeTeam Team `json:"homeTeam"`
	AwayTeam Team `json:"awayTeam"`
}

// NewPlayerID returns a unique identifier for a player of the given team index.
// The team index and jersey number are kept as a readable prefix.
func NewPlayerID(teamIndex, number int) string {
	return fmt.Sprintf("%d-%d-%s", teamIndex, number, uuid.NewString())
}

// NewPlayer creates a Player with a freshly generated ID
func NewPlayer(teamIndex, number int, name string, isStarter bool) Player {
	return Player{
		ID:        NewPlayerID(teamIndex, number),
		Name:      name,
		Number:    number,
		IsStarter: isStarter,
	}
}

// PlaceholderName is the display name used when the source carries no team name.
// Index is zero-based.
func PlaceholderName(index int) string {
	return fmt.Sprintf("Equipo %d", index+1)
}

// NormalizeName trims a scraped name and collapses inner whitespace
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Starters returns the players flagged as starters, in roster order
func (t Team) Starters() []Player {
	return t.filter(true)
}

// Substitutes returns the bench players, in roster order
func (t Team) Substitutes() []Player {
	return t.filter(false)
}

func (t Team) filter(starter bool) []Player {
	out := make([]Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.IsStarter == starter {
			out = append(out, p)
		}
	}
	return out
}

// PlayerByID looks up a player by identifier
func (t Team) PlayerByID(id string) (Player, bool) {
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Teams returns home and away in that order
func (r *Roster) Teams() []Team {
	return []Team{r.HomeTeam, r.AwayTeam}
}

// Validate checks the structural invariants of a manually supplied roster:
// both teams named and populated, unique player ids, positive jersey numbers
// and non-empty names.
func (r *Roster) Validate() error {
	ids := make(map[string]bool)
	for i, team := range r.Teams() {
		if strings.TrimSpace(team.Name) == "" {
			return fmt.Errorf("team %d has no name", i+1)
		}
		if len(team.Players) == 0 {
			return fmt.Errorf("team %q has no players", team.Name)
		}
		for _, p := range team.Players {
			if p.ID == "" {
				return fmt.Errorf("team %q: player %q has no id", team.Name, p.Name)
			}
			if ids[p.ID] {
				return fmt.Errorf("duplicate player id: %s", p.ID)
			}
			ids[p.ID] = true
			if strings.TrimSpace(p.Name) == "" {
				return fmt.Errorf("team %q: player #%d has no name", team.Name, p.Number)
			}
			if p.Number <= 0 {
				return fmt.Errorf("team %q: player %q has invalid number %d", team.Name, p.Name, p.Number)
			}
		}
	}
	return nil
}

// AssignMissingIDs fills in ids for players entered without one (manual line-ups)
func (r *Roster) AssignMissingIDs() {
	for ti, team := range []*Team{&r.HomeTeam, &r.AwayTeam} {
		for i := range team.Players {
			if team.Players[i].ID == "" {
				team.Players[i].ID = NewPlayerID(ti, team.Players[i].Number)
			}
		}
	}
}
