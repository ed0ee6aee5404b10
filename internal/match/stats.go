package match

// TeamStats counts events per type for one team
type TeamStats map[EventType]int

// Stats holds the per-team tallies shown next to the scoreboard
type Stats struct {
	Home TeamStats `json:"home"`
	Away TeamStats `json:"away"`
}

// Tally counts events by team and type. Every known type is present, zero or not.
func Tally(events []Event) Stats {
	s := Stats{Home: make(TeamStats), Away: make(TeamStats)}
	for _, t := range EventTypes {
		s.Home[t] = 0
		s.Away[t] = 0
	}

	for _, e := range events {
		switch e.TeamID {
		case HomeTeamID:
			s.Home[e.Type]++
		case AwayTeamID:
			s.Away[e.Type]++
		}
	}
	return s
}

// Score returns home and away goals
func (s Stats) Score() (home, away int) {
	return s.Home[EventGoal], s.Away[EventGoal]
}

// Stats tallies the current event log
func (m *Match) Stats() Stats {
	return Tally(m.Events())
}
