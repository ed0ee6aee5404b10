// Package filter narrows a match event log down by team, event type, player,
// half and minute range.
//
// Example usage:
//
//	// Home goals and shots in the second half
//	f := filter.NewFilter()
//	f.Teams = []string{"home"}
//	f.Types = []match.EventType{match.EventGoal, match.EventShot}
//	f.Half = 2
//
//	filtered := f.Apply(events)
//
// Filters can also be built from HTTP query parameters with FromQuery.
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/acta-lineup/internal/match"
)

// Filter represents event filtering criteria
type Filter struct {
	// Team ids ("home", "away")
	Teams []string `json:"teams,omitempty"`

	Types []match.EventType `json:"types,omitempty"`

	// Matches either the main or the second player of an event
	Players []string `json:"players,omitempty"`

	// 1 or 2; zero means both halves
	Half int `json:"half,omitempty"`

	// Inclusive minute bounds within the half
	MinuteFrom *int `json:"minute_from,omitempty"`
	MinuteTo   *int `json:"minute_to,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Teams:   []string{},
		Types:   []match.EventType{},
		Players: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return len(f.Teams) == 0 &&
		len(f.Types) == 0 &&
		len(f.Players) == 0 &&
		f.Half == 0 &&
		f.MinuteFrom == nil &&
		f.MinuteTo == nil
}

// Matches checks if an event matches all active filter criteria.
// An empty filter matches all events.
func (f *Filter) Matches(evt match.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if f.Half != 0 && evt.Half != 0 && evt.Half != f.Half {
		return false
	}

	minute := int(evt.Timestamp / 60000)
	if f.MinuteFrom != nil && minute < *f.MinuteFrom {
		return false
	}
	if f.MinuteTo != nil && minute > *f.MinuteTo {
		return false
	}

	if len(f.Teams) > 0 && !containsFold(f.Teams, evt.TeamID) {
		return false
	}

	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if t == evt.Type {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Players) > 0 {
		if !containsFold(f.Players, evt.PlayerID) &&
			(evt.SecondPlayerID == "" || !containsFold(f.Players, evt.SecondPlayerID)) {
			return false
		}
	}

	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Apply returns the matching events in their original order. An empty
// filter returns the input unchanged.
func (f *Filter) Apply(events []match.Event) []match.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := []match.Event{}
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Teams: home | Types: goal, shot | Half: 2 | Minutes: 10-45"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(f.Teams, ", ")))
	}

	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		parts = append(parts, fmt.Sprintf("Types: %s", strings.Join(types, ", ")))
	}

	if len(f.Players) > 0 {
		parts = append(parts, fmt.Sprintf("Players: %s", strings.Join(f.Players, ", ")))
	}

	if f.Half != 0 {
		parts = append(parts, fmt.Sprintf("Half: %d", f.Half))
	}

	if f.MinuteFrom != nil || f.MinuteTo != nil {
		parts = append(parts, "Minutes: "+formatRange(f.MinuteFrom, f.MinuteTo))
	}

	return strings.Join(parts, " | ")
}

func formatRange(from, to *int) string {
	var lo, hi string
	if from != nil {
		lo = fmt.Sprint(*from)
	}
	if to != nil {
		hi = fmt.Sprint(*to)
	}
	return lo + "-" + hi
}
