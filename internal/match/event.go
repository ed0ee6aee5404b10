package match

import (
	"github.com/google/uuid"
)

// EventType identifies what happened
type EventType string

const (
	EventGoal         EventType = "goal"
	EventYellowCard   EventType = "yellow-card"
	EventRedCard      EventType = "red-card"
	EventSubstitution EventType = "substitution"
	EventCorner       EventType = "corner"
	EventShot         EventType = "shot"
)

// EventTypes lists every event type in display order
var EventTypes = []EventType{
	EventGoal,
	EventShot,
	EventCorner,
	EventYellowCard,
	EventRedCard,
	EventSubstitution,
}

var eventLabels = map[EventType]string{
	EventGoal:         "Gol",
	EventYellowCard:   "Tarjeta amarilla",
	EventRedCard:      "Tarjeta roja",
	EventSubstitution: "Cambio",
	EventCorner:       "Corner",
	EventShot:         "Tiro",
}

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	_, ok := eventLabels[t]
	return ok
}

// Label returns the Spanish label used in exports
func (t EventType) Label() string {
	if label, ok := eventLabels[t]; ok {
		return label
	}
	return string(t)
}

// Event is one entry of the match log. Timestamp is the elapsed time of the
// current half in milliseconds when the event was recorded.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	Timestamp      int64     `json:"timestamp"`
	PlayerID       string    `json:"playerId"`
	TeamID         string    `json:"teamId"`
	SecondPlayerID string    `json:"secondPlayerId,omitempty"` // player coming on for substitutions
	Description    string    `json:"description,omitempty"`
	Half           int       `json:"half,omitempty"`
}

// EventInput is what a scorer submits. For substitutions PlayerID leaves the
// pitch and SecondPlayerID comes on.
type EventInput struct {
	Type           EventType `json:"type"`
	TeamID         string    `json:"teamId"`
	PlayerID       string    `json:"playerId"`
	SecondPlayerID string    `json:"secondPlayerId,omitempty"`
	Description    string    `json:"description,omitempty"`
}

func newEventID() string {
	return uuid.NewString()
}
