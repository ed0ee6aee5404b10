package match

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
)

// Status is the state of the match clock
type Status string

const (
	StatusPreMatch Status = "pre-match"
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// Team ids assigned when a roster joins the match
const (
	HomeTeamID = "home"
	AwayTeamID = "away"
)

// Command drives the clock state machine
type Command string

const (
	CommandStart      Command = "start"
	CommandPause      Command = "pause"
	CommandResume     Command = "resume"
	CommandSwitchHalf Command = "switch-half"
	CommandEnd        Command = "end"
	CommandReset      Command = "reset"
)

// ParseCommand maps a command name to a Command
func ParseCommand(s string) (Command, error) {
	switch c := Command(strings.ToLower(strings.TrimSpace(s))); c {
	case CommandStart, CommandPause, CommandResume, CommandSwitchHalf, CommandEnd, CommandReset:
		return c, nil
	}
	return "", fmt.Errorf("unknown command: %q", s)
}

var (
	// ErrInvalidTransition is returned when a command is not allowed in the current state
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNoTeams is returned when starting a match before both line-ups are set
	ErrNoTeams = errors.New("teams not set")
	// ErrInvalidEvent is returned for events that do not match the line-ups
	ErrInvalidEvent = errors.New("invalid event")
)

// TransitionError describes a rejected command
type TransitionError struct {
	Command Command
	From    Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Command, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Snapshot is a consistent copy of the match state
type Snapshot struct {
	HomeTeam    *lineup.Team `json:"homeTeam"`
	AwayTeam    *lineup.Team `json:"awayTeam"`
	Events      []Event      `json:"events"`
	CurrentHalf int          `json:"currentHalf"`
	ElapsedTime int64        `json:"elapsedTime"` // milliseconds into the current half
	Status      Status       `json:"status"`
}

// Option configures a Match
type Option func(*Match)

// WithClock sets the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(m *Match) {
		m.now = now
	}
}

// Match is a single in-memory match session. All methods are safe for
// concurrent use.
type Match struct {
	mu  sync.Mutex
	now func() time.Time

	status    Status
	half      int
	resumedAt time.Time     // when play last started or resumed
	banked    time.Duration // time played in this half before resumedAt

	home   *lineup.Team
	away   *lineup.Team
	events []Event
}

// New creates a match in pre-match state
func New(opts ...Option) *Match {
	m := &Match{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.resetLocked()
	return m
}

func (m *Match) resetLocked() {
	m.status = StatusPreMatch
	m.half = 1
	m.resumedAt = time.Time{}
	m.banked = 0
	m.home = nil
	m.away = nil
	m.events = nil
}

// SetTeams loads the two line-ups. Only allowed before kick-off.
func (m *Match) SetTeams(roster lineup.Roster) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusPreMatch {
		return &TransitionError{Command: "set teams", From: m.status}
	}

	home := copyTeam(roster.HomeTeam, HomeTeamID)
	away := copyTeam(roster.AwayTeam, AwayTeamID)
	m.home = &home
	m.away = &away
	return nil
}

func copyTeam(t lineup.Team, id string) lineup.Team {
	players := make([]lineup.Player, len(t.Players))
	copy(players, t.Players)
	return lineup.Team{ID: id, Name: t.Name, Players: players}
}

// Status returns the current clock state
func (m *Match) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Elapsed returns the time played in the current half
func (m *Match) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsedLocked()
}

func (m *Match) elapsedLocked() time.Duration {
	if m.status == StatusPlaying {
		return m.banked + m.now().Sub(m.resumedAt)
	}
	return m.banked
}

// Apply runs a command against the state machine
func (m *Match) Apply(cmd Command) error {
	switch cmd {
	case CommandStart:
		return m.Start()
	case CommandPause:
		return m.Pause()
	case CommandResume:
		return m.Resume()
	case CommandSwitchHalf:
		return m.SwitchHalf()
	case CommandEnd:
		return m.End()
	case CommandReset:
		m.Reset()
		return nil
	}
	return fmt.Errorf("unknown command: %q", cmd)
}

// Start kicks off the first half
func (m *Match) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusPreMatch {
		return &TransitionError{Command: CommandStart, From: m.status}
	}
	if m.home == nil || m.away == nil {
		return ErrNoTeams
	}

	m.status = StatusPlaying
	m.resumedAt = m.now()
	m.banked = 0
	return nil
}

// Pause stops the clock
func (m *Match) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusPlaying {
		return &TransitionError{Command: CommandPause, From: m.status}
	}

	m.banked = m.elapsedLocked()
	m.status = StatusPaused
	return nil
}

// Resume restarts a paused clock
func (m *Match) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusPaused {
		return &TransitionError{Command: CommandResume, From: m.status}
	}

	m.status = StatusPlaying
	m.resumedAt = m.now()
	return nil
}

// SwitchHalf moves to the second half and restarts the half clock at zero.
// A running clock keeps running.
func (m *Match) SwitchHalf() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if (m.status != StatusPlaying && m.status != StatusPaused) || m.half != 1 {
		return &TransitionError{Command: CommandSwitchHalf, From: m.status}
	}

	m.half = 2
	m.banked = 0
	m.resumedAt = m.now()
	return nil
}

// End finishes the match and freezes the clock
func (m *Match) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusPlaying && m.status != StatusPaused {
		return &TransitionError{Command: CommandEnd, From: m.status}
	}

	m.banked = m.elapsedLocked()
	m.status = StatusFinished
	return nil
}

// Reset clears line-ups, events and clock
func (m *Match) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// RecordEvent validates and appends an event stamped with the current elapsed time
func (m *Match) RecordEvent(in EventInput) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusPlaying && m.status != StatusPaused {
		return Event{}, &TransitionError{Command: "record event", From: m.status}
	}
	if !in.Type.Valid() {
		return Event{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, in.Type)
	}

	team := m.teamLocked(in.TeamID)
	if team == nil {
		return Event{}, fmt.Errorf("%w: unknown team %q", ErrInvalidEvent, in.TeamID)
	}
	if _, ok := team.PlayerByID(in.PlayerID); !ok {
		return Event{}, fmt.Errorf("%w: player %q is not in %s", ErrInvalidEvent, in.PlayerID, team.Name)
	}

	if in.Type == EventSubstitution {
		if in.SecondPlayerID == "" {
			return Event{}, fmt.Errorf("%w: substitution needs the incoming player", ErrInvalidEvent)
		}
		if in.SecondPlayerID == in.PlayerID {
			return Event{}, fmt.Errorf("%w: a player cannot replace himself", ErrInvalidEvent)
		}
		if _, ok := team.PlayerByID(in.SecondPlayerID); !ok {
			return Event{}, fmt.Errorf("%w: player %q is not in %s", ErrInvalidEvent, in.SecondPlayerID, team.Name)
		}
	} else if in.SecondPlayerID != "" {
		return Event{}, fmt.Errorf("%w: only substitutions take a second player", ErrInvalidEvent)
	}

	evt := Event{
		ID:             newEventID(),
		Type:           in.Type,
		Timestamp:      m.elapsedLocked().Milliseconds(),
		PlayerID:       in.PlayerID,
		TeamID:         team.ID,
		SecondPlayerID: in.SecondPlayerID,
		Description:    strings.TrimSpace(in.Description),
		Half:           m.half,
	}
	m.events = append(m.events, evt)
	return evt, nil
}

func (m *Match) teamLocked(id string) *lineup.Team {
	switch {
	case m.home != nil && id == m.home.ID:
		return m.home
	case m.away != nil && id == m.away.ID:
		return m.away
	}
	return nil
}

// Events returns a copy of the event log in recording order
func (m *Match) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]Event, len(m.events))
	copy(events, m.events)
	return events
}

// Snapshot returns a copy of the whole match state
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Events:      make([]Event, len(m.events)),
		CurrentHalf: m.half,
		ElapsedTime: m.elapsedLocked().Milliseconds(),
		Status:      m.status,
	}
	copy(snap.Events, m.events)
	if m.home != nil {
		home := copyTeam(*m.home, m.home.ID)
		snap.HomeTeam = &home
	}
	if m.away != nil {
		away := copyTeam(*m.away, m.away.ID)
		snap.AwayTeam = &away
	}
	return snap
}

// FormatClock renders milliseconds as MM:SS
func FormatClock(ms int64) string {
	totalSeconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
