package scraper

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks caller mistakes detected before any fetch
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFetchable marks network and HTTP status failures
	ErrNotFetchable = errors.New("document not fetchable")
	// ErrUnrecognizedDocument marks documents whose structure did not yield two teams
	ErrUnrecognizedDocument = errors.New("unrecognized document")
	// ErrEmptyRoster marks two team groupings where at least one has no valid players
	ErrEmptyRoster = fmt.Errorf("%w: empty roster", ErrUnrecognizedDocument)
)

// InputError describes a rejected request. The message is meant for end users.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// FetchError reports a failure reaching the source document
type FetchError struct {
	URL        string
	StatusCode int    // zero when no response was received
	Status     string // e.g. "404 Not Found"
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to fetch: %s", e.Status)
	}
	return fmt.Sprintf("Failed to fetch: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrNotFetchable
}

// StructureError reports a document whose sections did not assemble into
// exactly two populated teams.
type StructureError struct {
	Found int      // number of team groupings assembled
	Empty []string // names of groupings without valid players
}

func (e *StructureError) Error() string {
	if e.Found != 2 {
		return fmt.Sprintf("Expected 2 teams, found %d. La página puede haber cambiado su estructura.", e.Found)
	}
	return fmt.Sprintf("No valid players found for %s. La página puede haber cambiado su estructura.",
		strings.Join(e.Empty, ", "))
}

func (e *StructureError) Is(target error) bool {
	switch target {
	case ErrUnrecognizedDocument:
		return true
	case ErrEmptyRoster:
		return len(e.Empty) > 0
	}
	return false
}
