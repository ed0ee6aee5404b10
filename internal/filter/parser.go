package filter

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/acta-lineup/internal/match"
)

var minuteRangePattern = regexp.MustCompile(`^(\d{1,3})?\s*-\s*(\d{1,3})?$`)

// ParseMinuteRange parses a minute range into inclusive bounds.
//
// Supported formats:
//   - "44"    - a single minute
//   - "10-45" - both bounds
//   - "45-"   - from minute 45 on
//   - "-30"   - up to minute 30
//
// A nil bound is open.
func ParseMinuteRange(input string) (*int, *int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("minute range cannot be empty")
	}

	if !strings.Contains(input, "-") {
		n, err := strconv.Atoi(input)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid minute: %s", input)
		}
		return &n, &n, nil
	}

	matches := minuteRangePattern.FindStringSubmatch(input)
	if matches == nil || (matches[1] == "" && matches[2] == "") {
		return nil, nil, fmt.Errorf("invalid minute range format. Use '44', '10-45', '45-' or '-30'")
	}

	var from, to *int
	if matches[1] != "" {
		n, _ := strconv.Atoi(matches[1])
		from = &n
	}
	if matches[2] != "" {
		n, _ := strconv.Atoi(matches[2])
		to = &n
	}

	if from != nil && to != nil && *from > *to {
		return nil, nil, fmt.Errorf("start minute must not be after end minute")
	}

	return from, to, nil
}

// ParseTypes parses a comma-separated list of event types
func ParseTypes(input string) ([]match.EventType, error) {
	var types []match.EventType
	for _, part := range splitList(input) {
		t := match.EventType(strings.ToLower(part))
		if !t.Valid() {
			return nil, fmt.Errorf("unknown event type: %s", part)
		}
		types = append(types, t)
	}
	return types, nil
}

// ParseHalf parses "1" or "2"
func ParseHalf(input string) (int, error) {
	half, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || (half != 1 && half != 2) {
		return 0, fmt.Errorf("invalid half: %s (must be 1 or 2)", input)
	}
	return half, nil
}

// FromQuery builds a filter from query parameters: team, type and player take
// comma-separated lists; half and minutes take a single value.
func FromQuery(q url.Values) (*Filter, error) {
	f := NewFilter()

	for _, v := range q["team"] {
		f.Teams = append(f.Teams, splitList(v)...)
	}
	for _, v := range q["player"] {
		f.Players = append(f.Players, splitList(v)...)
	}
	for _, v := range q["type"] {
		types, err := ParseTypes(v)
		if err != nil {
			return nil, err
		}
		f.Types = append(f.Types, types...)
	}

	if v := q.Get("half"); v != "" {
		half, err := ParseHalf(v)
		if err != nil {
			return nil, err
		}
		f.Half = half
	}

	if v := q.Get("minutes"); v != "" {
		from, to, err := ParseMinuteRange(v)
		if err != nil {
			return nil, err
		}
		f.MinuteFrom, f.MinuteTo = from, to
	}

	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
