package bridge

import (
	"strings"

	"github.com/onelane/onelane/internal/errors"
)

// Direction identifies the flow of traffic on the span.
type Direction int

const (
	// None means the span is empty and either direction may claim it.
	// It is the zero value and never a valid direction of travel.
	None Direction = iota

	// Northbound is travel from the south end to the north end.
	Northbound

	// Southbound is travel from the north end to the south end.
	Southbound
)

// String returns the lowercase name used in logs, events, and scenario
// files: "none", "north", or "south".
func (d Direction) String() string {
	switch d {
	case Northbound:
		return "north"
	case Southbound:
		return "south"
	default:
		return "none"
	}
}

// Opposite returns the opposing direction of travel. None has no
// opposite and maps to itself.
func (d Direction) Opposite() Direction {
	switch d {
	case Northbound:
		return Southbound
	case Southbound:
		return Northbound
	default:
		return None
	}
}

// Valid reports whether d is an actual direction of travel.
func (d Direction) Valid() bool {
	return d == Northbound || d == Southbound
}

// index maps a travel direction to its slot in the per-direction waiting
// counters and condition variables. Only Northbound and Southbound have
// slots; callers must check Valid() first.
func (d Direction) index() int {
	if d == Southbound {
		return 1
	}
	return 0
}

// ParseDirection converts flag and scenario spellings to a Direction.
// It accepts "north"/"n"/"northbound" and "south"/"s"/"southbound",
// case-insensitively. "none" is not a direction of travel and is
// rejected along with everything else.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "northbound":
		return Northbound, nil
	case "south", "s", "southbound":
		return Southbound, nil
	default:
		return None, errors.NewValidation("direction must be north or south").
			WithField("direction").
			WithValue(s).
			WithCause(errors.ErrInvalidDirection)
	}
}
