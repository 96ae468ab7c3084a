package domain

import (
	"strings"
)

// Status is the lifecycle state of a task.
type Status string

// Task lifecycle states.
const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// transitions maps each state to the states it may move to.
// Terminal states map to an empty set. Adding a state means adding a row here.
var transitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusInProgress: {},
		StatusCancelled:  {},
	},
	StatusInProgress: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// lifecycle lists every state in the order a task moves through them.
var lifecycle = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	return append([]Status(nil), lifecycle...)
}

// ParseStatus converts a raw name (case-insensitive) into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		names := make([]string, 0, len(lifecycle))
		for _, st := range Statuses() {
			names = append(names, string(st))
		}
		return "", NewValidationError("estado", "must be one of "+strings.Join(names, ", "), nil)
	}
	return s, nil
}

// Valid reports whether s is one of the defined states.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether moving from current to requested is allowed.
// Staying in the same state is always allowed.
func CanTransition(current, requested Status) bool {
	if !current.Valid() || !requested.Valid() {
		return false
	}
	if current == requested {
		return true
	}
	_, ok := transitions[current][requested]
	return ok
}

// ValidateTransition returns an *InvalidTransitionError when CanTransition is false.
func ValidateTransition(current, requested Status) error {
	if !CanTransition(current, requested) {
		return &InvalidTransitionError{From: current, To: requested}
	}
	return nil
}
