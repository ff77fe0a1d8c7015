package metadata

import (
	"errors"

	"mediasort/internal/services"
)

// State classifies the outcome of one external lookup.
type State int

const (
	// Absent means the service answered without a match, or was skipped.
	Absent State = iota
	// Found means Value holds a match.
	Found
	// Unavailable means the service failed; Err holds the cause.
	Unavailable
)

func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case Unavailable:
		return "unavailable"
	default:
		return "absent"
	}
}

// Lookup is the tagged result of one service call.
type Lookup[T any] struct {
	State State
	Value T
	Err   error
}

// Ok reports whether a value was found.
func (l Lookup[T]) Ok() bool {
	return l.State == Found
}

func found[T any](value T) Lookup[T] {
	return Lookup[T]{State: Found, Value: value}
}

func absent[T any]() Lookup[T] {
	return Lookup[T]{State: Absent}
}

// fromResult maps a client return pair onto a Lookup. Not-found errors and nil
// values are absences; any other error makes the service unavailable.
func fromResult[T any](value *T, err error) Lookup[T] {
	switch {
	case err == nil && value != nil:
		return found(*value)
	case err == nil, errors.Is(err, services.ErrNotFound):
		return Lookup[T]{State: Absent, Err: err}
	default:
		return Lookup[T]{State: Unavailable, Err: err}
	}
}
