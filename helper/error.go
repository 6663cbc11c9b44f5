package helper

import (
	"slices"
	"strings"
)

// Error carries the original error together with the chain of actions
// that were being performed when it surfaced.
type Error struct {
	Original error
	Trace    []string
}

// NewError wraps err with the action that failed.
// If err itself is an Error the action is appended to a copy of its trace.
// Errors nested in other wrappers are kept as the original error.
func NewError(action string, err error) error {
	if e, ok := err.(Error); ok {
		return Error{
			Original: e.Original,
			Trace:    append(slices.Clone(e.Trace), action),
		}
	}
	return Error{
		Original: err,
		Trace:    []string{action},
	}
}

// Error prints the trace from the outermost to the innermost action followed by the original error.
func (e Error) Error() string {
	actions := make([]string, len(e.Trace))
	for i, a := range e.Trace {
		actions[len(e.Trace)-1-i] = a
	}
	if e.Original == nil {
		return strings.Join(actions, ": ")
	}
	return strings.Join(actions, ": ") + ": " + e.Original.Error()
}

// Unwrap gives errors.Is and errors.As access to the original error.
func (e Error) Unwrap() error {
	return e.Original
}
