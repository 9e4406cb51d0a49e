package model

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the portal reports a missing object.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized is returned when the portal denies the action.
	ErrNotAuthorized = errors.New("not authorized")
)

// FieldError is one entry of a portal validation error map.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is a field-keyed rejection. Fields keep the order the
// portal sent them in; only the first one is surfaced to the user.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// First returns the first field error, or false if the map was empty.
func (e *ValidationError) First() (FieldError, bool) {
	if e == nil || len(e.Fields) == 0 {
		return FieldError{}, false
	}
	return e.Fields[0], true
}

// SubjectField is the error key the portal uses for a thread-level rejection
// (for example a blocked subject).
const SubjectField = "subject"
