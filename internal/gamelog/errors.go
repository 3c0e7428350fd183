package gamelog

import (
	"errors"
	"fmt"
)

// ErrMalformedLine marks a line whose prefix was recognized but whose
// timestamp or value could not be parsed.
var ErrMalformedLine = errors.New("malformed log line")

type ParseError struct {
	Kind  Kind
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s %q: %v", e.Kind, e.Field, e.Value, ErrMalformedLine)
	}
	return fmt.Sprintf("%s: %s %q: %v: %v", e.Kind, e.Field, e.Value, ErrMalformedLine, e.Err)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedLine
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
