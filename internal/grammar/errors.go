package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// CompileError reports a problem in a grammar description.
type CompileError struct {
	// File is the description's name, or "<embedded>" for the default.
	File string

	// Line is 1-based; 0 when the error is not tied to a line.
	Line int

	Message string
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// NotRecognizedError is returned when no branch accepts a token.
type NotRecognizedError struct {
	Token    string
	Position int
	Expected []string
}

func (e *NotRecognizedError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("command not recognized: %q", e.Token)
	}
	return fmt.Sprintf("command not recognized: %q at position %d (expected %s)",
		e.Token, e.Position, strings.Join(e.Expected, " | "))
}

// TooFewArgumentsError is returned when input ends before a complete
// command. Expected lists what could come next.
type TooFewArgumentsError struct {
	Expected []string
}

func (e *TooFewArgumentsError) Error() string {
	return fmt.Sprintf("too few arguments, expected %s", strings.Join(e.Expected, " | "))
}

// IsNotRecognized reports whether err is or wraps a NotRecognizedError.
func IsNotRecognized(err error) bool {
	var nr *NotRecognizedError
	return errors.As(err, &nr)
}

// IsTooFewArguments reports whether err is or wraps a TooFewArgumentsError.
func IsTooFewArguments(err error) bool {
	var tf *TooFewArgumentsError
	return errors.As(err, &tf)
}
