package command

import (
	"errors"
	"fmt"
)

// ErrParse matches every *ParseError through errors.Is.
var ErrParse = errors.New("cannot parse command")

// ParseError reports a command line that does not fit the grammar. Nothing was executed.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
