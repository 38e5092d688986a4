package elide

import (
	"errors"
	"fmt"
)

// ErrInternal marks a broken precondition: the caller selected a target the
// tree cannot support. Runs stop on the first one.
var ErrInternal = errors.New("elide: internal consistency violation")

type Op string

const (
	OpRemoveParam        Op = "remove_param"
	OpBodyHook           Op = "body_hook"
	OpRemoveArg          Op = "remove_arg"
	OpRemoveConstructArg Op = "remove_construct_arg"
)

// EditError is a single failed edit.
type EditError struct {
	Op   Op
	Site string
	Pos  int
	Err  error
}

func (e *EditError) Error() string {
	return fmt.Sprintf("%s %s (param %d): %v", e.Op, e.Site, e.Pos, e.Err)
}

func (e *EditError) Unwrap() error { return e.Err }

func internalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
