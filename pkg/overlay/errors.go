package overlay

import(
	"errors"
	"fmt"
)

// Every error returned from this package wraps one of these, so callers
// can tell bad input from bad data from a broken disk with errors.Is.
var(
	ErrInvalidArgument = errors.New("invalid argument")
	ErrShapeMismatch   = errors.New("volume shape mismatch")
	ErrIO              = errors.New("i/o failure")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func ioErr(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}
