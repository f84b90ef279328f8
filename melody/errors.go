package melody

import (
	"errors"
	"fmt"
)

var ErrMalformedInput = errors.New("malformed pitch input")

// MalformedInputError points at the first frame that failed validation.
// Index is -1 when the problem is not tied to a single frame.
type MalformedInputError struct {
	Index  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrMalformedInput, e.Reason)
	}
	return fmt.Sprintf("%v: frame %d: %s", ErrMalformedInput, e.Index, e.Reason)
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }
