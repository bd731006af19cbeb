package resolve

import (
	"errors"
	"fmt"
)

// ErrAborted is returned by a Prompter when the user interrupts a prompt or
// input ends before an answer is read.
var ErrAborted = errors.New("prompt aborted")

// Error reports a filesystem failure while applying a resolution to one item.
type Error struct {
	Item string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Item, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(item, op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return &Error{Item: item, Op: op, Err: err}
}
