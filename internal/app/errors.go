package app

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrQuit signals that the session should end normally.
	ErrQuit = errors.New("quit requested")

	// ErrUnknownCommand indicates a command name with no registration.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage indicates malformed command arguments.
	ErrUsage = errors.New("bad arguments")

	// ErrNoValue indicates the document does not currently parse.
	ErrNoValue = errors.New("document has no value")

	// ErrRejected indicates an edit the token refused.
	ErrRejected = errors.New("edit rejected")

	// ErrNoSelection indicates a command that needs a selection.
	ErrNoSelection = errors.New("nothing selected")

	// ErrNoMenu indicates a menu command while the menu is closed.
	ErrNoMenu = errors.New("completion menu is not open")
)

// CommandError reports a failed command.
type CommandError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf(":%s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
