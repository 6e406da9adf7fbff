package hybrid

import (
	"errors"
	"fmt"
)

// Errors reported by the editor.
var (
	// ErrReentrantRestore is the panic value for a RestoreState call made
	// while another RestoreState is in progress.
	ErrReentrantRestore = errors.New("reentrant restore state")

	// ErrParserPrinterMismatch is wrapped by ContractError.
	ErrParserPrinterMismatch = errors.New("parser and pretty printer disagree")
)

// ContractError is the panic value raised when printing a freshly parsed
// value does not reproduce the number of tokens the parser consumed.
type ContractError struct {
	Parsed  int
	Printed int
}

// Error implements error.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%v: parsed %d tokens, printed %d", ErrParserPrinterMismatch, e.Parsed, e.Printed)
}

// Unwrap returns ErrParserPrinterMismatch.
func (e *ContractError) Unwrap() error {
	return ErrParserPrinterMismatch
}
