package formula

import (
	"errors"
	"fmt"
)

// Compilation errors. Use errors.Is to match them; syntax errors are
// wrapped in a *SyntaxError carrying the source position.
var (
	// ErrInvalidSymbol is returned for a character that is not part of the grammar.
	ErrInvalidSymbol = errors.New("formula: invalid symbol")

	// ErrInvalidVariable is returned for a name that is neither a function nor z.
	ErrInvalidVariable = errors.New("formula: invalid variable name")

	// ErrUnmatchedBrackets is returned when brackets do not nest.
	ErrUnmatchedBrackets = errors.New("formula: unmatched brackets")

	// ErrSyntax is returned when an operator lacks an operand or operands
	// are not joined by operators.
	ErrSyntax = errors.New("formula: syntax error")

	// ErrInvalidArity is returned by Generate for an opcode with no known arity.
	ErrInvalidArity = errors.New("formula: invalid operation arity")

	// ErrMalformedNotation is returned when a notation does not reduce to
	// exactly one value or its literal table does not match its opcodes.
	ErrMalformedNotation = errors.New("formula: malformed notation")
)

// SyntaxError reports a rejected formula.
type SyntaxError struct {
	// Err is one of ErrInvalidSymbol, ErrInvalidVariable,
	// ErrUnmatchedBrackets or ErrSyntax.
	Err error

	// Pos is the byte offset in the source where the problem was found.
	Pos int

	// Text is the offending input, if any.
	Text string
}

func (e *SyntaxError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%v at offset %d", e.Err, e.Pos)
	}
	return fmt.Sprintf("%v %q at offset %d", e.Err, e.Text, e.Pos)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
