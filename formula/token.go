package formula

import "fmt"

// TokenKind identifies the variant held by a Token.
type TokenKind int

const (
	// TokenNumber is a complex literal.
	TokenNumber TokenKind = iota

	// TokenVariable is the free variable z.
	TokenVariable

	// TokenFunction is a unary function or a binary operator.
	TokenFunction

	// TokenOpenBracket is one of ( [ {.
	TokenOpenBracket

	// TokenCloseBracket is one of ) ] }.
	TokenCloseBracket
)

// String returns the string representation of TokenKind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "Number"
	case TokenVariable:
		return "Variable"
	case TokenFunction:
		return "Function"
	case TokenOpenBracket:
		return "OpenBracket"
	case TokenCloseBracket:
		return "CloseBracket"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Token is a lexical unit of a formula.
//
// Value is set for TokenNumber. Name, Arity and Priority are set for
// TokenFunction; Priority is the base priority until the tree builder
// shifts it by bracket depth.
type Token struct {
	Kind     TokenKind
	Value    Complex
	Name     string
	Arity    int
	Priority int

	// Pos is the byte offset of the token in the source.
	Pos int
}

// String returns a compact description used in error messages and tests.
func (t Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return t.Value.String()
	case TokenVariable:
		return VariableName
	case TokenFunction:
		return t.Name
	case TokenOpenBracket:
		return "("
	case TokenCloseBracket:
		return ")"
	default:
		return t.Kind.String()
	}
}

func functionToken(op Operation, pos int) Token {
	return Token{
		Kind:     TokenFunction,
		Name:     op.Name,
		Arity:    op.Arity,
		Priority: op.Priority,
		Pos:      pos,
	}
}
