package formula

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	identPattern  = regexp.MustCompile(`^[A-Za-z]+`)
	numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([ij]-?[0-9]+(\.[0-9]+)?)?`)
)

const (
	openBrackets  = "([{"
	closeBrackets = ")]}"
)

// Tokenize splits source into tokens.
//
// A numeric literal is only recognized where an operand may start: at the
// beginning of the input, after a function or after an opening bracket.
// Elsewhere a leading '-' is the binary minus operator, which is how
// "z-1" and "-1 - -1" are told apart.
func Tokenize(source string) ([]Token, error) {
	var tokens []Token

	for i := 0; i < len(source); {
		rest := source[i:]

		if name := identPattern.FindString(rest); name != "" {
			tok, err := identToken(name, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i += len(name)
			continue
		}

		if lit := numberPattern.FindString(rest); lit != "" && operandExpected(tokens) {
			value, err := parseComplex(lit)
			if err != nil {
				return nil, &SyntaxError{Err: ErrSyntax, Pos: i, Text: lit}
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Value: value, Pos: i})
			i += len(lit)
			continue
		}

		c := source[i]
		switch {
		case strings.IndexByte(openBrackets, c) >= 0:
			tokens = append(tokens, Token{Kind: TokenOpenBracket, Pos: i})
		case strings.IndexByte(closeBrackets, c) >= 0:
			tokens = append(tokens, Token{Kind: TokenCloseBracket, Pos: i})
		case c >= '0' && c <= '9':
			// A number right after an operand, e.g. "z 2".
			return nil, &SyntaxError{Err: ErrSyntax, Pos: i, Text: string(c)}
		default:
			r, size := utf8.DecodeRuneInString(rest)
			if op, ok := Lookup(string(r)); ok && op.Arity == 2 {
				tokens = append(tokens, functionToken(op, i))
			} else if !unicode.IsSpace(r) {
				return nil, &SyntaxError{Err: ErrInvalidSymbol, Pos: i, Text: string(r)}
			}
			i += size
			continue
		}
		i++
	}

	return tokens, nil
}

// identToken resolves an alphabetic run to a unary function or the
// free variable.
func identToken(name string, pos int) (Token, error) {
	if op, ok := Lookup(name); ok && op.Arity == 1 {
		return functionToken(op, pos), nil
	}
	if name == VariableName {
		return Token{Kind: TokenVariable, Pos: pos}, nil
	}
	return Token{}, &SyntaxError{Err: ErrInvalidVariable, Pos: pos, Text: name}
}

// operandExpected reports whether a numeric literal may start after tokens.
func operandExpected(tokens []Token) bool {
	if len(tokens) == 0 {
		return true
	}
	switch tokens[len(tokens)-1].Kind {
	case TokenFunction, TokenOpenBracket:
		return true
	default:
		return false
	}
}

// Literals returns the values of number tokens in source order. The kernel
// binds them to literal slots in exactly this order.
func Literals(tokens []Token) []Complex {
	var literals []Complex
	for _, tok := range tokens {
		if tok.Kind == TokenNumber {
			literals = append(literals, tok.Value)
		}
	}
	return literals
}
