package formula

import (
	"fmt"
	"slices"
	"strings"
)

// Tree is a node of a binary expression tree. Leaves hold number or
// variable tokens; inner nodes hold function tokens. Left is set only for
// binary operators, Right for every function.
type Tree struct {
	Token Token
	Left  *Tree
	Right *Tree
}

// complete reports whether t can serve as an operand: it is a leaf, or a
// function that has already received its operands.
func (t *Tree) complete() bool {
	return t != nil && (t.Token.Kind != TokenFunction || t.Right != nil)
}

// pending reports whether t is a function of the given arity and effective
// priority that still waits for its operands.
func (t *Tree) pending(arity, priority int) bool {
	return t.Token.Kind == TokenFunction && t.Right == nil &&
		t.Token.Arity == arity && t.Token.Priority == priority
}

// String renders t in a fully bracketed prefix form, e.g. "plus(mul(z, z), 1)".
func (t *Tree) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *Tree) write(sb *strings.Builder) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	sb.WriteString(t.Token.String())
	if t.Token.Kind != TokenFunction {
		return
	}
	sb.WriteByte('(')
	if t.Left != nil {
		t.Left.write(sb)
		sb.WriteString(", ")
	}
	t.Right.write(sb)
	sb.WriteByte(')')
}

// BuildTree assembles tokens into an expression tree.
//
// Brackets are resolved up front: every function token gets its base
// priority plus BracketPriorityStep for each enclosing bracket level, and
// the brackets themselves are dropped. The remaining flat forest is then
// reduced from the highest priority to the lowest. At each level unary
// functions are applied right to left, so that nested calls such as
// "exp sinh z" resolve inside out, and binary operators are applied left to
// right, which makes them left-associative.
func BuildTree(tokens []Token) (*Tree, error) {
	forest, maxPriority, err := flatten(tokens)
	if err != nil {
		return nil, err
	}
	if len(forest) == 0 {
		return nil, &SyntaxError{Err: ErrSyntax}
	}

	for pr := maxPriority; pr >= 0; pr-- {
		for i := len(forest) - 1; i >= 0; i-- {
			node := forest[i]
			if !node.pending(1, pr) {
				continue
			}
			if i+1 >= len(forest) || !forest[i+1].complete() {
				return nil, missingOperand(node)
			}
			forest[i] = &Tree{Token: node.Token, Right: forest[i+1]}
			forest = slices.Delete(forest, i+1, i+2)
		}

		for i := 0; i < len(forest); {
			node := forest[i]
			if !node.pending(2, pr) {
				i++
				continue
			}
			if i == 0 || i+1 >= len(forest) || !forest[i-1].complete() || !forest[i+1].complete() {
				return nil, missingOperand(node)
			}
			forest[i-1] = &Tree{Token: node.Token, Left: forest[i-1], Right: forest[i+1]}
			forest = slices.Delete(forest, i, i+2)
		}
	}

	if len(forest) != 1 {
		return nil, &SyntaxError{Err: ErrSyntax, Pos: forest[1].Token.Pos, Text: forest[1].Token.String()}
	}
	return forest[0], nil
}

// flatten shifts function priorities by bracket depth and drops brackets.
// Each remaining token becomes a single-node tree.
func flatten(tokens []Token) ([]*Tree, int, error) {
	forest := make([]*Tree, 0, len(tokens))
	var opens []int // positions of unclosed brackets
	maxPriority := 0

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenOpenBracket:
			opens = append(opens, tok.Pos)
		case TokenCloseBracket:
			if len(opens) == 0 {
				return nil, 0, &SyntaxError{Err: ErrUnmatchedBrackets, Pos: tok.Pos}
			}
			opens = opens[:len(opens)-1]
		case TokenFunction:
			op, ok := operations[tok.Name]
			if !ok || op.Arity != tok.Arity {
				return nil, 0, &SyntaxError{
					Err:  fmt.Errorf("%w: %q with arity %d", ErrInvalidArity, tok.Name, tok.Arity),
					Pos:  tok.Pos,
					Text: tok.Name,
				}
			}
			tok.Priority = op.Priority + len(opens)*BracketPriorityStep
			maxPriority = max(maxPriority, tok.Priority)
			forest = append(forest, &Tree{Token: tok})
		default:
			forest = append(forest, &Tree{Token: tok})
		}
	}

	if len(opens) != 0 {
		return nil, 0, &SyntaxError{Err: ErrUnmatchedBrackets, Pos: opens[len(opens)-1]}
	}
	return forest, maxPriority, nil
}

func missingOperand(node *Tree) error {
	return &SyntaxError{Err: ErrSyntax, Pos: node.Token.Pos, Text: node.Token.Name}
}
