package formula

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Notation is the compiled form of a formula: opcodes in postfix order and
// the literal table referenced by its "data" opcodes.
//
// A Notation is a value: two compilations of the same source are Equal, and
// a Notation may be cached and shared as long as it is not modified.
type Notation struct {
	Ops      []string
	Literals []Complex
}

// Instruction is a decoded opcode.
type Instruction struct {
	Op string

	// Arity is the operand count of a function opcode, 0 for leaves.
	Arity int

	// Slot is the literal slot of a "data" opcode, -1 otherwise.
	Slot int
}

// Parse compiles source into a Notation.
func Parse(source string) (Notation, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return Notation{}, err
	}
	tree, err := BuildTree(tokens)
	if err != nil {
		return Notation{}, err
	}
	return Linearize(tree, Literals(tokens))
}

// Linearize flattens tree into postfix order. literals must be the number
// values in token order (see Literals); they are not re-collected from the
// tree so that slot numbering is fixed by the source text alone.
func Linearize(tree *Tree, literals []Complex) (Notation, error) {
	var ops []string
	appendPostfix(&ops, tree)

	n := Notation{Ops: ops, Literals: slices.Clone(literals)}
	if err := n.Validate(); err != nil {
		return Notation{}, err
	}
	return n, nil
}

func appendPostfix(ops *[]string, t *Tree) {
	if t.Left != nil {
		appendPostfix(ops, t.Left)
	}
	if t.Right != nil {
		appendPostfix(ops, t.Right)
	}
	switch t.Token.Kind {
	case TokenVariable:
		*ops = append(*ops, OpVar)
	case TokenNumber:
		*ops = append(*ops, OpData)
	default:
		*ops = append(*ops, t.Token.Name)
	}
}

// Instructions returns the decoded opcodes in evaluation order. The
// sequence can be ranged over any number of times.
func (n Notation) Instructions() iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		slot := 0
		for _, op := range n.Ops {
			ins := Instruction{Op: op, Slot: -1}
			switch op {
			case OpData:
				ins.Slot = slot
				slot++
			case OpVar:
			default:
				ins.Arity = Arity(op)
			}
			if !yield(ins) {
				return
			}
		}
	}
}

// Validate checks that the opcodes reduce to exactly one value on a stack
// machine and that every data opcode has a literal.
func (n Notation) Validate() error {
	depth, slots := 0, 0
	for ins := range n.Instructions() {
		switch ins.Op {
		case OpData:
			slots++
			depth++
		case OpVar:
			depth++
		default:
			if ins.Arity == 0 {
				return fmt.Errorf("%w: %q", ErrInvalidArity, ins.Op)
			}
			if depth < ins.Arity {
				return fmt.Errorf("%w: %q needs %d operands, have %d", ErrMalformedNotation, ins.Op, ins.Arity, depth)
			}
			depth -= ins.Arity - 1
		}
	}
	if depth != 1 {
		return fmt.Errorf("%w: %d values left on stack", ErrMalformedNotation, depth)
	}
	if slots != len(n.Literals) {
		return fmt.Errorf("%w: %d data opcodes for %d literals", ErrMalformedNotation, slots, len(n.Literals))
	}
	return nil
}

// Equal reports whether n and other have the same opcodes and literals.
func (n Notation) Equal(other Notation) bool {
	return slices.Equal(n.Ops, other.Ops) && slices.Equal(n.Literals, other.Literals)
}

// String returns the opcodes separated by spaces.
func (n Notation) String() string {
	return strings.Join(n.Ops, " ")
}
