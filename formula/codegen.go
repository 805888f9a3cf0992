package formula

import (
	"fmt"
	"strconv"
)

// KernelSource is the expression text of a compiled formula and the number
// of literal slots it reads.
type KernelSource struct {
	Code         string
	LiteralCount int
}

// Generate turns a notation into a kernel expression. Literals are not
// inlined; the k-th "data" opcode becomes u_params[k] and the caller binds
// the literal values at draw time. Functions become calls prefixed with c_,
// so "z * z + 1" yields "c_plus(c_mul(z, z), u_params[0])".
func Generate(n Notation) (KernelSource, error) {
	stack := make([]string, 0, len(n.Ops))
	slots := 0

	for ins := range n.Instructions() {
		switch ins.Op {
		case OpData:
			stack = append(stack, LiteralArrayName+"["+strconv.Itoa(ins.Slot)+"]")
			slots = ins.Slot + 1
			continue
		case OpVar:
			stack = append(stack, VariableName)
			continue
		}

		if ins.Arity != 1 && ins.Arity != 2 {
			return KernelSource{}, fmt.Errorf("%w: %q", ErrInvalidArity, ins.Op)
		}
		if len(stack) < ins.Arity {
			return KernelSource{}, fmt.Errorf("%w: %q needs %d operands, have %d",
				ErrMalformedNotation, ins.Op, ins.Arity, len(stack))
		}

		call := FunctionPrefix + ins.Op
		if ins.Arity == 1 {
			top := len(stack) - 1
			stack[top] = call + "(" + stack[top] + ")"
			continue
		}
		rhs, lhs := stack[len(stack)-1], stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		stack = append(stack, call+"("+lhs+", "+rhs+")")
	}

	if len(stack) != 1 {
		return KernelSource{}, fmt.Errorf("%w: %d values left on stack", ErrMalformedNotation, len(stack))
	}
	return KernelSource{Code: stack[0], LiteralCount: slots}, nil
}
