// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/gogpu/julia/formula"
)

var (
	unaryFuncs = map[string]func(complex128) complex128{
		"re":    func(z complex128) complex128 { return complex(real(z), 0) },
		"im":    func(z complex128) complex128 { return complex(imag(z), 0) },
		"arg":   func(z complex128) complex128 { return complex(math.Atan2(imag(z), real(z)), 0) },
		"mod":   func(z complex128) complex128 { return complex(cmplx.Abs(z), 0) },
		"exp":   cmplx.Exp,
		"log":   cmplx.Log,
		"sqrt":  cmplx.Sqrt,
		"sinh":  cmplx.Sinh,
		"cosh":  cmplx.Cosh,
		"tanh":  cmplx.Tanh,
		"asinh": cmplx.Asinh,
		"acosh": cmplx.Acosh,
		"atanh": cmplx.Atanh,
	}

	binaryFuncs = map[string]func(a, b complex128) complex128{
		"plus":  func(a, b complex128) complex128 { return a + b },
		"minus": func(a, b complex128) complex128 { return a - b },
		"mul":   func(a, b complex128) complex128 { return a * b },
		"div":   func(a, b complex128) complex128 { return a / b },
		"pow":   cmplx.Pow,
	}
)

type opKind uint8

const (
	opVar opKind = iota
	opData
	opUnary
	opBinary
)

type instr struct {
	kind   opKind
	slot   int
	unary  func(complex128) complex128
	binary func(a, b complex128) complex128
}

// program is a notation resolved to function pointers. It is immutable and
// shared by all rows of a Compute call.
type program struct {
	code  []instr
	depth int
	slots int
}

func compile(n formula.Notation) (*program, error) {
	p := &program{code: make([]instr, 0, len(n.Ops))}
	depth := 0

	for ins := range n.Instructions() {
		var in instr
		switch ins.Op {
		case formula.OpVar:
			in.kind = opVar
			depth++
		case formula.OpData:
			in.kind, in.slot = opData, ins.Slot
			p.slots = ins.Slot + 1
			depth++
		default:
			if f, ok := unaryFuncs[ins.Op]; ok && ins.Arity == 1 {
				in.kind, in.unary = opUnary, f
				if depth < 1 {
					return nil, fmt.Errorf("cpu: %w: %q on empty stack", formula.ErrMalformedNotation, ins.Op)
				}
			} else if f, ok := binaryFuncs[ins.Op]; ok && ins.Arity == 2 {
				in.kind, in.binary = opBinary, f
				if depth < 2 {
					return nil, fmt.Errorf("cpu: %w: %q needs two operands", formula.ErrMalformedNotation, ins.Op)
				}
				depth--
			} else {
				return nil, fmt.Errorf("cpu: unsupported operation %q", ins.Op)
			}
		}
		p.depth = max(p.depth, depth)
		p.code = append(p.code, in)
	}

	if depth != 1 {
		return nil, fmt.Errorf("cpu: %w: %d values left on stack", formula.ErrMalformedNotation, depth)
	}
	return p, nil
}

// eval applies the program to z. stack must have room for p.depth values.
func (p *program) eval(z complex128, params, stack []complex128) complex128 {
	sp := 0
	for i := range p.code {
		in := &p.code[i]
		switch in.kind {
		case opVar:
			stack[sp] = z
			sp++
		case opData:
			stack[sp] = params[in.slot]
			sp++
		case opUnary:
			stack[sp-1] = in.unary(stack[sp-1])
		case opBinary:
			stack[sp-2] = in.binary(stack[sp-2], stack[sp-1])
			sp--
		}
	}
	return stack[0]
}

// escape returns the number of applications of the program, at most
// iterations, before |z| exceeds distance.
func (p *program) escape(z complex128, iterations int, distance float64, params, stack []complex128) int {
	n := 0
	for ; n < iterations; n++ {
		if cmplx.Abs(z) > distance {
			break
		}
		z = p.eval(z, params, stack)
	}
	return n
}
