package formula

import "fmt"

// Opcode names emitted for leaves of the expression tree.
const (
	OpVar  = "var"
	OpData = "data"
)

// Names used in generated kernel source.
const (
	VariableName     = "z"
	LiteralArrayName = "u_params"
	FunctionPrefix   = "c_"
)

// BracketPriorityStep is added to an operator's priority for every bracket
// level enclosing it. It must exceed every base priority so that an operator
// one level deeper always binds tighter than any operator outside.
const BracketPriorityStep = 5

// Operation describes a canonical function or operator.
type Operation struct {
	Name     string
	Arity    int
	Priority int
}

var operations = map[string]Operation{}

func init() {
	for _, op := range []Operation{
		{Name: "plus", Arity: 2, Priority: 0},
		{Name: "minus", Arity: 2, Priority: 0},
		{Name: "mul", Arity: 2, Priority: 1},
		{Name: "div", Arity: 2, Priority: 1},
		{Name: "pow", Arity: 2, Priority: 2},
		{Name: "re", Arity: 1, Priority: 3},
		{Name: "im", Arity: 1, Priority: 3},
		{Name: "arg", Arity: 1, Priority: 3},
		{Name: "mod", Arity: 1, Priority: 3},
		{Name: "exp", Arity: 1, Priority: 3},
		{Name: "log", Arity: 1, Priority: 3},
		{Name: "sqrt", Arity: 1, Priority: 3},
		{Name: "sinh", Arity: 1, Priority: 3},
		{Name: "cosh", Arity: 1, Priority: 3},
		{Name: "tanh", Arity: 1, Priority: 3},
		{Name: "asinh", Arity: 1, Priority: 3},
		{Name: "acosh", Arity: 1, Priority: 3},
		{Name: "atanh", Arity: 1, Priority: 3},
	} {
		if op.Priority >= BracketPriorityStep {
			panic(fmt.Sprintf("formula: priority of %q (%d) must be below BracketPriorityStep (%d)",
				op.Name, op.Priority, BracketPriorityStep))
		}
		operations[op.Name] = op
	}
}

// aliases maps operator symbols and short names to canonical names.
var aliases = map[string]string{
	"+":  "plus",
	"-":  "minus",
	"*":  "mul",
	"/":  "div",
	"^":  "pow",
	"ln": "log",
	"sh": "sinh",
	"ch": "cosh",
	"th": "tanh",
}

// Lookup resolves a canonical name or an alias to its operation.
func Lookup(name string) (Operation, bool) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	op, ok := operations[name]
	return op, ok
}

// Arity returns the number of operands consumed by opcode, or 0 for
// opcodes that are not functions (including unknown ones).
func Arity(opcode string) int {
	return operations[opcode].Arity
}
