package formula

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type vector struct {
	code     string
	ops      []string
	literals []Complex
	kernel   string
}

var vectors = []vector{
	{
		code:     "z * z + 1i-1.2",
		ops:      []string{"var", "var", "mul", "data", "plus"},
		literals: []Complex{{Re: 1, Im: -1.2}},
		kernel:   "c_plus(c_mul(z, z), u_params[0])",
	},
	{
		code:     "2 * sinh z ^ 1.5 * z - 0i1.0",
		ops:      []string{"data", "var", "sinh", "data", "pow", "mul", "var", "mul", "data", "minus"},
		literals: []Complex{{Re: 2}, {Re: 1.5}, {Im: 1}},
		kernel:   "c_minus(c_mul(c_mul(u_params[0], c_pow(c_sinh(z), u_params[1])), z), u_params[2])",
	},
	{
		code:     "(2 * sinh z) ^ 1.5 * z - 0i1.0",
		ops:      []string{"data", "var", "sinh", "mul", "data", "pow", "var", "mul", "data", "minus"},
		literals: []Complex{{Re: 2}, {Re: 1.5}, {Im: 1}},
		kernel:   "c_minus(c_mul(c_pow(c_mul(u_params[0], c_sinh(z)), u_params[1]), z), u_params[2])",
	},
	{
		code:     "sinh[z + 1/cosh(z * 1j-1)] + 0j0.5",
		ops:      []string{"var", "data", "var", "data", "mul", "cosh", "div", "plus", "sinh", "data", "plus"},
		literals: []Complex{{Re: 1}, {Re: 1, Im: -1}, {Im: 0.5}},
		kernel:   "c_plus(c_sinh(c_plus(z, c_div(u_params[0], c_cosh(c_mul(z, u_params[1]))))), u_params[2])",
	},
	{
		code:   "exp z * exp z",
		ops:    []string{"var", "exp", "var", "exp", "mul"},
		kernel: "c_mul(c_exp(z), c_exp(z))",
	},
	{
		code:     "-1 - -1*tanh(z^1.25 - 1)",
		ops:      []string{"data", "data", "var", "data", "pow", "data", "minus", "tanh", "mul", "minus"},
		literals: []Complex{{Re: -1}, {Re: -1}, {Re: 1.25}, {Re: 1}},
		kernel:   "c_minus(u_params[0], c_mul(u_params[1], c_tanh(c_minus(c_pow(z, u_params[2]), u_params[3]))))",
	},
	{
		code:   "ln z + sh z - ch z * th z",
		ops:    []string{"var", "log", "var", "sinh", "plus", "var", "cosh", "var", "tanh", "mul", "minus"},
		kernel: "c_minus(c_plus(c_log(z), c_sinh(z)), c_mul(c_cosh(z), c_tanh(z)))",
	},
	{
		code:     "z-1",
		ops:      []string{"var", "data", "minus"},
		literals: []Complex{{Re: 1}},
		kernel:   "c_minus(z, u_params[0])",
	},
	{
		code:   "exp sinh z",
		ops:    []string{"var", "sinh", "exp"},
		kernel: "c_exp(c_sinh(z))",
	},
}

func TestParse(t *testing.T) {
	for _, v := range vectors {
		t.Run(v.code, func(t *testing.T) {
			n, err := Parse(v.code)
			require.NoError(t, err)
			require.Equal(t, v.ops, n.Ops)
			require.Equal(t, len(v.literals), len(n.Literals))
			for i := range v.literals {
				require.InDelta(t, v.literals[i].Re, n.Literals[i].Re, 1e-12)
				require.InDelta(t, v.literals[i].Im, n.Literals[i].Im, 1e-12)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	for _, v := range vectors {
		t.Run(v.code, func(t *testing.T) {
			n, err := Parse(v.code)
			require.NoError(t, err)
			ks, err := Generate(n)
			require.NoError(t, err)
			require.Equal(t, v.kernel, ks.Code)
			require.Equal(t, len(n.Literals), ks.LiteralCount)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"1 + ", ErrSyntax},
		{"1 + sinh", ErrSyntax},
		{"1 + z z + 3", ErrSyntax},
		{"sinh - z", ErrSyntax},
		{"z 2", ErrSyntax},
		{"", ErrSyntax},
		{"()", ErrSyntax},
		{"(z + 2", ErrUnmatchedBrackets},
		{"(z - 1) + 2]", ErrUnmatchedBrackets},
		{")z(", ErrUnmatchedBrackets},
		{"x + 1", ErrInvalidVariable},
		{"zz", ErrInvalidVariable},
		{"plus z", ErrInvalidVariable},
		{"z ! 1", ErrInvalidSymbol},
		{"z + .5", ErrInvalidSymbol},
		{"z × 2", ErrInvalidSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := Parse(tt.code)
			require.ErrorIs(t, err, tt.want)

			var serr *SyntaxError
			require.ErrorAs(t, err, &serr)
			require.GreaterOrEqual(t, serr.Pos, 0)
			require.LessOrEqual(t, serr.Pos, len(tt.code))
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("z + foo")
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, 4, serr.Pos)
	require.Equal(t, "foo", serr.Text)
	require.Contains(t, err.Error(), "invalid variable")
}

func TestParseIdempotent(t *testing.T) {
	for _, v := range vectors {
		a, err := Parse(v.code)
		require.NoError(t, err)
		b, err := Parse(v.code)
		require.NoError(t, err)
		require.True(t, a.Equal(b), v.code)
	}
}

func TestBracketsOverridePrecedence(t *testing.T) {
	grouped, err := Parse("(2 * sinh z) ^ 1.5 * z")
	require.NoError(t, err)
	plain, err := Parse("2 * sinh z ^ 1.5 * z")
	require.NoError(t, err)
	require.NotEqual(t, grouped.Ops, plain.Ops)
}

func TestBracketKindsAreInterchangeable(t *testing.T) {
	a, err := Parse("(z + 1) * [z - 1] * {z}")
	require.NoError(t, err)
	b, err := Parse("(z + 1) * (z - 1) * (z)")
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	// Mixed kinds only need to nest by depth.
	_, err = Parse("(z + 1]")
	require.NoError(t, err)
}

func TestLeadingMinusBindsLiteralOnly(t *testing.T) {
	tree := mustTree(t, "-1 - -1*tanh(z^1.25 - 1)")
	require.Equal(t, "minus", tree.Token.Name)
	require.Equal(t, TokenNumber, tree.Left.Token.Kind)
	require.Equal(t, -1.0, tree.Left.Token.Value.Re)
	require.Equal(t, "mul", tree.Right.Token.Name)
}

func TestStackReduction(t *testing.T) {
	for _, v := range vectors {
		n, err := Parse(v.code)
		require.NoError(t, err)
		require.NoError(t, n.Validate())

		depth := 0
		data := 0
		for ins := range n.Instructions() {
			switch ins.Op {
			case OpData:
				require.Equal(t, data, ins.Slot)
				data++
				depth++
			case OpVar:
				depth++
			default:
				depth -= ins.Arity - 1
			}
			require.Positive(t, depth)
		}
		require.Equal(t, 1, depth)
		require.Equal(t, len(n.Literals), data)
	}
}

func TestInstructionsRestartable(t *testing.T) {
	n, err := Parse("z * z + 0.2i0.5")
	require.NoError(t, err)

	var first, second []Instruction
	for ins := range n.Instructions() {
		first = append(first, ins)
	}
	for ins := range n.Instructions() {
		second = append(second, ins)
	}
	require.Equal(t, first, second)
	require.Len(t, first, 5)
	require.Equal(t, Instruction{Op: "data", Slot: 0}, first[3])
	require.Equal(t, Instruction{Op: "plus", Arity: 2, Slot: -1}, first[4])
}

func TestGenerateRejectsBadNotation(t *testing.T) {
	_, err := Generate(Notation{Ops: []string{"var", "frobnicate"}})
	require.ErrorIs(t, err, ErrInvalidArity)

	_, err = Generate(Notation{Ops: []string{"var", "plus"}})
	require.ErrorIs(t, err, ErrMalformedNotation)

	_, err = Generate(Notation{Ops: []string{"var", "var"}})
	require.ErrorIs(t, err, ErrMalformedNotation)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Notation{Ops: []string{"data"}}.Validate(), ErrMalformedNotation)
	require.ErrorIs(t, Notation{Ops: []string{"var", "nope"}}.Validate(), ErrInvalidArity)
	require.NoError(t, Notation{Ops: []string{"data"}, Literals: []Complex{{Re: 1}}}.Validate())
}

func TestBuildTreeRejectsWrongArity(t *testing.T) {
	tokens := []Token{
		{Kind: TokenFunction, Name: "sinh", Arity: 2, Priority: 3},
		{Kind: TokenVariable},
	}
	_, err := BuildTree(tokens)
	require.ErrorIs(t, err, ErrInvalidArity)
}

func TestBracketStepExceedsPriorities(t *testing.T) {
	for name, op := range operations {
		require.Less(t, op.Priority, BracketPriorityStep, name)
	}
}

func mustTree(t *testing.T, code string) *Tree {
	t.Helper()
	tokens, err := Tokenize(code)
	require.NoError(t, err)
	tree, err := BuildTree(tokens)
	require.NoError(t, err)
	return tree
}

func TestTokenizeOutOfRangeLiteral(t *testing.T) {
	huge := strings.Repeat("9", 400)

	tokens, err := Tokenize(huge + "i-" + huge)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.True(t, math.IsInf(tokens[0].Value.Re, 1))
	require.True(t, math.IsInf(tokens[0].Value.Im, -1))

	tokens, err = Tokenize("z + 0." + strings.Repeat("0", 400) + "1")
	require.NoError(t, err)
	require.Zero(t, tokens[2].Value.Re)
}
