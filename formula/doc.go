// Package formula compiles algebraic formulas over one complex variable
// into kernel source suitable for per-pixel evaluation on a GPU.
//
// # Pipeline
//
// Compilation runs in four stages, each exposed separately so that callers
// and tests can inspect intermediate results:
//
//	tokens, _ := formula.Tokenize("z * z + 1i-1.2")
//	tree, _ := formula.BuildTree(tokens)
//	n, _ := formula.Linearize(tree, formula.Literals(tokens))
//	ks, _ := formula.Generate(n)
//	// ks.Code == "c_plus(c_mul(z, z), u_params[0])"
//
// [Parse] runs the first three stages in one call.
//
// # Syntax
//
// The free variable is z. Numbers are written as <real>[(i|j)<imag>], so
// 0.2i0.5 is 0.2+0.5i. Supported binary operators are + - * / ^, supported
// unary functions are re, im, arg, mod, exp, log (ln), sqrt, sinh (sh),
// cosh (ch), tanh (th), asinh, acosh and atanh. Any of ( [ { opens a group
// and any of ) ] } closes it; the bracket kind is not checked.
//
// Unary functions bind tighter than ^, which binds tighter than * and /,
// which bind tighter than + and -. Function application needs no brackets:
// "sinh z ^ 2" is (sinh z)^2.
//
// # Thread Safety
//
// All functions in this package are pure and safe for concurrent use.
// A [Notation] must not be modified after it is returned.
package formula
