package julia

import (
	"slices"

	"github.com/gogpu/julia/formula"
	"github.com/gogpu/julia/internal/cache"
)

// compileCacheSize bounds the number of formulas kept compiled.
const compileCacheSize = 256

var compiled = cache.New[string, formula.Notation](compileCacheSize)

// Compile parses a formula, reusing earlier results for the same source
// text. Invalid formulas are reported with a *formula.SyntaxError and are
// not cached.
func Compile(code string) (formula.Notation, error) {
	n, err := compiled.GetOrCreate(code, func() (formula.Notation, error) {
		return formula.Parse(code)
	})
	if err != nil {
		return formula.Notation{}, err
	}
	return formula.Notation{
		Ops:      slices.Clone(n.Ops),
		Literals: slices.Clone(n.Literals),
	}, nil
}
