package formula

import (
	"errors"
	"strconv"
	"strings"
)

// Complex is an immutable complex number literal.
type Complex struct {
	Re float64
	Im float64
}

// Complex128 converts c to the builtin complex type.
func (c Complex) Complex128() complex128 {
	return complex(c.Re, c.Im)
}

// String formats c in formula literal syntax, e.g. "1i-1.2".
func (c Complex) String() string {
	re := strconv.FormatFloat(c.Re, 'g', -1, 64)
	if c.Im == 0 {
		return re
	}
	return re + "i" + strconv.FormatFloat(c.Im, 'g', -1, 64)
}

// parseFloat parses one part of a literal. Values beyond the float64 range
// become ±Inf.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		return f, nil
	}
	return f, err
}

// parseComplex parses a literal matched by numberPattern. The first 'i',
// or failing that the first 'j', separates the real and imaginary parts.
func parseComplex(lit string) (Complex, error) {
	split := strings.IndexByte(lit, 'i')
	if split < 0 {
		split = strings.IndexByte(lit, 'j')
	}
	if split < 0 {
		re, err := parseFloat(lit)
		if err != nil {
			return Complex{}, err
		}
		return Complex{Re: re}, nil
	}

	re, err := parseFloat(lit[:split])
	if err != nil {
		return Complex{}, err
	}
	im, err := parseFloat(lit[split+1:])
	if err != nil {
		return Complex{}, err
	}
	return Complex{Re: re, Im: im}, nil
}
