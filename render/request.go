// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"math"

	"github.com/gogpu/julia/formula"
	"github.com/gogpu/julia/palette"
)

// Request describes one draw.
type Request struct {
	// Notation is the compiled formula. Its literals are bound at draw time.
	Notation formula.Notation

	// Iterations is the escape iteration limit.
	Iterations int

	// Distance is the escape threshold on |z|.
	Distance float64

	// Palette holds the color stops of the lookup table.
	Palette palette.Stops

	// Width and Height are the output size in cells.
	Width, Height int

	// Viewport is the region of the complex plane to render.
	Viewport Viewport
}

// Validate checks that the request fields are in range and that the
// notation binds a literal to every data opcode.
func (r *Request) Validate() error {
	if err := r.Notation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	switch {
	case r.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidRequest, r.Iterations)
	case !(r.Distance > 0) || math.IsInf(r.Distance, 0):
		return fmt.Errorf("%w: distance must be positive and finite, got %v", ErrInvalidRequest, r.Distance)
	case r.Width <= 0 || r.Height <= 0:
		return fmt.Errorf("%w: size must be positive, got %dx%d", ErrInvalidRequest, r.Width, r.Height)
	case len(r.Palette) == 0:
		return fmt.Errorf("%w: %w", ErrInvalidRequest, palette.ErrEmpty)
	case !(r.Viewport.MaxX > r.Viewport.MinX) || !(r.Viewport.MaxY > r.Viewport.MinY):
		return fmt.Errorf("%w: empty viewport %+v", ErrInvalidRequest, r.Viewport)
	}
	return nil
}
