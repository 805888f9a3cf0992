// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cpu implements render.Device in software.
//
// Kernels are evaluated with math/cmplx in float64, row bands in parallel.
// The device needs no GPU and serves as the reference that GPU output is
// compared against.
package cpu

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/julia/internal/parallel"
	"github.com/gogpu/julia/palette"
	"github.com/gogpu/julia/render"
)

// ErrForeignResource is returned when a resource created by another device
// is passed to this one.
var ErrForeignResource = errors.New("cpu: resource belongs to another device")

// Device is a software render.Device. It is safe for concurrent use by
// several surfaces.
type Device struct {
	pool *parallel.Pool
}

// NewDevice creates a software device with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewDevice(workers int) *Device {
	return &Device{pool: parallel.NewPool(workers)}
}

// Name implements render.Device.
func (d *Device) Name() string { return "cpu" }

// Workers returns the number of worker goroutines.
func (d *Device) Workers() int { return d.pool.Workers() }

type kernel struct {
	prog       *program
	iterations int
}

func (k *kernel) Release() {}

// BuildKernel implements render.Device. The generated source is ignored;
// the kernel is built from the notation.
func (d *Device) BuildKernel(spec render.KernelSpec) (render.Kernel, error) {
	if spec.Iterations <= 0 {
		return nil, fmt.Errorf("cpu: iterations must be positive, got %d", spec.Iterations)
	}
	prog, err := compile(spec.Notation)
	if err != nil {
		return nil, err
	}
	if prog.slots != spec.Source.LiteralCount {
		return nil, fmt.Errorf("cpu: notation reads %d literals, source reads %d",
			prog.slots, spec.Source.LiteralCount)
	}
	return &kernel{prog: prog, iterations: spec.Iterations}, nil
}

type output struct {
	width, height int
	values        []float32 // normalized escape iterations, row-major
	img           *image.RGBA
}

func (o *output) Size() (int, int)   { return o.width, o.height }
func (o *output) Image() *image.RGBA { return o.img }

func (o *output) Release() {
	o.values = nil
	o.img = nil
}

// AllocateOutput implements render.Device.
func (d *Device) AllocateOutput(width, height int) (render.Output, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cpu: invalid output size %dx%d", width, height)
	}
	return &output{
		width:  width,
		height: height,
		values: make([]float32, width*height),
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

type lookupTable struct {
	table  palette.Table
	loaded bool
}

func (l *lookupTable) Upload(t *palette.Table) error {
	if t == nil {
		return errors.New("cpu: nil lookup table")
	}
	l.table = *t
	l.loaded = true
	return nil
}

func (l *lookupTable) Release() { l.loaded = false }

// NewLookupTable implements render.Device.
func (d *Device) NewLookupTable() (render.LookupTable, error) {
	return &lookupTable{}, nil
}

// Compute implements render.Device. Each cell receives its escape count
// divided by the iteration limit.
func (d *Device) Compute(k render.Kernel, out render.Output, u render.Uniforms) error {
	kern, ok := k.(*kernel)
	if !ok {
		return fmt.Errorf("%w: kernel %T", ErrForeignResource, k)
	}
	o, ok := out.(*output)
	if !ok {
		return fmt.Errorf("%w: output %T", ErrForeignResource, out)
	}
	if len(u.Literals) < kern.prog.slots {
		return fmt.Errorf("cpu: kernel reads %d literals, got %d", kern.prog.slots, len(u.Literals))
	}

	params := make([]complex128, len(u.Literals))
	for i, c := range u.Literals {
		params[i] = c.Complex128()
	}
	limit := float32(kern.iterations)

	d.pool.Rows(o.height, func(y0, y1 int) {
		stack := make([]complex128, kern.prog.depth)
		for y := y0; y < y1; y++ {
			row := o.values[y*o.width : (y+1)*o.width]
			for x := range row {
				z := u.Viewport.Point(x, y, o.width, o.height)
				n := kern.prog.escape(z, kern.iterations, u.Distance, params, stack)
				row[x] = float32(n) / limit
			}
		}
	})
	return nil
}

// Paint implements render.Device.
func (d *Device) Paint(k render.Kernel, out render.Output, lut render.LookupTable) error {
	o, ok := out.(*output)
	if !ok {
		return fmt.Errorf("%w: output %T", ErrForeignResource, out)
	}
	l, ok := lut.(*lookupTable)
	if !ok {
		return fmt.Errorf("%w: lookup table %T", ErrForeignResource, lut)
	}
	if !l.loaded {
		return errors.New("cpu: lookup table not uploaded")
	}

	d.pool.Rows(o.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			pix := o.img.Pix[y*o.img.Stride:]
			for x, t := range o.values[y*o.width : (y+1)*o.width] {
				c := l.table[TableIndex(t)]
				pix[4*x+0] = c.R
				pix[4*x+1] = c.G
				pix[4*x+2] = c.B
				pix[4*x+3] = c.A
			}
		}
	})
	return nil
}

// TableIndex maps a normalized escape value in [0, 1] to a lookup table
// entry. Out-of-range values are clamped.
func TableIndex(t float32) int {
	i := int(math.Round(float64(t) * (palette.Size - 1)))
	return min(max(i, 0), palette.Size-1)
}

// Close stops the worker pool.
func (d *Device) Close() {
	d.pool.Close()
}

var _ render.Device = (*Device)(nil)
